package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinForm struct {
	Pin  string `form:"pin" binding:"required,len=4,numeric"`
	Mode string `json:"mode" form:"mode" binding:"omitempty,oneof=public prelim"`
}

func bindForm(t *testing.T, values url.Values) error {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	var form pinForm
	return c.ShouldBind(&form)
}

func TestValidationDetails(t *testing.T) {
	SetupValidator()

	err := bindForm(t, url.Values{"mode": {"secret"}})
	require.Error(t, err)
	details := ValidationDetails(err)
	require.Len(t, details, 2)
	assert.Equal(t, "pin", details[0].Field)
	assert.Equal(t, "This field is required.", details[0].Message)
	assert.Equal(t, "mode", details[1].Field)
	assert.Equal(t, "Must be one of: public prelim", details[1].Message)

	err = bindForm(t, url.Values{"pin": {"12a"}})
	require.Error(t, err)
	details = ValidationDetails(err)
	require.Len(t, details, 1)
	assert.Equal(t, "Must be exactly 4 characters", details[0].Message)

	assert.NoError(t, bindForm(t, url.Values{"pin": {"1234"}, "mode": {"public"}}))
}

func TestValidationDetails_NonValidatorError(t *testing.T) {
	details := ValidationDetails(errors.New("unexpected EOF"))
	require.Len(t, details, 1)
	assert.Empty(t, details[0].Field)
	assert.Equal(t, "unexpected EOF", details[0].Message)
}
