package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func systemRouter(h *SystemHandler) *gin.Engine {
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/system/info", h.GetSystemInfo)
	r.GET("/system/ping", h.Ping)
	return r
}

func TestSystemHandler_Health(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	w := do(systemRouter(NewSystemHandler("marketplace", "1.0.0", map[string]HealthCheck{"database": ok, "cache": ok})), http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "ok", data["checks"].(map[string]any)["database"])

	w = do(systemRouter(NewSystemHandler("marketplace", "1.0.0", map[string]HealthCheck{"database": ok, "cache": down})), http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	data = decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, "unhealthy", data["status"])
	assert.Equal(t, "connection refused", data["checks"].(map[string]any)["cache"])
}

func TestSystemHandler_Info(t *testing.T) {
	r := systemRouter(NewSystemHandler("marketplace", "1.2.3", nil))

	w := do(r, http.MethodGet, "/system/info", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, "marketplace", data["name"])
	assert.Equal(t, "1.2.3", data["version"])

	w = do(r, http.MethodGet, "/system/ping", nil, "")
	assert.Equal(t, "pong", decodeResponse(t, w)["data"].(map[string]any)["message"])
}
