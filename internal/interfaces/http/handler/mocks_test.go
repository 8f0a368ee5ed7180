package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	editorsapp "github.com/marketplace/backend/internal/application/editors"
	payapp "github.com/marketplace/backend/internal/application/payment"
	"github.com/marketplace/backend/internal/domain/editors"
	"github.com/marketplace/backend/internal/domain/payment"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockEditorsService struct {
	mock.Mock
}

func (m *MockEditorsService) Home(ctx context.Context, actor editorsapp.Actor) (*editorsapp.HomeView, error) {
	args := m.Called(ctx, actor)
	view, _ := args.Get(0).(*editorsapp.HomeView)
	return view, args.Error(1)
}

func (m *MockEditorsService) EventLog(ctx context.Context, form editorsapp.EventLogForm, page int) (*editorsapp.LogView, error) {
	args := m.Called(ctx, form, page)
	view, _ := args.Get(0).(*editorsapp.LogView)
	return view, args.Error(1)
}

func (m *MockEditorsService) EventLogDetail(ctx context.Context, id uuid.UUID) (*editorsapp.ActivityRow, error) {
	args := m.Called(ctx, id)
	row, _ := args.Get(0).(*editorsapp.ActivityRow)
	return row, args.Error(1)
}

func (m *MockEditorsService) ReviewLog(ctx context.Context, actor editorsapp.Actor, form editorsapp.DateRangeForm, page int) (*editorsapp.LogView, error) {
	args := m.Called(ctx, actor, form, page)
	view, _ := args.Get(0).(*editorsapp.LogView)
	return view, args.Error(1)
}

func (m *MockEditorsService) Queue(ctx context.Context, actor editorsapp.Actor, q editorsapp.QueueQuery) (*editorsapp.QueueView, error) {
	args := m.Called(ctx, actor, q)
	view, _ := args.Get(0).(*editorsapp.QueueView)
	return view, args.Error(1)
}

func (m *MockEditorsService) ApplicationVersions(ctx context.Context, applicationID string) (*editorsapp.ApplicationVersionsView, editors.FieldErrors, error) {
	args := m.Called(ctx, applicationID)
	view, _ := args.Get(0).(*editorsapp.ApplicationVersionsView)
	errs, _ := args.Get(1).(editors.FieldErrors)
	return view, errs, args.Error(2)
}

func (m *MockEditorsService) ModeratedQueue(ctx context.Context, actor editorsapp.Actor, page int) (*editorsapp.ModeratedQueueView, error) {
	args := m.Called(ctx, actor, page)
	view, _ := args.Get(0).(*editorsapp.ModeratedQueueView)
	return view, args.Error(1)
}

func (m *MockEditorsService) Moderate(ctx context.Context, actor editorsapp.Actor, page int, forms []editorsapp.ModerationForm) (*editorsapp.ModeratedQueueView, error) {
	args := m.Called(ctx, actor, page, forms)
	view, _ := args.Get(0).(*editorsapp.ModeratedQueueView)
	return view, args.Error(1)
}

func (m *MockEditorsService) ReviewPage(ctx context.Context, actor editorsapp.Actor, versionID uuid.UUID, num string) (*editorsapp.ReviewView, error) {
	args := m.Called(ctx, actor, versionID, num)
	view, _ := args.Get(0).(*editorsapp.ReviewView)
	return view, args.Error(1)
}

func (m *MockEditorsService) SubmitReview(ctx context.Context, actor editorsapp.Actor, versionID uuid.UUID, form editorsapp.ReviewForm, num string) (*editorsapp.ReviewView, error) {
	args := m.Called(ctx, actor, versionID, form, num)
	view, _ := args.Get(0).(*editorsapp.ReviewView)
	return view, args.Error(1)
}

func (m *MockEditorsService) SetMotd(ctx context.Context, actor editorsapp.Actor, motd string) error {
	return m.Called(ctx, actor, motd).Error(0)
}

type MockPayService struct {
	mock.Mock
}

func (m *MockPayService) Lobby(ctx context.Context, sess *payment.Session, in payapp.LobbyInput, lang language.Tag) (*payapp.Result, error) {
	args := m.Called(ctx, sess, in, lang)
	res, _ := args.Get(0).(*payapp.Result)
	return res, args.Error(1)
}

func (m *MockPayService) Simulate(ctx context.Context, sess *payment.Session) (*payapp.Result, error) {
	args := m.Called(ctx, sess)
	res, _ := args.Get(0).(*payapp.Result)
	return res, args.Error(1)
}

func (m *MockPayService) FakePay() (*payapp.Result, error) {
	args := m.Called()
	res, _ := args.Get(0).(*payapp.Result)
	return res, args.Error(1)
}

func (m *MockPayService) FakeBangoURL(sess *payment.Session, billConfigID string) (*payapp.Result, error) {
	args := m.Called(sess, billConfigID)
	res, _ := args.Get(0).(*payapp.Result)
	return res, args.Error(1)
}

func (m *MockPayService) WaitToStart(ctx context.Context, sess *payment.Session) (*payapp.Result, error) {
	args := m.Called(ctx, sess)
	res, _ := args.Get(0).(*payapp.Result)
	return res, args.Error(1)
}

func (m *MockPayService) TransStartURL(ctx context.Context, sess *payment.Session) (*payapp.TransStartView, error) {
	args := m.Called(ctx, sess)
	view, _ := args.Get(0).(*payapp.TransStartView)
	return view, args.Error(1)
}

func (m *MockPayService) VerifyPin(ctx context.Context, sess *payment.Session, form payapp.PinForm) (*payapp.Result, error) {
	args := m.Called(ctx, sess, form)
	res, _ := args.Get(0).(*payapp.Result)
	return res, args.Error(1)
}

func (m *MockPayService) VerifyBuyer(ctx context.Context, sess *payment.Session, buyerUUID string) (*payapp.BuyerView, error) {
	args := m.Called(ctx, sess, buyerUUID)
	view, _ := args.Get(0).(*payapp.BuyerView)
	return view, args.Error(1)
}

// decodeResponse reads the JSON envelope of a recorded response
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error.Code
}
