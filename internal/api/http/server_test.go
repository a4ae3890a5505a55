package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taroverse/engagebot/internal/mocks"
	"github.com/taroverse/engagebot/internal/model"
	"github.com/taroverse/engagebot/internal/service"
	"github.com/taroverse/engagebot/internal/testutil"
	"github.com/taroverse/engagebot/internal/token"
)

func newTestServer(t *testing.T) (*Server, *mocks.LedgerStore, *mocks.ActionStore, *mocks.DeliveryLogStore) {
	t.Helper()

	ledger := &mocks.LedgerStore{}
	actions := &mocks.ActionStore{}
	deliveries := &mocks.DeliveryLogStore{}

	report := service.NewReport(ledger, actions, deliveries, testutil.MakeNoopLogger())
	srv := NewServer(report, token.NewJWT("test-secret"), "test-admin-key", testutil.MakeNoopLogger())

	return srv, ledger, actions, deliveries
}

func mintTestToken(t *testing.T, srv *Server) string {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/token", strings.NewReader(`{"key":"test-admin-key"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)

	return body.Token
}

func TestServer_Health(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_MintToken_WrongKey(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/token", strings.NewReader(`{"key":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_Reports_RequireToken(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	for _, path := range []string{"/api/reports/summary", "/api/reports/drip", "/api/reports/users"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/summary", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_Summary(t *testing.T) {
	srv, ledger, actions, _ := newTestServer(t)
	ledger.On("CountUsers", mock.Anything).Return(12, 4, nil).Once()
	actions.On("CountSince", mock.Anything, mock.AnythingOfType("time.Time")).Return(7, nil).Once()

	tokenString := mintTestToken(t, srv)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/summary", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_users":12,"members":4,"non_members":8,"actions_last_day":7}`, rec.Body.String())
}

func TestServer_Drip(t *testing.T) {
	srv, _, _, deliveries := newTestServer(t)
	deliveries.On("OffsetStats", mock.Anything).Return([]model.DripOffsetStat{
		{Segment: model.SegmentNonMember, DayOffset: 1, Sent: 3, Failed: 1, Conversions: 2},
	}, nil).Once()

	tokenString := mintTestToken(t, srv)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/drip", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"offsets":[{"segment":"non_member","day_offset":1,"sent":3,"failed":1,"conversions":2}]}`, rec.Body.String())
}

func TestServer_Users_InvalidLimit(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	tokenString := mintTestToken(t, srv)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/users?limit=abc", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Users(t *testing.T) {
	srv, ledger, _, _ := newTestServer(t)
	ledger.On("ListUsers", mock.Anything).Return([]model.User{
		{
			TelegramID:     42,
			Username:       "arina",
			Segment:        model.SegmentMember,
			FirstContactAt: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
			LastContext:    "qr_sun",
		},
	}, nil).Once()

	tokenString := mintTestToken(t, srv)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/users", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"telegram_id":42`)
	assert.Contains(t, rec.Body.String(), `"first_contact_at":"2024-05-10T12:00:00Z"`)
}
