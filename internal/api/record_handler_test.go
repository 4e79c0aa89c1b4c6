package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/trademind/internal/models"
)

func TestAlerts_CreateListDeactivate(t *testing.T) {
	s := newTestServer(t)
	cookie := s.signUp(t)

	w := s.do(t, http.MethodPost, "/api/v1/alerts", map[string]interface{}{
		"symbol": "aapl", "alertType": "price", "condition": "Above $180",
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[CreatedResponse](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Alert for AAPL added successfully!", created.Notification.Message)

	w = s.do(t, http.MethodGet, "/api/v1/alerts", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	alerts := decode[[]models.PriceAlert](t, w)
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].IsActive)

	w = s.do(t, http.MethodDelete, "/api/v1/alerts/"+created.ID, nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alert deleted successfully!", decode[SuccessResponse](t, w).Notification.Message)

	w = s.do(t, http.MethodGet, "/api/v1/alerts", nil, cookie)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestAlerts_CannotDeactivateForeignAlert(t *testing.T) {
	s := newTestServer(t)
	owner := s.signUp(t)

	w := s.do(t, http.MethodPost, "/api/v1/alerts", map[string]interface{}{
		"symbol": "TSLA", "alertType": "signal", "condition": "New BUY signal",
	}, owner)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[CreatedResponse](t, w).ID

	w = s.do(t, http.MethodPost, "/api/v1/auth/google", map[string]interface{}{"idToken": "mallory@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	intruder := sessionCookie(t, w)

	w = s.do(t, http.MethodDelete, "/api/v1/alerts/"+id, nil, intruder)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/alerts", nil, owner)
	assert.Len(t, decode[[]models.PriceAlert](t, w), 1)
}

func TestSignalsAndTrades(t *testing.T) {
	s := newTestServer(t)
	cookie := s.signUp(t)

	for _, symbol := range []string{"NVDA", "MSFT"} {
		w := s.do(t, http.MethodPost, "/api/v1/signals", map[string]interface{}{
			"symbol": symbol, "action": "BUY", "confidence": "high", "entryPrice": 100.5,
		}, cookie)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(t, http.MethodGet, "/api/v1/signals", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	signals := decode[[]models.TradingSignal](t, w)
	require.Len(t, signals, 2)
	assert.Equal(t, "MSFT", signals[0].Symbol, "newest first")

	w = s.do(t, http.MethodPost, "/api/v1/trades", map[string]interface{}{
		"symbol": "NVDA", "side": "BUY", "quantity": 2, "price": 875.28,
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "BUY trade for NVDA executed successfully!", decode[CreatedResponse](t, w).Notification.Message)

	w = s.do(t, http.MethodGet, "/api/v1/trades", nil, cookie)
	trades := decode[[]models.TradeHistoryEntry](t, w)
	require.Len(t, trades, 1)
	assert.Equal(t, "executed", trades[0].Status)
}

func TestSignals_Filters(t *testing.T) {
	s := newTestServer(t)
	cookie := s.signUp(t)

	for _, body := range []map[string]interface{}{
		{"symbol": "AAPL", "action": "BUY", "confidence": "high"},
		{"symbol": "TSLA", "action": "SELL", "confidence": "medium"},
		{"symbol": "NVDA", "action": "SELL", "confidence": "high"},
	} {
		w := s.do(t, http.MethodPost, "/api/v1/signals", body, cookie)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	tests := []struct {
		query string
		want  []string
	}{
		{query: "", want: []string{"NVDA", "TSLA", "AAPL"}},
		{query: "?action=buy", want: []string{"AAPL"}},
		{query: "?action=SELL", want: []string{"NVDA", "TSLA"}},
		{query: "?confidence=high", want: []string{"NVDA", "AAPL"}},
		{query: "?action=sell&confidence=medium", want: []string{"TSLA"}},
		{query: "?action=BUY&confidence=low", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/api/v1/signals"+tt.query, nil, cookie)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			got := []string{}
			for _, signal := range decode[[]models.TradingSignal](t, w) {
				got = append(got, signal.Symbol)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	w := s.do(t, http.MethodGet, "/api/v1/signals?action=HOLD", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignals_Validation(t *testing.T) {
	s := newTestServer(t)
	cookie := s.signUp(t)

	w := s.do(t, http.MethodPost, "/api/v1/signals", map[string]interface{}{"symbol": "NVDA", "action": "HOLD"}, cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Fields, "action")
}

func TestRecords_RequireAuth(t *testing.T) {
	s := newTestServer(t)
	for _, target := range []string{"/api/v1/signals", "/api/v1/trades", "/api/v1/alerts", "/api/v1/users/me", "/api/v1/ticks"} {
		w := s.do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, target)
	}
}

func TestUpdateProfile(t *testing.T) {
	s := newTestServer(t)
	cookie := s.signUp(t)

	w := s.do(t, http.MethodPatch, "/api/v1/users/me", map[string]interface{}{"riskLevel": "high", "displayName": " Countess Ada "}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/users/me", nil, cookie)
	profile := decode[models.Profile](t, w)
	assert.Equal(t, "Countess Ada", profile.DisplayName)
	assert.Equal(t, "high", profile.Preferences.RiskLevel)
	assert.NotNil(t, profile.UpdatedAt)

	w = s.do(t, http.MethodPatch, "/api/v1/users/me", map[string]interface{}{}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPatch, "/api/v1/users/me", map[string]interface{}{"riskLevel": "reckless"}, cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
