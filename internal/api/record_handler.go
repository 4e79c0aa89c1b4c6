package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/trademind/internal/core"
	"github.com/example/trademind/internal/models"
)

// RecordHandler serves the trading signal, trade history and price alert collections.
type RecordHandler struct {
	profiles core.ProfileService
	logger   *zap.Logger
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(profiles core.ProfileService, logger *zap.Logger) *RecordHandler {
	return &RecordHandler{profiles: profiles, logger: logger}
}

func respondCreated(c *gin.Context, res core.Result[string], message string) {
	if !res.Success {
		respondFailure(c, res)
		return
	}
	c.JSON(http.StatusCreated, CreatedResponse{ID: res.Data, Notification: notify(models.NotificationSuccess, message)})
}

func respondList[T any](c *gin.Context, res core.Result[[]T]) {
	if !res.Success {
		respondFailure(c, res)
		return
	}
	if res.Data == nil {
		res.Data = []T{}
	}
	c.JSON(http.StatusOK, res.Data)
}

// CreateSignal handles POST /api/v1/signals.
func (h *RecordHandler) CreateSignal(c *gin.Context) {
	user, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req models.CreateSignalRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	res := h.profiles.AddTradingSignal(c.Request.Context(), user.UID, &models.TradingSignal{
		Symbol:      symbol,
		Action:      req.Action,
		Confidence:  req.Confidence,
		EntryPrice:  req.EntryPrice,
		TargetPrice: req.TargetPrice,
		StopLoss:    req.StopLoss,
		Comment:     req.Comment,
	})
	respondCreated(c, res, "Signal for "+symbol+" saved successfully!")
}

// ListSignals handles GET /api/v1/signals. The optional action (BUY, SELL) and confidence (high, medium,
// low) query parameters narrow the list.
func (h *RecordHandler) ListSignals(c *gin.Context) {
	user, ok := currentIdentity(c)
	if !ok {
		return
	}
	var query models.SignalQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:        "Invalid signal filter",
			Details:      err.Error(),
			Notification: notify(models.NotificationError, "Invalid signal filter"),
		})
		return
	}
	respondList(c, h.profiles.GetUserSignals(c.Request.Context(), user.UID, query.Filter()))
}

// CreateTrade handles POST /api/v1/trades.
func (h *RecordHandler) CreateTrade(c *gin.Context) {
	user, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req models.CreateTradeRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	status := req.Status
	if status == "" {
		status = "executed"
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	res := h.profiles.AddTradeHistory(c.Request.Context(), user.UID, &models.TradeHistoryEntry{
		Symbol:   symbol,
		Side:     req.Side,
		Quantity: req.Quantity,
		Price:    req.Price,
		PnL:      req.PnL,
		Status:   status,
	})
	respondCreated(c, res, req.Side+" trade for "+symbol+" executed successfully!")
}

// ListTrades handles GET /api/v1/trades.
func (h *RecordHandler) ListTrades(c *gin.Context) {
	user, ok := currentIdentity(c)
	if !ok {
		return
	}
	respondList(c, h.profiles.GetUserTradeHistory(c.Request.Context(), user.UID))
}

// CreateAlert handles POST /api/v1/alerts.
func (h *RecordHandler) CreateAlert(c *gin.Context) {
	user, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req models.CreateAlertRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	res := h.profiles.AddPriceAlert(c.Request.Context(), user.UID, &models.PriceAlert{
		Symbol:    symbol,
		AlertType: req.AlertType,
		Condition: strings.TrimSpace(req.Condition),
	})
	respondCreated(c, res, "Alert for "+symbol+" added successfully!")
}

// ListAlerts handles GET /api/v1/alerts. Only active alerts are returned.
func (h *RecordHandler) ListAlerts(c *gin.Context) {
	user, ok := currentIdentity(c)
	if !ok {
		return
	}
	respondList(c, h.profiles.GetUserAlerts(c.Request.Context(), user.UID))
}

// DeleteAlert handles DELETE /api/v1/alerts/:alertId by deactivating the alert.
func (h *RecordHandler) DeleteAlert(c *gin.Context) {
	user, ok := currentIdentity(c)
	if !ok {
		return
	}

	res := h.profiles.DeactivateAlert(c.Request.Context(), user.UID, c.Param("alertId"))
	if !res.Success {
		if res.Code == core.CodePermissionDenied {
			res.Code = core.CodeNotFound
		}
		respondFailure(c, res)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Notification: notify(models.NotificationInfo, "Alert deleted successfully!")})
}
