package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/trademind/internal/core"
	"github.com/example/trademind/internal/models"
	"github.com/example/trademind/internal/session"
	"github.com/example/trademind/internal/simulator"
)

// DashboardTemplate is the name of the server-rendered dashboard template.
const DashboardTemplate = "dashboard.html"

// DashboardHandler renders the dashboard and streams its simulated figures.
type DashboardHandler struct {
	bootstrap    *session.Bootstrap
	profiles     core.ProfileService
	cookies      *session.CookieCodec
	refresher    session.Refresher
	tickInterval time.Duration
	logger       *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(bootstrap *session.Bootstrap, profiles core.ProfileService, cookies *session.CookieCodec, refresher session.Refresher, tickInterval time.Duration, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		bootstrap:    bootstrap,
		profiles:     profiles,
		cookies:      cookies,
		refresher:    refresher,
		tickInterval: tickInterval,
		logger:       logger,
	}
}

type watchRow struct {
	ID     string
	Symbol string
	Price  string
}

type dashboardView struct {
	DisplayName  string
	Initial      string
	Email        string
	ProfileError string
	HasProfile   bool

	Balance     string
	TotalPnL    string
	WinRate     string
	TotalTrades int64
	RiskLevel   string

	Watchlist    []watchRow
	Signals      []models.TradingSignal
	Alerts       []models.PriceAlert
	AlertSymbol  string
	TickInterval int64
}

func newDashboardView(sess *session.Session, tickInterval time.Duration) dashboardView {
	view := dashboardView{
		DisplayName:  sess.DisplayName(),
		Initial:      sess.Initial(),
		Email:        sess.Identity.Email,
		ProfileError: sess.ProfileError,
		AlertSymbol:  "AAPL",
		TickInterval: tickInterval.Milliseconds(),
	}
	for _, q := range simulator.DefaultWatchlist {
		view.Watchlist = append(view.Watchlist, watchRow{
			ID:     "price:" + q.Symbol,
			Symbol: q.Symbol,
			Price:  simulator.FormatPrice(q.Price),
		})
	}
	if p := sess.Profile; p != nil {
		view.HasProfile = true
		view.Balance = simulator.FormatBalance(p.Portfolio.Balance)
		view.TotalPnL = simulator.FormatBalance(p.Portfolio.TotalPnL)
		view.WinRate = fmt.Sprintf("%.1f%%", p.Portfolio.WinRate)
		view.TotalTrades = p.Portfolio.TotalTrades
		view.RiskLevel = p.Preferences.RiskLevel
	}
	return view
}

// Dashboard handles GET /index.html and GET /dashboard. Unauthenticated requests are redirected to the
// login page before any dashboard content is written.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	idToken, _ := bearerOrCookieToken(c, h.cookies)

	outcome, err := h.bootstrap.Run(ctx, idToken)
	if err == nil && outcome.State != session.Authenticated {
		if renewed, ok := renewCookieSession(c, h.cookies, h.refresher, h.logger); ok {
			outcome, err = h.bootstrap.Run(ctx, renewed.IDToken)
		}
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			h.logger.Warn("Dashboard bootstrap aborted", zap.Error(err))
		}
		return
	}
	if outcome.State != session.Authenticated {
		c.Redirect(http.StatusFound, outcome.RedirectTo)
		return
	}

	view := newDashboardView(outcome.Session, h.tickInterval)
	if view.HasProfile {
		uid := outcome.Session.Identity.UID
		if signals := h.profiles.GetUserSignals(ctx, uid, models.SignalFilter{}); signals.Success {
			view.Signals = signals.Data
		}
		if alerts := h.profiles.GetUserAlerts(ctx, uid); alerts.Success {
			view.Alerts = alerts.Data
		}
	}
	c.HTML(http.StatusOK, DashboardTemplate, view)
}

// Ticks handles GET /api/v1/ticks: a server-sent event stream of simulated figures for the caller.
// The first event is the seeded board, then one event per tick until the client goes away.
func (h *DashboardHandler) Ticks(c *gin.Context) {
	user, ok := currentIdentity(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	balance := models.DefaultBalance
	if profile := h.profiles.GetUserData(ctx, user.UID); profile.Success {
		balance = profile.Data.Portfolio.Balance
	}
	symbols := c.Query("symbols")
	board := simulator.NewDashboardBoard(watchlistFor(symbols), balance, nil)

	ticks := make(chan []simulator.Figure, 1)
	go func() {
		_ = simulator.Run(ctx, board, h.tickInterval, func(figures []simulator.Figure) {
			select {
			case ticks <- figures:
			case <-ctx.Done():
			}
		})
	}()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent("tick", board.Snapshot())
	c.Writer.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case figures := <-ticks:
			c.SSEvent("tick", figures)
			c.Writer.Flush()
		}
	}
}

// watchlistFor restricts the default watchlist to a comma separated list of symbols.
func watchlistFor(symbols string) []simulator.Quote {
	if symbols == "" {
		return simulator.DefaultWatchlist
	}
	wanted := make(map[string]bool)
	for _, s := range strings.Split(symbols, ",") {
		wanted[strings.ToUpper(strings.TrimSpace(s))] = true
	}
	var quotes []simulator.Quote
	for _, q := range simulator.DefaultWatchlist {
		if wanted[q.Symbol] {
			quotes = append(quotes, q)
		}
	}
	return quotes
}
