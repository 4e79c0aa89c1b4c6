// Package simulator drifts the figures shown on the dashboard with pseudo-random deltas.
// The drift is cosmetic: it never touches stored portfolio data and is discarded with the board.
package simulator

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultInterval is the tick period of the dashboard.
const DefaultInterval = 5 * time.Second

// Kind selects how a figure is perturbed and formatted.
type Kind string

const (
	// Price figures move by a uniform delta in [-1, +1) and render as "$123.45".
	Price Kind = "price"
	// Balance figures move by a uniform delta in [-50, +50) and render as "$25,000.00".
	Balance Kind = "balance"
)

// Figure is one displayed value.
type Figure struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Quote seeds a price figure.
type Quote struct {
	Symbol string
	Price  float64
}

// DefaultWatchlist is the watchlist rendered on the dashboard.
var DefaultWatchlist = []Quote{
	{Symbol: "AAPL", Price: 175.43},
	{Symbol: "TSLA", Price: 248.50},
	{Symbol: "NVDA", Price: 875.28},
	{Symbol: "MSFT", Price: 378.85},
	{Symbol: "AMZN", Price: 151.94},
}

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatPrice renders v as "$%.2f".
func FormatPrice(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// FormatBalance renders v with thousands separators and two decimals.
func FormatBalance(v float64) string {
	return printer.Sprintf("$%.2f", v)
}

// ParseFigure reads back a value written by FormatPrice or FormatBalance.
func ParseFigure(text string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(text), "$"), ",", "")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unreadable figure %q: %w", text, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("unreadable figure %q", text)
	}
	return v, nil
}

// Board holds the figures of one dashboard view.
type Board struct {
	mu      sync.Mutex
	figures []Figure
	rng     *rand.Rand
}

// NewBoard creates an empty board. A nil rng uses a randomly seeded generator.
func NewBoard(rng *rand.Rand) *Board {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Board{rng: rng}
}

// NewDashboardBoard seeds a board with the watchlist prices and the portfolio balance.
func NewDashboardBoard(watchlist []Quote, balance float64, rng *rand.Rand) *Board {
	b := NewBoard(rng)
	for _, q := range watchlist {
		b.AddPrice("price:"+q.Symbol, q.Price)
	}
	b.AddBalance("balance:portfolio", balance)
	return b
}

func (b *Board) AddPrice(id string, value float64) {
	b.add(Figure{ID: id, Kind: Price, Text: FormatPrice(value)})
}

func (b *Board) AddBalance(id string, value float64) {
	b.add(Figure{ID: id, Kind: Balance, Text: FormatBalance(value)})
}

// AddText adds a figure from its displayed text.
func (b *Board) AddText(id string, kind Kind, text string) error {
	if kind != Price && kind != Balance {
		return fmt.Errorf("unknown figure kind %q", kind)
	}
	if _, err := ParseFigure(text); err != nil {
		return err
	}
	b.add(Figure{ID: id, Kind: kind, Text: text})
	return nil
}

func (b *Board) add(f Figure) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.figures = append(b.figures, f)
}

// Snapshot returns a copy of the current figures.
func (b *Board) Snapshot() []Figure {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Figure(nil), b.figures...)
}

// Tick perturbs every figure once, floors the results at zero and returns the new figures.
// Figures whose text cannot be read are left unchanged.
func (b *Board) Tick() []Figure {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, f := range b.figures {
		current, err := ParseFigure(f.Text)
		if err != nil {
			continue
		}
		switch f.Kind {
		case Price:
			next := math.Max(0, current+(b.rng.Float64()-0.5)*2)
			b.figures[i].Text = FormatPrice(next)
		case Balance:
			next := math.Max(0, current+(b.rng.Float64()-0.5)*100)
			b.figures[i].Text = FormatBalance(next)
		}
	}
	return append([]Figure(nil), b.figures...)
}

// Run ticks the board every interval and hands each result to emit until ctx is done.
func Run(ctx context.Context, b *Board, interval time.Duration, emit func([]Figure)) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			emit(b.Tick())
		}
	}
}
