package models

import "time"

// TradingSignal is an append-only record in the "tradingSignals" collection.
type TradingSignal struct {
	ID          string    `json:"id" firestore:"-"`
	UserID      string    `json:"userId" firestore:"userId"`
	Symbol      string    `json:"symbol" firestore:"symbol"`
	Action      string    `json:"action" firestore:"action"`         // "BUY" or "SELL"
	Confidence  string    `json:"confidence" firestore:"confidence"` // "high", "medium", "low"
	EntryPrice  float64   `json:"entryPrice" firestore:"entryPrice"`
	TargetPrice float64   `json:"targetPrice,omitempty" firestore:"targetPrice,omitempty"`
	StopLoss    float64   `json:"stopLoss,omitempty" firestore:"stopLoss,omitempty"`
	Comment     string    `json:"comment,omitempty" firestore:"comment,omitempty"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
}

// SignalFilter narrows a signal listing. Empty fields match every signal.
type SignalFilter struct {
	Action     string
	Confidence string
}

// TradeHistoryEntry is an append-only record in the "tradeHistory" collection.
type TradeHistoryEntry struct {
	ID        string    `json:"id" firestore:"-"`
	UserID    string    `json:"userId" firestore:"userId"`
	Symbol    string    `json:"symbol" firestore:"symbol"`
	Side      string    `json:"side" firestore:"side"`
	Quantity  float64   `json:"quantity" firestore:"quantity"`
	Price     float64   `json:"price" firestore:"price"`
	PnL       float64   `json:"pnl" firestore:"pnl"`
	Status    string    `json:"status" firestore:"status"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// PriceAlert is a record in the "priceAlerts" collection. Alerts are only ever soft-deactivated.
type PriceAlert struct {
	ID        string    `json:"id" firestore:"-"`
	UserID    string    `json:"userId" firestore:"userId"`
	Symbol    string    `json:"symbol" firestore:"symbol"`
	AlertType string    `json:"alertType" firestore:"alertType"` // "price" or "signal"
	Condition string    `json:"condition" firestore:"condition"`
	IsActive  bool      `json:"isActive" firestore:"isActive"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}
