package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/trademind/internal/models"
)

// recordRepository stores one kind of per-user record in a single collection.
type recordRepository[T any] struct {
	store      DocumentStore
	collection string
	encode     func(*T) map[string]interface{}
	setID      func(*T, string)
}

func (r *recordRepository[T]) Add(ctx context.Context, record *T) (string, error) {
	data := r.encode(record)
	data["createdAt"] = ServerTimestamp

	id, err := r.store.Add(ctx, r.collection, data)
	if err != nil {
		return "", fmt.Errorf("failed to add to '%s': %w", r.collection, err)
	}
	r.setID(record, id)
	return id, nil
}

func (r *recordRepository[T]) GetByID(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, errors.New("id cannot be empty for GetByID operation")
	}
	data, err := r.store.Get(ctx, r.collection, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get '%s/%s': %w", r.collection, id, err)
	}

	var record T
	if err := decodeDocument(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode '%s/%s': %w", r.collection, id, err)
	}
	r.setID(&record, id)
	return &record, nil
}

// ListByUser returns the records of one user, newest first.
func (r *recordRepository[T]) ListByUser(ctx context.Context, userID string, filters ...Filter) ([]T, error) {
	q := Query{
		Filters: append([]Filter{{Field: "userId", Value: userID}}, filters...),
		OrderBy: "createdAt",
		Desc:    true,
	}
	docs, err := r.store.Query(ctx, r.collection, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list '%s' for user '%s': %w", r.collection, userID, err)
	}

	records := make([]T, 0, len(docs))
	for _, doc := range docs {
		var record T
		if err := decodeDocument(doc.Data, &record); err != nil {
			return nil, fmt.Errorf("failed to decode '%s/%s': %w", r.collection, doc.ID, err)
		}
		r.setID(&record, doc.ID)
		records = append(records, record)
	}
	return records, nil
}

func (r *recordRepository[T]) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if err := r.store.Update(ctx, r.collection, id, fields); err != nil {
		return fmt.Errorf("failed to update '%s/%s': %w", r.collection, id, err)
	}
	return nil
}

// NewSignalRepository creates the repository for the tradingSignals collection.
func NewSignalRepository(store DocumentStore) RecordRepository[models.TradingSignal] {
	return &recordRepository[models.TradingSignal]{
		store:      store,
		collection: TradingSignalsCollection,
		encode: func(s *models.TradingSignal) map[string]interface{} {
			return map[string]interface{}{
				"userId":      s.UserID,
				"symbol":      s.Symbol,
				"action":      s.Action,
				"confidence":  s.Confidence,
				"entryPrice":  s.EntryPrice,
				"targetPrice": s.TargetPrice,
				"stopLoss":    s.StopLoss,
				"comment":     s.Comment,
			}
		},
		setID: func(s *models.TradingSignal, id string) { s.ID = id },
	}
}

// NewTradeHistoryRepository creates the repository for the tradeHistory collection.
func NewTradeHistoryRepository(store DocumentStore) RecordRepository[models.TradeHistoryEntry] {
	return &recordRepository[models.TradeHistoryEntry]{
		store:      store,
		collection: TradeHistoryCollection,
		encode: func(t *models.TradeHistoryEntry) map[string]interface{} {
			return map[string]interface{}{
				"userId":   t.UserID,
				"symbol":   t.Symbol,
				"side":     t.Side,
				"quantity": t.Quantity,
				"price":    t.Price,
				"pnl":      t.PnL,
				"status":   t.Status,
			}
		},
		setID: func(t *models.TradeHistoryEntry, id string) { t.ID = id },
	}
}

// NewAlertRepository creates the repository for the priceAlerts collection.
func NewAlertRepository(store DocumentStore) RecordRepository[models.PriceAlert] {
	return &recordRepository[models.PriceAlert]{
		store:      store,
		collection: PriceAlertsCollection,
		encode: func(a *models.PriceAlert) map[string]interface{} {
			return map[string]interface{}{
				"userId":    a.UserID,
				"symbol":    a.Symbol,
				"alertType": a.AlertType,
				"condition": a.Condition,
				"isActive":  a.IsActive,
			}
		},
		setID: func(a *models.PriceAlert, id string) { a.ID = id },
	}
}
