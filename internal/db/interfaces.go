package db

import (
	"context"
	"errors"

	"github.com/example/trademind/internal/models"
)

// Collection names used by the application.
const (
	UsersCollection          = "users"
	TradingSignalsCollection = "tradingSignals"
	TradeHistoryCollection   = "tradeHistory"
	PriceAlertsCollection    = "priceAlerts"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyExists is returned by Create when the document id is taken.
	ErrAlreadyExists = errors.New("document already exists")
)

// serverTimestamp is the type of the ServerTimestamp sentinel.
type serverTimestamp struct{}

// ServerTimestamp may be used as a field value in Create, Add and Update payloads.
// The store replaces it with its own clock at write time.
var ServerTimestamp = serverTimestamp{}

// Filter is an equality filter on a top-level field.
type Filter struct {
	Field string
	Value interface{}
}

// Query describes a simple collection query: equality filters, a single ordering field and an optional limit.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// Document is a raw document returned by a query.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// DocumentStore defines the document operations the application needs from its backing store.
type DocumentStore interface {
	Get(ctx context.Context, collection string, docID string) (map[string]interface{}, error)
	// Create writes a document with a caller-chosen id, failing with ErrAlreadyExists if it is present.
	// It is the atomic create-if-absent primitive used for profiles.
	Create(ctx context.Context, collection string, docID string, data map[string]interface{}) error
	// Add writes a document with a store-generated id and returns that id.
	Add(ctx context.Context, collection string, data map[string]interface{}) (string, error)
	// Update merges fields into an existing document, failing with ErrNotFound if it is absent.
	// Keys may be dotted paths ("preferences.newsletter").
	Update(ctx context.Context, collection string, docID string, data map[string]interface{}) error
	Delete(ctx context.Context, collection string, docID string) error
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	Close() error
}

// ProfileRepository defines the operations on user profile documents.
type ProfileRepository interface {
	GetByID(ctx context.Context, userID string) (*models.Profile, error)
	// Create writes a new profile. It returns ErrAlreadyExists, and leaves the stored profile untouched,
	// when one is already present.
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, userID string, fields map[string]interface{}) error
	TouchLastLogin(ctx context.Context, userID string) error
}

// RecordRepository defines the operations on the append-only per-user collections.
type RecordRepository[T any] interface {
	Add(ctx context.Context, record *T) (string, error)
	GetByID(ctx context.Context, id string) (*T, error)
	ListByUser(ctx context.Context, userID string, filters ...Filter) ([]T, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
}
