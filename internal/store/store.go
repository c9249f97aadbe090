// Package store persists sentiment records and alerts. Two implementations
// are provided: an in-memory store for development and tests, and a SQLite
// store for durable single-node deployments.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/metrowatch/sentiment-etl/internal/domain"
)

// ErrAlertNotFound is returned by ResolveAlert for an unknown alert ID.
var ErrAlertNotFound = errors.New("alert not found")

// Store is the persistence surface used by the pipeline and the API.
// Appends are append-only: records with an ID already present are silently
// skipped, so re-collecting the same report is harmless.
type Store interface {
	AppendRecords(ctx context.Context, records []domain.SentimentRecord) error
	AppendAlerts(ctx context.Context, alerts []domain.Alert) error

	// RecordsSince returns records with Timestamp strictly after since,
	// newest first.
	RecordsSince(ctx context.Context, since time.Time) ([]domain.SentimentRecord, error)

	// ActiveAlerts returns unresolved alerts with Timestamp strictly after
	// since, newest first.
	ActiveAlerts(ctx context.Context, since time.Time) ([]domain.Alert, error)

	// ResolveAlert marks an alert resolved. Resolving an already-resolved
	// alert is a no-op.
	ResolveAlert(ctx context.Context, id string) error

	Close() error
}
