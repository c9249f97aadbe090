package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/metrowatch/sentiment-etl/internal/domain"
)

type recordRow struct {
	ID                string    `gorm:"column:id;primaryKey"`
	Source            string    `gorm:"column:source;not null"`
	Text              string    `gorm:"column:text;not null"`
	RawSentiment      float64   `gorm:"column:raw_sentiment;not null"`
	AdjustedSentiment float64   `gorm:"column:adjusted_sentiment;not null"`
	Location          string    `gorm:"column:location;index"`
	Timestamp         time.Time `gorm:"column:timestamp;not null;index"`
	Confidence        float64   `gorm:"column:confidence"`
	Category          string    `gorm:"column:category"`
	Language          string    `gorm:"column:language"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (recordRow) TableName() string { return "sentiment_data" }

type alertRow struct {
	ID         string    `gorm:"column:id;primaryKey"`
	Area       string    `gorm:"column:area;not null"`
	Message    string    `gorm:"column:message;not null"`
	Severity   string    `gorm:"column:severity;not null"`
	Confidence float64   `gorm:"column:confidence"`
	AlertType  string    `gorm:"column:alert_type"`
	Timestamp  time.Time `gorm:"column:timestamp;not null;index"`
	Resolved   bool      `gorm:"column:resolved;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (alertRow) TableName() string { return "alerts" }

// SQLiteStore persists records and alerts in a SQLite database file.
// SQLite allows a single writer, so writes are serialized by GORM's
// connection pool; this store adds no locking of its own.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and
// migrates the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.AutoMigrate(&recordRow{}, &alertRow{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) AppendRecords(ctx context.Context, records []domain.SentimentRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]recordRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, recordRow{
			ID:                r.ID,
			Source:            r.Source,
			Text:              r.Text,
			RawSentiment:      r.RawSentiment,
			AdjustedSentiment: r.AdjustedSentiment,
			Location:          r.Location,
			Timestamp:         r.Timestamp,
			Confidence:        r.Confidence,
			Category:          r.Category,
			Language:          r.Language,
		})
	}

	// Record IDs are content-derived, so re-collected reports conflict;
	// keep the first copy.
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("insert sentiment records: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendAlerts(ctx context.Context, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	rows := make([]alertRow, 0, len(alerts))
	for _, a := range alerts {
		rows = append(rows, alertRow{
			ID:         a.ID,
			Area:       a.Area,
			Message:    a.Message,
			Severity:   a.Severity,
			Confidence: a.Confidence,
			AlertType:  a.AlertType,
			Timestamp:  a.Timestamp,
			Resolved:   a.Resolved,
		})
	}

	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("insert alerts: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecordsSince(ctx context.Context, since time.Time) ([]domain.SentimentRecord, error) {
	var rows []recordRow
	err := s.db.WithContext(ctx).
		Where("timestamp > ?", since).
		Order("timestamp DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query sentiment records: %w", err)
	}

	records := make([]domain.SentimentRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.SentimentRecord{
			ID:                row.ID,
			Source:            row.Source,
			Text:              row.Text,
			RawSentiment:      row.RawSentiment,
			AdjustedSentiment: row.AdjustedSentiment,
			Location:          row.Location,
			Timestamp:         row.Timestamp,
			Confidence:        row.Confidence,
			Category:          row.Category,
			Language:          row.Language,
		})
	}
	return records, nil
}

func (s *SQLiteStore) ActiveAlerts(ctx context.Context, since time.Time) ([]domain.Alert, error) {
	var rows []alertRow
	err := s.db.WithContext(ctx).
		Where("timestamp > ? AND resolved = ?", since, false).
		Order("timestamp DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}

	alerts := make([]domain.Alert, 0, len(rows))
	for _, row := range rows {
		alerts = append(alerts, domain.Alert{
			ID:         row.ID,
			Area:       row.Area,
			Message:    row.Message,
			Severity:   row.Severity,
			Confidence: row.Confidence,
			AlertType:  row.AlertType,
			Timestamp:  row.Timestamp,
			Resolved:   row.Resolved,
		})
	}
	return alerts, nil
}

func (s *SQLiteStore) ResolveAlert(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).
		Model(&alertRow{}).
		Where("id = ?", id).
		Update("resolved", true)
	if result.Error != nil {
		return fmt.Errorf("resolve alert: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAlertNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
