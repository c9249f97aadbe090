package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metrowatch/sentiment-etl/internal/domain"
)

var base = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func testRecord(id string, offset time.Duration) domain.SentimentRecord {
	return domain.SentimentRecord{
		ID:                id,
		Source:            domain.SourceTwitter,
		Text:              "Robbery reported near Ikeja market",
		RawSentiment:      -0.6,
		AdjustedSentiment: -0.525,
		Location:          "Ikeja",
		Timestamp:         base.Add(offset),
		Confidence:        0.8,
		Category:          domain.CategoryCrime,
		Language:          domain.LanguageEnglish,
	}
}

func testAlert(id string, offset time.Duration) domain.Alert {
	return domain.Alert{
		ID:         id,
		Area:       "Ikeja",
		Message:    "Crime-related concerns significantly elevated in Ikeja (3 reports)",
		Severity:   domain.SeverityHigh,
		Confidence: 0.8,
		AlertType:  domain.CategoryCrime,
		Timestamp:  base.Add(offset),
	}
}

// runStoreSuite exercises the Store contract against any implementation.
func runStoreSuite(t *testing.T, open func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("records round trip newest first", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		require.NoError(t, s.AppendRecords(ctx, []domain.SentimentRecord{
			testRecord("twitter-aaa", 0),
			testRecord("twitter-bbb", 2*time.Hour),
			testRecord("twitter-ccc", time.Hour),
		}))

		records, err := s.RecordsSince(ctx, base.Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "twitter-bbb", records[0].ID)
		assert.Equal(t, "twitter-ccc", records[1].ID)
		assert.Equal(t, "twitter-aaa", records[2].ID)

		assert.Equal(t, domain.CategoryCrime, records[0].Category)
		assert.InDelta(t, -0.525, records[0].AdjustedSentiment, 1e-9)
	})

	t.Run("records since excludes boundary", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		require.NoError(t, s.AppendRecords(ctx, []domain.SentimentRecord{
			testRecord("twitter-aaa", 0),
			testRecord("twitter-bbb", time.Hour),
		}))

		records, err := s.RecordsSince(ctx, base)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "twitter-bbb", records[0].ID)
	})

	t.Run("duplicate record ids are skipped", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		require.NoError(t, s.AppendRecords(ctx, []domain.SentimentRecord{testRecord("twitter-aaa", 0)}))
		require.NoError(t, s.AppendRecords(ctx, []domain.SentimentRecord{
			testRecord("twitter-aaa", time.Hour),
			testRecord("twitter-bbb", time.Hour),
		}))

		records, err := s.RecordsSince(ctx, base.Add(-time.Hour))
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("active alerts exclude resolved", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		require.NoError(t, s.AppendAlerts(ctx, []domain.Alert{
			testAlert("alert-1", 0),
			testAlert("alert-2", time.Hour),
		}))
		require.NoError(t, s.ResolveAlert(ctx, "alert-1"))

		alerts, err := s.ActiveAlerts(ctx, base.Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, "alert-2", alerts[0].ID)
	})

	t.Run("active alerts newest first", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		require.NoError(t, s.AppendAlerts(ctx, []domain.Alert{
			testAlert("alert-1", 0),
			testAlert("alert-2", 2*time.Hour),
			testAlert("alert-3", time.Hour),
		}))

		alerts, err := s.ActiveAlerts(ctx, base.Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, alerts, 3)
		assert.Equal(t, "alert-2", alerts[0].ID)
		assert.Equal(t, "alert-3", alerts[1].ID)
		assert.Equal(t, "alert-1", alerts[2].ID)
	})

	t.Run("resolve unknown alert", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		err := s.ResolveAlert(ctx, "nope")
		assert.ErrorIs(t, err, ErrAlertNotFound)
	})

	t.Run("empty store reads", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		records, err := s.RecordsSince(ctx, base)
		require.NoError(t, err)
		assert.Empty(t, records)

		alerts, err := s.ActiveAlerts(ctx, base)
		require.NoError(t, err)
		assert.Empty(t, alerts)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		return s
	})
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.FileExists(t, path)
}

func TestMemoryStore_CopyOnRead(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.AppendRecords(ctx, []domain.SentimentRecord{testRecord("twitter-aaa", time.Hour)}))

	records, err := s.RecordsSince(ctx, base)
	require.NoError(t, err)
	records[0].Location = "mutated"

	again, err := s.RecordsSince(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, "Ikeja", again[0].Location)
}
