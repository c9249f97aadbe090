package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/metrowatch/sentiment-etl/internal/domain"
)

// MemoryStore keeps everything in process memory. Reads return copies, so
// callers can hold results across writes.
type MemoryStore struct {
	mu      sync.RWMutex
	records []domain.SentimentRecord
	seen    map[string]struct{}
	alerts  []domain.Alert
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

func (s *MemoryStore) AppendRecords(_ context.Context, records []domain.SentimentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if _, dup := s.seen[r.ID]; dup {
			continue
		}
		s.seen[r.ID] = struct{}{}
		s.records = append(s.records, r)
	}
	return nil
}

func (s *MemoryStore) AppendAlerts(_ context.Context, alerts []domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts = append(s.alerts, alerts...)
	return nil
}

func (s *MemoryStore) RecordsSince(_ context.Context, since time.Time) ([]domain.SentimentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.SentimentRecord
	for _, r := range s.records {
		if r.Timestamp.After(since) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (s *MemoryStore) ActiveAlerts(_ context.Context, since time.Time) ([]domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Alert
	for _, a := range s.alerts {
		if !a.Resolved && a.Timestamp.After(since) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (s *MemoryStore) ResolveAlert(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.alerts {
		if s.alerts[i].ID == id {
			s.alerts[i].Resolved = true
			return nil
		}
	}
	return ErrAlertNotFound
}

func (s *MemoryStore) Close() error { return nil }
