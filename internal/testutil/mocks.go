package testutil

import (
	"context"
	"errors"
	"fmt"
	"swipetriage/internal/models"
	"swipetriage/internal/progress/backend"
	"swipetriage/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu               sync.Mutex
	Swipes           map[string]int
	QuotaDenied      int
	Deleted          int
	SavedBytes       int64
	DeletionFailures int
	PersistCalls     int
	Processed        int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    {}
func (m *MockMetrics) IncCacheMisses()                                  {}
func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistCalls++
}
func (m *MockMetrics) IncSwipes(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Swipes == nil {
		m.Swipes = make(map[string]int)
	}
	m.Swipes[action]++
}
func (m *MockMetrics) IncQuotaDenied() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuotaDenied++
}
func (m *MockMetrics) AddDeletions(count int, savedBytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted += count
	m.SavedBytes += savedBytes
}
func (m *MockMetrics) IncDeletionFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeletionFailures++
}
func (m *MockMetrics) SetProcessedTotal(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Processed = count
}

var ErrInjected = errors.New("injected failure")

// FlakyBackend wraps a backend and fails the next FailWrites writes.
type FlakyBackend struct {
	backend.Backend
	mu         sync.Mutex
	FailWrites int
	Writes     int
}

func NewFlakyBackend() *FlakyBackend {
	return &FlakyBackend{Backend: backend.NewMemoryBackend()}
}

func (f *FlakyBackend) Fail(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailWrites = n
}

func (f *FlakyBackend) Apply(ops ...backend.Op) error {
	f.mu.Lock()
	f.Writes++
	if f.FailWrites > 0 {
		f.FailWrites--
		f.mu.Unlock()
		return ErrInjected
	}
	f.mu.Unlock()
	return f.Backend.Apply(ops...)
}

func (f *FlakyBackend) Set(key string, value []byte) error {
	return f.Apply(backend.Set(key, value))
}

func (f *FlakyBackend) Remove(key string) error {
	return f.Apply(backend.Remove(key))
}

// MockCatalog implements catalog.AssetCatalog over a fixed slice.
type MockCatalog struct {
	mu     sync.Mutex
	Assets []models.Asset
	Err    error
	Delay  time.Duration
	Calls  int
}

func (m *MockCatalog) ListAssets(ctx context.Context, kinds []models.MediaType) ([]models.Asset, error) {
	m.mu.Lock()
	m.Calls++
	assets := append([]models.Asset(nil), m.Assets...)
	err := m.Err
	delay := m.Delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if len(kinds) == 0 {
		return assets, nil
	}
	out := assets[:0]
	for _, a := range assets {
		for _, k := range kinds {
			if a.MediaType == k {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}

// SetAssets replaces the catalog contents.
func (m *MockCatalog) SetAssets(assets []models.Asset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Assets = assets
}

// MockDeleter implements catalog.DeletionExecutor and records every call.
type MockDeleter struct {
	mu      sync.Mutex
	Calls   [][]string
	Err     error
	Block   chan struct{}
	Started chan struct{}
}

func (m *MockDeleter) Delete(ctx context.Context, ids []string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, append([]string(nil), ids...))
	err := m.Err
	block := m.Block
	started := m.Started
	m.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (m *MockDeleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Photos builds n photo assets with ids "<prefix>-NN" created in year.
func Photos(prefix string, n int, year int) []models.Asset {
	out := make([]models.Asset, 0, n)
	for i := 0; i < n; i++ {
		created := time.Date(year, time.March, 1+i%28, 10, 0, 0, 0, time.UTC)
		size := int64(1000 * (i + 1))
		out = append(out, models.Asset{
			ID:             fmt.Sprintf("%s-%02d", prefix, i),
			MediaType:      models.MediaPhoto,
			CreatedAt:      &created,
			EstimatedBytes: &size,
		})
	}
	return out
}

// FixedClock returns a clock function that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
