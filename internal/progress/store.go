// Package progress persists triage progress, per-filter quota state and the
// in-flight batch. Every write is synchronous: callers advance their state
// only after the write has returned without error.
package progress

import (
	"errors"
	"fmt"
	"swipetriage/internal/models"
	"swipetriage/internal/progress/backend"
	"swipetriage/internal/providers"
	"swipetriage/internal/structures"
	"time"

	json "github.com/goccy/go-json"
)

const (
	keyRecord   = "progress/record"
	keyQuota    = "progress/quota"
	keyInFlight = "progress/in_flight_batch"
)

var ErrPersistence = errors.New("persistence write failed")

type StoreInterface interface {
	Load() (*models.ProgressRecord, map[string]models.QuotaState, error)
	Save(record *models.ProgressRecord) error
	SaveQuota(states map[string]models.QuotaState) error
	SaveInFlightBatch(batch *models.BatchState) error
	LoadInFlightBatch() (*models.BatchState, error)
	ClearInFlightBatch() error
	// Commit writes the record and the in-flight batch in one atomic step.
	// A nil batch clears the stored one.
	Commit(record *models.ProgressRecord, batch *models.BatchState) error
	ResetAll() error
	Close() error
}

type Store struct {
	backend    backend.Backend
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	retries    int
	retryDelay time.Duration
}

func NewStore(conf *structures.Config, b backend.Backend, logger providers.Logger, metrics providers.MetricsProviderInterface) StoreInterface {
	return &Store{
		backend:    b,
		logger:     logger,
		metrics:    metrics,
		retries:    conf.Persistence.Retries,
		retryDelay: conf.Persistence.RetryDelay,
	}
}

func (s *Store) Load() (*models.ProgressRecord, map[string]models.QuotaState, error) {
	record := models.NewProgressRecord()
	raw, ok, err := s.backend.Get(keyRecord)
	if err != nil {
		return nil, nil, fmt.Errorf("read progress: %w", err)
	}
	if ok {
		if err := json.Unmarshal(raw, record); err != nil {
			return nil, nil, fmt.Errorf("decode progress: %w", err)
		}
		record.Normalize()
	}

	quotas := make(map[string]models.QuotaState)
	raw, ok, err = s.backend.Get(keyQuota)
	if err != nil {
		return nil, nil, fmt.Errorf("read quota: %w", err)
	}
	if ok {
		if err := json.Unmarshal(raw, &quotas); err != nil {
			s.logger.Warnf(providers.TypeStore, "Discarding unreadable quota state: %s", err)
			quotas = make(map[string]models.QuotaState)
		}
	}
	return record, quotas, nil
}

func (s *Store) Save(record *models.ProgressRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	return s.apply("save progress", backend.Set(keyRecord, data))
}

func (s *Store) SaveQuota(states map[string]models.QuotaState) error {
	data, err := json.Marshal(states)
	if err != nil {
		return fmt.Errorf("encode quota: %w", err)
	}
	return s.apply("save quota", backend.Set(keyQuota, data))
}

func (s *Store) SaveInFlightBatch(batch *models.BatchState) error {
	if batch == nil {
		return s.ClearInFlightBatch()
	}
	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	return s.apply("save batch", backend.Set(keyInFlight, data))
}

// LoadInFlightBatch returns nil when there is no usable batch. A batch that
// fails to decode or violates its invariants is dropped with a warning.
func (s *Store) LoadInFlightBatch() (*models.BatchState, error) {
	raw, ok, err := s.backend.Get(keyInFlight)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var batch models.BatchState
	if err := json.Unmarshal(raw, &batch); err != nil {
		s.logger.Warnf(providers.TypeStore, "Discarding unreadable in-flight batch: %s", err)
		return nil, nil
	}
	if err := batch.Validate(); err != nil {
		s.logger.Warnf(providers.TypeStore, "Discarding inconsistent in-flight batch: %s", err)
		return nil, nil
	}
	return &batch, nil
}

func (s *Store) ClearInFlightBatch() error {
	return s.apply("clear batch", backend.Remove(keyInFlight))
}

func (s *Store) Commit(record *models.ProgressRecord, batch *models.BatchState) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	ops := []backend.Op{backend.Set(keyRecord, data)}
	if batch == nil {
		ops = append(ops, backend.Remove(keyInFlight))
	} else {
		batchData, err := json.Marshal(batch)
		if err != nil {
			return fmt.Errorf("encode batch: %w", err)
		}
		ops = append(ops, backend.Set(keyInFlight, batchData))
	}
	return s.apply("commit", ops...)
}

func (s *Store) ResetAll() error {
	return s.apply("reset", backend.Remove(keyRecord), backend.Remove(keyQuota), backend.Remove(keyInFlight))
}

func (s *Store) Close() error {
	return s.backend.Close()
}

// apply retries with exponential backoff before giving up with ErrPersistence.
func (s *Store) apply(op string, ops ...backend.Op) error {
	start := time.Now()
	defer func() { s.metrics.ObservePersistenceDuration(time.Since(start)) }()

	delay := s.retryDelay
	var err error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			s.logger.Warnf(providers.TypeStore, "%s failed (attempt %d/%d): %s", op, attempt, s.retries+1, err)
			if delay > 0 {
				time.Sleep(delay)
				delay *= 2
			}
		}
		if err = s.backend.Apply(ops...); err == nil {
			return nil
		}
	}
	s.logger.Errorf(providers.TypeStore, "%s failed permanently: %s", op, err)
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
