package services

import (
	"context"
	"swipetriage/internal/catalog"
	"swipetriage/internal/models"
	"swipetriage/internal/providers"
	"sync"

	"go.uber.org/atomic"
)

type ScanOutcome struct {
	Generation uint64
	Applied    bool
	Assets     int
	Err        error
}

// LibraryScanner runs catalog scans off the request path. Starting a scan
// cancels the one in flight, and only the newest scan's result is applied.
type LibraryScanner struct {
	catalog    catalog.AssetCatalog
	kinds      []models.MediaType
	logger     providers.Logger
	generation atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewLibraryScanner(c catalog.AssetCatalog, kinds []models.MediaType, logger providers.Logger) *LibraryScanner {
	return &LibraryScanner{catalog: c, kinds: kinds, logger: logger}
}

// Scan starts a new scan and hands its assets to apply unless a newer scan
// has started in the meantime. The returned channel receives exactly one
// outcome.
func (s *LibraryScanner) Scan(ctx context.Context, apply func([]models.Asset) error) <-chan ScanOutcome {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	scanCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	gen := s.generation.Inc()
	s.mu.Unlock()

	out := make(chan ScanOutcome, 1)
	go func() {
		defer cancel()
		assets, err := s.catalog.ListAssets(scanCtx, s.kinds)

		s.mu.Lock()
		defer s.mu.Unlock()
		outcome := ScanOutcome{Generation: gen, Assets: len(assets)}
		switch {
		case gen != s.generation.Load():
			s.logger.Debugf(providers.TypeLibrary, "Discarding scan %d, superseded by %d", gen, s.generation.Load())
			outcome.Err = err
		case err != nil:
			s.logger.Errorf(providers.TypeLibrary, "Library scan %d failed: %s", gen, err)
			outcome.Err = err
		default:
			outcome.Err = apply(assets)
			outcome.Applied = outcome.Err == nil
			if outcome.Err != nil {
				s.logger.Warnf(providers.TypeLibrary, "Scan %d not applied: %s", gen, outcome.Err)
			} else {
				s.logger.Infof(providers.TypeLibrary, "Scan %d applied: %d assets", gen, len(assets))
			}
		}
		out <- outcome
	}()
	return out
}

func (s *LibraryScanner) Generation() uint64 {
	return s.generation.Load()
}

// Stop cancels the scan in flight, if any.
func (s *LibraryScanner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
