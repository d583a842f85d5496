package services

import (
	"context"
	"errors"
	"fmt"
	"swipetriage/internal/batch"
	"swipetriage/internal/catalog"
	"swipetriage/internal/entitlement"
	"swipetriage/internal/models"
	"swipetriage/internal/progress"
	"swipetriage/internal/providers"
	"swipetriage/internal/quota"
	"swipetriage/internal/structures"
	"sync"
	"time"
)

var (
	ErrUnknownFilter      = errors.New("unknown filter")
	ErrUnknownEntitlement = errors.New("unknown entitlement")
)

// RewardedAdBonus is the number of swipes one watched rewarded ad is worth.
const RewardedAdBonus = 50

type QuotaView struct {
	FilterKey      string                       `json:"filter"`
	Entitlement    models.Entitlement           `json:"entitlement"`
	Unlimited      bool                         `json:"unlimited"`
	Remaining      int                          `json:"remaining"`
	DailyFreeLimit int                          `json:"daily_free_limit"`
	States         map[string]models.QuotaState `json:"states"`
}

type TriageServiceInterface interface {
	Restore() error
	Start(ctx context.Context)
	Stop()
	Refresh() <-chan ScanOutcome
	Snapshot() batch.View
	Swipe(action models.Action) (batch.SwipeResult, error)
	Undo() error
	UndoDelete(assetID string) error
	KeepAll() error
	Confirm(ctx context.Context) (batch.ConfirmResult, error)
	Continue() error
	SwitchFilter(key string) error
	Filters() map[string]int
	Progress() *models.ProgressRecord
	Quota() QuotaView
	GrantBonus(key string, n int) error
	SetEntitlement(value string) error
	ResetQuota(key string) error
	RolloverQuota() error
	Reset() error
	Content(ctx context.Context, assetID string, quality catalog.Quality) (catalog.Content, error)
}

// TriageService ties the batch controller to the library scanner, the quota
// gate and the entitlement feed.
type TriageService struct {
	conf         *structures.Config
	controller   *batch.Controller
	scanner      *LibraryScanner
	gate         quota.GateInterface
	store        progress.StoreInterface
	entitlements entitlement.ProviderInterface
	fetcher      catalog.ContentFetcher
	logger       providers.Logger

	mu          sync.Mutex
	baseCtx     context.Context
	unsubscribe func()
	watchDone   chan struct{}
}

func NewTriageService(
	conf *structures.Config,
	controller *batch.Controller,
	scanner *LibraryScanner,
	gate quota.GateInterface,
	store progress.StoreInterface,
	entitlements entitlement.ProviderInterface,
	fetcher catalog.ContentFetcher,
	logger providers.Logger,
) *TriageService {
	return &TriageService{
		conf:         conf,
		controller:   controller,
		scanner:      scanner,
		gate:         gate,
		store:        store,
		entitlements: entitlements,
		fetcher:      fetcher,
		logger:       logger,
		baseCtx:      context.Background(),
	}
}

// Restore loads persisted progress and quota into the controller and gate.
func (s *TriageService) Restore() error {
	record, quotas, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("restore progress: %w", err)
	}
	s.gate.Restore(quotas)
	if err := s.gate.Rollover(); err != nil {
		s.logger.Warnf(providers.TypeQuota, "Quota rollover failed: %s", err)
	}
	s.controller.Restore(record)
	s.controller.ObserveEntitlement(s.entitlements.Current())
	s.logger.Infof(providers.TypeApp, "Restored progress: %d processed, %d deleted", record.TotalProcessed, record.TotalDeleted)
	return nil
}

// Start follows entitlement changes and kicks off the first library scan.
// Scans run under ctx rather than under the request that triggered them.
func (s *TriageService) Start(ctx context.Context) {
	s.mu.Lock()
	s.baseCtx = ctx
	if s.unsubscribe == nil {
		updates, cancel := s.entitlements.Subscribe()
		s.unsubscribe = cancel
		s.watchDone = make(chan struct{})
		go s.watch(updates, s.watchDone)
	}
	s.mu.Unlock()

	s.Refresh()
}

func (s *TriageService) watch(updates <-chan models.Entitlement, done chan struct{}) {
	defer close(done)
	for e := range updates {
		s.controller.ObserveEntitlement(e)
		s.logger.Infof(providers.TypeQuota, "Entitlement is now %s", e)
	}
}

func (s *TriageService) Stop() {
	s.scanner.Stop()

	s.mu.Lock()
	cancel, done := s.unsubscribe, s.watchDone
	s.unsubscribe, s.watchDone = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (s *TriageService) Refresh() <-chan ScanOutcome {
	s.mu.Lock()
	ctx := s.baseCtx
	s.mu.Unlock()
	return s.scanner.Scan(ctx, s.controller.Load)
}

func (s *TriageService) Snapshot() batch.View {
	return s.controller.Snapshot()
}

func (s *TriageService) Swipe(action models.Action) (batch.SwipeResult, error) {
	return s.controller.Swipe(action)
}

func (s *TriageService) Undo() error {
	return s.controller.Undo()
}

func (s *TriageService) UndoDelete(assetID string) error {
	return s.controller.UndoDelete(assetID)
}

func (s *TriageService) KeepAll() error {
	return s.controller.KeepAll()
}

func (s *TriageService) Confirm(ctx context.Context) (batch.ConfirmResult, error) {
	return s.controller.ConfirmBatch(ctx)
}

// Continue leaves either the checkpoint or the deletion summary.
func (s *TriageService) Continue() error {
	if s.controller.Snapshot().State == batch.StateCheckpoint {
		return s.controller.ContinueFromCheckpoint()
	}
	return s.controller.ProceedToNextBatch()
}

func (s *TriageService) SwitchFilter(key string) error {
	f, err := models.ParseFilter(key)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownFilter, err)
	}
	return s.controller.SwitchFilter(f)
}

func (s *TriageService) Filters() map[string]int {
	return s.controller.FilterCounts()
}

func (s *TriageService) Progress() *models.ProgressRecord {
	return s.controller.Progress()
}

func (s *TriageService) Quota() QuotaView {
	key := s.controller.Snapshot().Filter.Key()
	ent := s.controller.Entitlement()
	return QuotaView{
		FilterKey:      key,
		Entitlement:    ent,
		Unlimited:      ent.Unlimited(),
		Remaining:      s.gate.Remaining(key, ent),
		DailyFreeLimit: s.conf.Quota.DailyFreeLimit,
		States:         s.gate.States(),
	}
}

// GrantBonus credits a rewarded ad. An empty key credits the selected filter.
func (s *TriageService) GrantBonus(key string, n int) error {
	if key == "" {
		key = s.controller.Snapshot().Filter.Key()
	}
	if key != quota.GlobalKey {
		if _, err := models.ParseFilter(key); err != nil {
			return fmt.Errorf("%w: %w", ErrUnknownFilter, err)
		}
	}
	if err := s.gate.GrantBonus(key, n); err != nil {
		return err
	}
	if s.gate.CanSwipe(s.controller.Snapshot().Filter.Key(), s.controller.Entitlement()) {
		s.controller.DismissPaywall()
	}
	return nil
}

// SetEntitlement records the purchase state reported by the store verifier.
// The controller observes it before this returns, so a paywall prompt is
// already gone when the caller reads the next snapshot.
func (s *TriageService) SetEntitlement(value string) error {
	e, err := models.ParseEntitlement(value)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownEntitlement, err)
	}
	s.entitlements.Set(e)
	s.controller.ObserveEntitlement(e)
	return nil
}

func (s *TriageService) ResetQuota(key string) error {
	if key == "" {
		key = s.controller.Snapshot().Filter.Key()
	}
	if err := s.gate.ResetDaily(key); err != nil {
		return err
	}
	s.controller.DismissPaywall()
	return nil
}

func (s *TriageService) RolloverQuota() error {
	return s.gate.Rollover()
}

// Reset wipes all progress and rescans the library.
func (s *TriageService) Reset() error {
	if err := s.controller.FullReset(); err != nil {
		return err
	}
	s.Refresh()
	return nil
}

func (s *TriageService) Content(ctx context.Context, assetID string, quality catalog.Quality) (catalog.Content, error) {
	asset, ok := s.controller.Asset(assetID)
	if !ok {
		return catalog.Content{}, fmt.Errorf("%w: %s", catalog.ErrAssetNotFound, assetID)
	}
	deadline := s.conf.Content.FetchTimeout
	if deadline <= 0 {
		deadline = time.Second
	}
	return s.fetcher.FetchBestEffort(ctx, asset, quality, deadline), nil
}
