// Package batch owns the swipe session: it assembles fixed-size batches from
// the filtered pool, records decisions, drives the review and deletion flow
// and keeps progress counters in step with persisted state.
//
// Every mutation goes through one Controller and is persisted before it is
// applied in memory, so a crash never leaves memory ahead of storage.
package batch

import (
	"context"
	"errors"
	"fmt"
	"swipetriage/internal/catalog"
	"swipetriage/internal/filter"
	"swipetriage/internal/models"
	"swipetriage/internal/progress"
	"swipetriage/internal/providers"
	"swipetriage/internal/quota"
	"swipetriage/internal/structures"
	"sync"
	"time"
)

const (
	DefaultBatchSize = 10
	dayLayout        = "2006-01-02"
)

type Controller struct {
	mu        sync.Mutex
	batchSize int

	engine  filter.EngineInterface
	gate    quota.GateInterface
	store   progress.StoreInterface
	deleter catalog.DeletionExecutor
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	now     func() time.Time

	state       State
	record      *models.ProgressRecord
	library     []models.Asset
	pool        []models.Asset
	batch       *models.BatchState
	nextStart   int
	nextIndex   int
	entitlement models.Entitlement
	paywall     bool
	busy        bool
	lastSummary *DeletionSummary

	// A scan arriving during a deletion is held here and applied once the
	// deletion returns.
	deferred       bool
	deferredAssets []models.Asset
}

func NewController(
	conf *structures.Config,
	engine filter.EngineInterface,
	gate quota.GateInterface,
	store progress.StoreInterface,
	deleter catalog.DeletionExecutor,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) *Controller {
	return NewControllerWithClock(conf, engine, gate, store, deleter, logger, metrics, time.Now)
}

func NewControllerWithClock(
	conf *structures.Config,
	engine filter.EngineInterface,
	gate quota.GateInterface,
	store progress.StoreInterface,
	deleter catalog.DeletionExecutor,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	now func() time.Time,
) *Controller {
	size := conf.Batch.Size
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &Controller{
		batchSize: size,
		engine:    engine,
		gate:      gate,
		store:     store,
		deleter:   deleter,
		logger:    logger,
		metrics:   metrics,
		now:       now,
		state:     StateLoading,
		record:    models.NewProgressRecord(),
	}
}

// Restore installs the persisted progress. It is called once before the
// first Load.
func (c *Controller) Restore(record *models.ProgressRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if record == nil {
		record = models.NewProgressRecord()
	}
	c.record = record.Clone()
	c.nextIndex = c.record.NextBatchIndex
	c.metrics.SetProcessedTotal(c.record.TotalProcessed)
}

// Load applies a library scan. On the first load a persisted in-flight batch
// for the selected filter is resumed; later loads keep the current batch when
// all of its assets still exist. A scan that arrives while a deletion runs is
// applied when the deletion returns; only the latest such scan is kept.
func (c *Controller) Load(assets []models.Asset) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		c.deferred = true
		c.deferredAssets = append([]models.Asset(nil), assets...)
		c.logger.Debugf(providers.TypeBatch, "Deletion in progress, scan of %d assets deferred", len(assets))
		return nil
	}
	c.load(assets)
	return nil
}

func (c *Controller) applyDeferred() {
	if !c.deferred {
		return
	}
	assets := c.deferredAssets
	c.deferred, c.deferredAssets = false, nil
	c.load(assets)
}

func (c *Controller) load(assets []models.Asset) {
	c.library = append([]models.Asset(nil), assets...)

	switch c.state {
	case StateCheckpoint, StateContinuing:
		// The finished batch is already processed, so a fresh pool starts at 0.
		c.rebuildPool()
		c.nextStart = 0
		return
	}

	candidate := c.batch
	if c.state == StateLoading && candidate == nil {
		stored, err := c.store.LoadInFlightBatch()
		if err != nil {
			c.logger.Warnf(providers.TypeBatch, "Cannot read in-flight batch: %s", err)
		}
		candidate = stored
	}

	if candidate != nil {
		if c.resume(candidate) {
			return
		}
		if candidate.Filter == c.record.SelectedFilter && candidate.BatchIndex > c.nextIndex {
			c.nextIndex = candidate.BatchIndex
		}
		c.batch = nil
		if err := c.store.ClearInFlightBatch(); err != nil {
			c.logger.Warnf(providers.TypeBatch, "Cannot clear stale in-flight batch: %s", err)
		}
	}

	c.rebuildPool()
	if len(c.pool) == 0 {
		c.state = StateEmpty
		return
	}
	c.assemble(0, c.nextIndex)
}

// resume reinstates batch. It fails when the batch belongs to another filter
// or refers to an asset the library no longer has.
func (c *Controller) resume(batch *models.BatchState) bool {
	if batch.Confirming {
		return c.settleConfirm(batch)
	}
	if batch.Filter != c.record.SelectedFilter {
		c.logger.Infof(providers.TypeBatch, "Dropping in-flight batch for %s, selected filter is %s", batch.Filter, c.record.SelectedFilter)
		return false
	}
	byID := make(map[string]models.Asset, len(c.library))
	for _, a := range c.library {
		byID[a.ID] = a
	}
	resumed := batch.Clone()
	inBatch := models.NewStringSet()
	for i, a := range resumed.Assets {
		current, ok := byID[a.ID]
		if !ok {
			c.logger.Warnf(providers.TypeBatch, "Dropping in-flight batch: asset %s is gone from the library", a.ID)
			return false
		}
		resumed.Assets[i] = current
		inBatch.Add(a.ID)
	}

	pool := append([]models.Asset(nil), resumed.Assets...)
	for _, a := range c.engine.SelectUnprocessed(c.library, resumed.Filter, c.record.ProcessedAssetIDs, c.now()) {
		if !inBatch.Has(a.ID) {
			pool = append(pool, a)
		}
	}
	resumed.PoolOffset = 0
	if resumed.Done() {
		resumed.Reviewing = true
	}

	c.pool = pool
	c.batch = resumed
	if resumed.Reviewing {
		c.state = StateReviewing
	} else {
		c.state = StateSwiping
	}
	c.logger.Infof(providers.TypeBatch, "Resumed batch %d of %s at %d/%d", resumed.BatchIndex, resumed.Filter, resumed.Cursor, len(resumed.Assets))
	return true
}

// settleConfirm finishes a confirmation interrupted by a restart. Delete
// targets missing from the library were removed, so the batch is committed
// with them; targets still present stay unprocessed. When no target is
// missing the deletion never happened and the batch goes back to review.
func (c *Controller) settleConfirm(batch *models.BatchState) bool {
	inLibrary := models.NewStringSet()
	for _, a := range c.library {
		inLibrary.Add(a.ID)
	}
	keep, del := batch.Partition()
	gone := models.NewStringSet()
	for _, id := range del {
		if !inLibrary.Has(id) {
			gone.Add(id)
		}
	}

	if gone.Len() == 0 {
		reopened := batch.Clone()
		reopened.Confirming = false
		if err := c.store.SaveInFlightBatch(reopened); err != nil {
			c.logger.Warnf(providers.TypeBatch, "Reopened batch not persisted: %s", err)
		}
		c.logger.Infof(providers.TypeBatch, "Deletion of batch %d did not run, back to review", batch.BatchIndex)
		return c.resume(reopened)
	}

	processed := append([]string(nil), keep...)
	var savedBytes int64
	for _, a := range batch.Assets {
		if gone.Has(a.ID) {
			processed = append(processed, a.ID)
			savedBytes += a.Size()
		}
	}
	record := c.record.Clone()
	record.MarkProcessed(processed...)
	record.RecordDeletion(gone.Len(), savedBytes)
	record.RecordActiveDay(c.today())
	record.NextBatchIndex = batch.BatchIndex + 1
	if err := c.store.Commit(record, nil); err != nil {
		c.logger.Errorf(providers.TypeBatch, "Interrupted batch not persisted: %s", err)
	}

	c.record = record
	c.batch = nil
	c.lastSummary = &DeletionSummary{Deleted: gone.Len(), Kept: len(keep), SavedBytes: savedBytes}
	c.nextStart, c.nextIndex = 0, batch.BatchIndex+1
	c.metrics.AddDeletions(gone.Len(), savedBytes)
	c.metrics.SetProcessedTotal(record.TotalProcessed)
	c.logger.Infof(providers.TypeBatch, "Finished interrupted batch %d of %s: %d deleted, %d kept", batch.BatchIndex, batch.Filter, gone.Len(), len(keep))

	c.rebuildPool()
	if len(c.pool) == 0 {
		c.complete()
	} else {
		c.state = StateContinuing
	}
	return true
}

func (c *Controller) rebuildPool() {
	c.pool = c.engine.SelectUnprocessed(c.library, c.record.SelectedFilter, c.record.ProcessedAssetIDs, c.now())
}

// assemble slices the next batch out of the pool. A start at or past the end
// of the pool completes the filter.
func (c *Controller) assemble(start, index int) {
	if start >= len(c.pool) {
		if start > len(c.pool) {
			c.logger.Warnf(providers.TypeBatch, "Batch start %d past pool of %d, completing", start, len(c.pool))
		}
		c.complete()
		return
	}
	end := start + c.batchSize
	if end > len(c.pool) {
		end = len(c.pool)
	}
	assets := make([]models.Asset, end-start)
	copy(assets, c.pool[start:end])

	c.batch = &models.BatchState{
		Filter:     c.record.SelectedFilter,
		BatchIndex: index,
		PoolOffset: start,
		Assets:     assets,
		Decisions:  []models.SwipeDecision{},
	}
	c.state = StateSwiping
	if err := c.store.SaveInFlightBatch(c.batch); err != nil {
		c.logger.Warnf(providers.TypeBatch, "New batch not persisted: %s", err)
	}
}

func (c *Controller) complete() {
	c.batch = nil
	c.state = StateCompleted
	if err := c.store.ClearInFlightBatch(); err != nil {
		c.logger.Warnf(providers.TypeBatch, "Cannot clear in-flight batch: %s", err)
	}
}

// counterKeys lists the per-filter counters a swipe of asset moves. A random
// swipe also counts toward the year of the asset.
func (c *Controller) counterKeys(f models.Filter, asset models.Asset) []string {
	keys := []string{f.Key()}
	if f.IsRandom() && asset.CreatedAt != nil {
		year := asset.CreatedAt.In(c.now().Location()).Year()
		keys = append(keys, models.YearFilter(year).Key())
	}
	return keys
}

func (c *Controller) today() string {
	return c.now().Format(dayLayout)
}

func (c *Controller) Swipe(action models.Action) (SwipeResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return SwipeResult{State: c.state}, ErrBusy
	}
	if c.state != StateSwiping {
		return SwipeResult{State: c.state}, ErrInvalidState
	}
	asset, ok := c.batch.Current()
	if !ok {
		return SwipeResult{State: c.state}, ErrInvalidState
	}

	key := c.batch.Filter.Key()
	if !c.gate.CanSwipe(key, c.entitlement) {
		c.paywall = true
		c.metrics.IncQuotaDenied()
		c.logger.Debugf(providers.TypeQuota, "Swipe on %s blocked by quota", key)
		return SwipeResult{Blocked: true, State: c.state}, nil
	}

	next := c.batch.Clone()
	next.Decisions = append(next.Decisions, models.SwipeDecision{AssetID: asset.ID, Action: action})
	next.Cursor++
	if action == models.ActionDelete {
		next.HadAnyDeletion = true
	}
	record := c.record.Clone()
	record.IncProcessed(c.counterKeys(next.Filter, asset)...)

	nextState := StateSwiping
	checkpoint := false
	if next.Done() {
		if !next.HasDeleteDecision() && !next.HadAnyDeletion {
			checkpoint = true
			record.MarkProcessed(next.DecidedIDs()...)
			record.RecordActiveDay(c.today())
			record.NextBatchIndex = next.BatchIndex + 1
			nextState = StateCheckpoint
		} else {
			next.Reviewing = true
			nextState = StateReviewing
		}
	}

	var err error
	if checkpoint {
		err = c.store.Commit(record, nil)
	} else {
		err = c.store.Commit(record, next)
	}
	if err != nil {
		return SwipeResult{State: c.state}, err
	}

	if err := c.gate.RecordSwipe(key); err != nil {
		c.logger.Errorf(providers.TypeQuota, "Swipe on %s not counted: %s", key, err)
	}

	c.record = record
	c.state = nextState
	if checkpoint {
		c.batch = nil
		c.nextStart = next.PoolOffset + len(next.Assets)
		c.nextIndex = next.BatchIndex + 1
		c.lastSummary = &DeletionSummary{Kept: len(next.Decisions)}
		c.logger.Infof(providers.TypeBatch, "Batch %d of %s kept in full", next.BatchIndex, next.Filter)
	} else {
		c.batch = next
	}
	c.metrics.IncSwipes(action.String())
	c.metrics.SetProcessedTotal(record.TotalProcessed)

	return SwipeResult{
		Accepted:         true,
		ShowInterstitial: c.gate.ShouldShowInterstitial(c.entitlement),
		State:            c.state,
	}, nil
}

// Undo pops the most recent decision. It does not give back quota.
func (c *Controller) Undo() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return ErrBusy
	}
	if c.state != StateSwiping && c.state != StateReviewing {
		return ErrInvalidState
	}
	if len(c.batch.Decisions) == 0 {
		return ErrNoDecisions
	}

	next := c.batch.Clone()
	next.Decisions = next.Decisions[:len(next.Decisions)-1]
	next.Cursor--
	next.Reviewing = false
	next.HadAnyDeletion = next.HasDeleteDecision()

	record := c.record.Clone()
	record.DecProcessed(c.counterKeys(next.Filter, next.Assets[next.Cursor])...)

	if err := c.store.Commit(record, next); err != nil {
		return err
	}
	c.record = record
	c.batch = next
	c.state = StateSwiping
	c.metrics.SetProcessedTotal(record.TotalProcessed)
	return nil
}

// UndoDelete turns a pending delete back into a keep. Counters are untouched.
func (c *Controller) UndoDelete(assetID string) error {
	return c.rewriteDecisions(func(d *models.SwipeDecision) bool {
		return d.AssetID == assetID
	}, assetID)
}

func (c *Controller) KeepAll() error {
	return c.rewriteDecisions(func(*models.SwipeDecision) bool { return true }, "")
}

func (c *Controller) rewriteDecisions(match func(*models.SwipeDecision) bool, assetID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return ErrBusy
	}
	if c.state != StateReviewing {
		return ErrInvalidState
	}
	if assetID != "" {
		if _, ok := c.batch.AssetByID(assetID); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAsset, assetID)
		}
	}

	next := c.batch.Clone()
	changed := 0
	for i := range next.Decisions {
		d := &next.Decisions[i]
		if d.Action == models.ActionDelete && match(d) {
			d.Action = models.ActionKeep
			changed++
		}
	}
	if changed == 0 {
		return nil
	}
	if err := c.store.SaveInFlightBatch(next); err != nil {
		return err
	}
	c.batch = next
	return nil
}

// ConfirmBatch commits the reviewed batch. The lock is released while the
// deleter runs; other mutations are refused with ErrBusy until it returns.
// Before deleting, the batch is stored with Confirming set so a restart can
// tell whether the deletion ran. Confirming with no decisions is a no-op.
func (c *Controller) ConfirmBatch(ctx context.Context) (ConfirmResult, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ConfirmResult{State: StateConfirmingDeletion}, ErrBusy
	}
	if c.batch == nil || len(c.batch.Decisions) == 0 {
		state := c.state
		c.mu.Unlock()
		return ConfirmResult{State: state}, nil
	}
	if c.state != StateReviewing {
		state := c.state
		c.mu.Unlock()
		return ConfirmResult{State: state}, ErrInvalidState
	}
	batch := c.batch
	keep, del := batch.Partition()
	if len(del) > 0 {
		pending := batch.Clone()
		pending.Confirming = true
		if err := c.store.SaveInFlightBatch(pending); err != nil {
			state := c.state
			c.mu.Unlock()
			return ConfirmResult{State: state}, err
		}
	}
	c.busy = true
	c.state = StateConfirmingDeletion
	c.mu.Unlock()

	var err error
	if len(del) > 0 {
		err = c.deleter.Delete(ctx, del)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.applyDeferred()
	c.busy = false

	if err != nil {
		if perr := c.store.SaveInFlightBatch(batch); perr != nil {
			c.logger.Warnf(providers.TypeBatch, "Cannot clear confirming mark: %s", perr)
		}
		c.state = StateReviewing
		c.metrics.IncDeletionFailures()
		c.logger.Errorf(providers.TypeBatch, "Deleting %d assets failed: %s", len(del), err)
		if !errors.Is(err, catalog.ErrDeletionFailed) {
			err = fmt.Errorf("%w: %w", catalog.ErrDeletionFailed, err)
		}
		return ConfirmResult{State: c.state}, err
	}

	deleted := models.NewStringSet(del...)
	var savedBytes int64
	for _, a := range batch.Assets {
		if deleted.Has(a.ID) {
			savedBytes += a.Size()
		}
	}

	record := c.record.Clone()
	record.MarkProcessed(batch.DecidedIDs()...)
	record.RecordDeletion(len(del), savedBytes)
	record.RecordActiveDay(c.today())
	record.NextBatchIndex = batch.BatchIndex + 1

	// The files are gone whatever happens next, so memory follows the
	// deletion even when the commit below fails.
	persistErr := c.store.Commit(record, nil)
	if persistErr != nil {
		c.logger.Errorf(providers.TypeBatch, "Confirmed batch not persisted: %s", persistErr)
	}

	c.record = record
	c.pool = without(c.pool, deleted)
	c.library = without(c.library, deleted)
	if c.deferred {
		c.deferredAssets = without(c.deferredAssets, deleted)
	}
	c.batch = nil
	summary := DeletionSummary{Deleted: len(del), Kept: len(keep), SavedBytes: savedBytes}
	c.lastSummary = &summary
	if len(del) > 0 {
		c.metrics.AddDeletions(len(del), savedBytes)
	}
	c.metrics.SetProcessedTotal(record.TotalProcessed)
	c.logger.Infof(providers.TypeBatch, "Batch %d of %s confirmed: %d deleted, %d kept", batch.BatchIndex, batch.Filter, len(del), len(keep))

	c.nextStart = batch.PoolOffset + len(batch.Assets) - len(del)
	c.nextIndex = batch.BatchIndex + 1
	switch {
	case c.nextStart >= len(c.pool):
		c.complete()
	case len(del) > 0:
		c.state = StateContinuing
	default:
		c.assemble(c.nextStart, c.nextIndex)
	}
	return ConfirmResult{Summary: summary, State: c.state}, persistErr
}

func (c *Controller) ContinueFromCheckpoint() error {
	return c.advanceFrom(StateCheckpoint)
}

func (c *Controller) ProceedToNextBatch() error {
	return c.advanceFrom(StateContinuing)
}

func (c *Controller) advanceFrom(from State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return ErrBusy
	}
	if c.state != from {
		return ErrInvalidState
	}
	c.lastSummary = nil
	c.assemble(c.nextStart, c.nextIndex)
	return nil
}

// SwitchFilter abandons the in-flight batch without marking anything
// processed and starts the new filter from its first batch. Counters carry
// over.
func (c *Controller) SwitchFilter(f models.Filter) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return ErrBusy
	}
	record := c.record.Clone()
	record.SelectedFilter = f
	record.NextBatchIndex = 0
	if err := c.store.Commit(record, nil); err != nil {
		return err
	}
	c.record = record
	c.batch = nil
	c.lastSummary = nil
	c.nextStart, c.nextIndex = 0, 0

	if c.library == nil {
		c.state = StateLoading
		return nil
	}
	c.rebuildPool()
	if len(c.pool) == 0 {
		c.state = StateEmpty
		return nil
	}
	c.assemble(0, 0)
	return nil
}

// FullReset wipes progress, quota and the in-flight batch and returns to
// Loading. The next Load starts from scratch.
func (c *Controller) FullReset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return ErrBusy
	}
	if err := c.store.ResetAll(); err != nil {
		return err
	}
	if err := c.gate.ResetAll(); err != nil {
		c.logger.Errorf(providers.TypeQuota, "Quota not reset: %s", err)
	}
	c.record = models.NewProgressRecord()
	c.library = nil
	c.pool = nil
	c.batch = nil
	c.nextStart, c.nextIndex = 0, 0
	c.paywall = false
	c.lastSummary = nil
	c.deferred, c.deferredAssets = false, nil
	c.state = StateLoading
	c.metrics.SetProcessedTotal(0)
	c.logger.Infof(providers.TypeBatch, "Progress reset")
	return nil
}

// ObserveEntitlement records an entitlement change; becoming unlimited
// dismisses a pending paywall prompt.
func (c *Controller) ObserveEntitlement(e models.Entitlement) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entitlement = e
	if e.Unlimited() {
		c.paywall = false
	}
}

func (c *Controller) DismissPaywall() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paywall = false
}

func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		State:          c.state,
		Filter:         c.record.SelectedFilter,
		PoolSize:       len(c.pool),
		Assets:         []models.Asset{},
		Decisions:      []models.SwipeDecision{},
		PendingDeletes: []string{},
		Entitlement:    c.entitlement,
		PaywallPrompt:  c.paywall,
		Busy:           c.busy,
		Progress: ProgressView{
			TotalProcessed:         c.record.TotalProcessed,
			FilterProcessed:        c.record.FilterProcessed(c.record.SelectedFilter),
			TotalDeleted:           c.record.TotalDeleted,
			TotalStorageSavedBytes: c.record.TotalStorageSavedBytes,
			ActiveDays:             c.record.ActiveDays.Len(),
		},
	}
	if c.lastSummary != nil {
		summary := *c.lastSummary
		v.LastSummary = &summary
	}

	switch {
	case c.batch != nil:
		b := c.batch.Clone()
		v.BatchIndex = b.BatchIndex
		v.Cursor = b.Cursor
		v.Assets = b.Assets
		v.Decisions = b.Decisions
		if _, del := b.Partition(); del != nil {
			v.PendingDeletes = del
		}
		if cur, ok := b.Current(); ok {
			v.Current = &cur
		}
		v.Remaining = len(c.pool) - b.PoolOffset - b.Cursor
	case c.state == StateCheckpoint || c.state == StateContinuing:
		v.BatchIndex = c.nextIndex
		v.Remaining = len(c.pool) - c.nextStart
	}
	if v.Remaining < 0 {
		v.Remaining = 0
	}
	return v
}

// Progress returns a copy of the persisted-side progress record.
func (c *Controller) Progress() *models.ProgressRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record.Clone()
}

func (c *Controller) Entitlement() models.Entitlement {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entitlement
}

// FilterCounts reports the unprocessed count of every offered filter.
func (c *Controller) FilterCounts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Counts(c.library, c.record.ProcessedAssetIDs, c.now())
}

// Asset looks up an asset of the loaded library.
func (c *Controller) Asset(id string) (models.Asset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range c.library {
		if a.ID == id {
			return a, true
		}
	}
	return models.Asset{}, false
}

func without(assets []models.Asset, ids models.StringSet) []models.Asset {
	out := make([]models.Asset, 0, len(assets))
	for _, a := range assets {
		if !ids.Has(a.ID) {
			out = append(out, a)
		}
	}
	return out
}
