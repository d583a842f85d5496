package services

import (
	"context"
	"swipetriage/internal/batch"
	"swipetriage/internal/catalog"
	"swipetriage/internal/entitlement"
	"swipetriage/internal/filter"
	"swipetriage/internal/models"
	"swipetriage/internal/progress"
	"swipetriage/internal/progress/backend"
	"swipetriage/internal/quota"
	"swipetriage/internal/structures"
	"swipetriage/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	last models.Asset
}

func (f *stubFetcher) FetchBestEffort(_ context.Context, asset models.Asset, q catalog.Quality, _ time.Duration) catalog.Content {
	f.last = asset
	return catalog.Content{AssetID: asset.ID, MIME: "image/png", Data: []byte("png"), Quality: q}
}

type serviceFixture struct {
	svc          *TriageService
	catalog      *testutil.MockCatalog
	deleter      *testutil.MockDeleter
	entitlements *entitlement.SettableProvider
	store        progress.StoreInterface
	fetcher      *stubFetcher
}

func newServiceFixture(t *testing.T, limit int, assets []models.Asset) *serviceFixture {
	logger := &testutil.MockLogger{}
	metrics := &testutil.MockMetrics{}
	conf := &structures.Config{
		Batch:       structures.BatchConfig{Size: 10},
		Quota:       structures.QuotaConfig{DailyFreeLimit: limit, AdInterval: 5},
		Entitlement: structures.EntitlementConfig{Initial: "unsubscribed"},
		Content:     structures.ContentConfig{FetchTimeout: time.Second},
	}
	store := progress.NewStore(conf, backend.NewMemoryBackend(), logger, metrics)
	gate := quota.NewGate(conf, store, logger)
	cat := &testutil.MockCatalog{Assets: assets}
	deleter := &testutil.MockDeleter{}
	controller := batch.NewController(conf, filter.NewEngine(), gate, store, deleter, logger, metrics)
	ents, err := entitlement.NewProvider(conf, logger)
	require.NoError(t, err)
	fetcher := &stubFetcher{}

	svc := NewTriageService(conf, controller, NewLibraryScanner(cat, nil, logger), gate, store, ents, fetcher, logger)
	return &serviceFixture{svc: svc, catalog: cat, deleter: deleter, entitlements: ents, store: store, fetcher: fetcher}
}

func (f *serviceFixture) start(t *testing.T) {
	require.NoError(t, f.svc.Restore())
	f.svc.Start(context.Background())
	t.Cleanup(f.svc.Stop)
	require.Eventually(t, func() bool {
		return f.svc.Snapshot().State != batch.StateLoading
	}, 2*time.Second, 5*time.Millisecond)
}

func TestTriageService_StartLoadsLibrary(t *testing.T) {
	f := newServiceFixture(t, 100, testutil.Photos("a", 12, 2021))
	f.start(t)

	v := f.svc.Snapshot()
	assert.Equal(t, batch.StateSwiping, v.State)
	assert.Len(t, v.Assets, 10)
	assert.Equal(t, models.EntitlementUnsubscribed, v.Entitlement)
}

func TestTriageService_EmptyLibrary(t *testing.T) {
	f := newServiceFixture(t, 100, nil)
	f.start(t)
	assert.Equal(t, batch.StateEmpty, f.svc.Snapshot().State)
}

func TestTriageService_EntitlementPushClearsPaywall(t *testing.T) {
	f := newServiceFixture(t, 1, testutil.Photos("a", 5, 2021))
	f.start(t)

	_, err := f.svc.Swipe(models.ActionKeep)
	require.NoError(t, err)
	res, err := f.svc.Swipe(models.ActionKeep)
	require.NoError(t, err)
	require.True(t, res.Blocked)
	require.True(t, f.svc.Snapshot().PaywallPrompt)

	f.entitlements.Set(models.EntitlementTrial)
	require.Eventually(t, func() bool {
		return !f.svc.Snapshot().PaywallPrompt
	}, 2*time.Second, 5*time.Millisecond)

	res, err = f.svc.Swipe(models.ActionKeep)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, -1, f.svc.Quota().Remaining)
}

func TestTriageService_SetEntitlement(t *testing.T) {
	f := newServiceFixture(t, 1, testutil.Photos("a", 5, 2021))
	f.start(t)

	_, _ = f.svc.Swipe(models.ActionKeep)
	res, _ := f.svc.Swipe(models.ActionKeep)
	require.True(t, res.Blocked)

	require.NoError(t, f.svc.SetEntitlement("subscribed"))
	v := f.svc.Snapshot()
	assert.False(t, v.PaywallPrompt)
	assert.Equal(t, models.EntitlementSubscribed, v.Entitlement)
	assert.Equal(t, models.EntitlementSubscribed, f.entitlements.Current())

	err := f.svc.SetEntitlement("lifetime")
	assert.ErrorIs(t, err, ErrUnknownEntitlement)
	assert.Equal(t, models.EntitlementSubscribed, f.entitlements.Current())
}

func TestTriageService_GrantBonusDismissesPaywall(t *testing.T) {
	f := newServiceFixture(t, 1, testutil.Photos("a", 5, 2021))
	f.start(t)

	_, _ = f.svc.Swipe(models.ActionKeep)
	res, _ := f.svc.Swipe(models.ActionKeep)
	require.True(t, res.Blocked)

	require.NoError(t, f.svc.GrantBonus("", 3))
	assert.False(t, f.svc.Snapshot().PaywallPrompt)
	assert.Equal(t, 3, f.svc.Quota().Remaining)

	assert.ErrorIs(t, f.svc.GrantBonus("year_abc", 3), ErrUnknownFilter)
	require.NoError(t, f.svc.GrantBonus(quota.GlobalKey, 2))
	assert.Equal(t, 5, f.svc.Quota().Remaining)
}

func TestTriageService_ResetQuota(t *testing.T) {
	f := newServiceFixture(t, 1, testutil.Photos("a", 5, 2021))
	f.start(t)

	_, _ = f.svc.Swipe(models.ActionKeep)
	require.Equal(t, 0, f.svc.Quota().Remaining)
	require.NoError(t, f.svc.ResetQuota(""))
	assert.Equal(t, 1, f.svc.Quota().Remaining)
}

func TestTriageService_SwitchFilter(t *testing.T) {
	assets := append(testutil.Photos("a", 3, 2021), testutil.Photos("b", 2, 2022)...)
	f := newServiceFixture(t, 100, assets)
	f.start(t)

	require.NoError(t, f.svc.SwitchFilter("year_2022"))
	v := f.svc.Snapshot()
	assert.Equal(t, models.YearFilter(2022), v.Filter)
	assert.Len(t, v.Assets, 2)

	assert.ErrorIs(t, f.svc.SwitchFilter("everything"), ErrUnknownFilter)

	counts := f.svc.Filters()
	assert.Equal(t, 5, counts["random"])
	assert.Equal(t, 3, counts["year_2021"])
}

func TestTriageService_ContinueFromBothStops(t *testing.T) {
	f := newServiceFixture(t, 100, testutil.Photos("a", 25, 2021))
	f.start(t)

	for i := 0; i < 10; i++ {
		_, err := f.svc.Swipe(models.ActionKeep)
		require.NoError(t, err)
	}
	require.Equal(t, batch.StateCheckpoint, f.svc.Snapshot().State)
	require.NoError(t, f.svc.Continue())
	require.Equal(t, batch.StateSwiping, f.svc.Snapshot().State)

	_, err := f.svc.Swipe(models.ActionDelete)
	require.NoError(t, err)
	for i := 0; i < 9; i++ {
		_, err := f.svc.Swipe(models.ActionKeep)
		require.NoError(t, err)
	}
	res, err := f.svc.Confirm(context.Background())
	require.NoError(t, err)
	require.Equal(t, batch.StateContinuing, res.State)
	require.NoError(t, f.svc.Continue())
	assert.Equal(t, batch.StateSwiping, f.svc.Snapshot().State)
	assert.Equal(t, 1, f.svc.Progress().TotalDeleted)
}

func TestTriageService_RefreshPicksUpNewAssets(t *testing.T) {
	f := newServiceFixture(t, 100, nil)
	f.start(t)
	require.Equal(t, batch.StateEmpty, f.svc.Snapshot().State)

	f.catalog.SetAssets(testutil.Photos("a", 2, 2021))
	o := <-f.svc.Refresh()
	require.True(t, o.Applied)
	assert.Equal(t, batch.StateSwiping, f.svc.Snapshot().State)
}

func TestTriageService_ResetRescans(t *testing.T) {
	f := newServiceFixture(t, 100, testutil.Photos("a", 2, 2021))
	f.start(t)
	_, err := f.svc.Swipe(models.ActionKeep)
	require.NoError(t, err)
	_, err = f.svc.Swipe(models.ActionKeep)
	require.NoError(t, err)
	require.Equal(t, 2, f.svc.Progress().ProcessedAssetIDs.Len())

	require.NoError(t, f.svc.Reset())
	require.Eventually(t, func() bool {
		return f.svc.Snapshot().State == batch.StateSwiping
	}, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, f.svc.Progress().TotalProcessed)
}

func TestTriageService_RestoreUsesPersistedProgress(t *testing.T) {
	f := newServiceFixture(t, 100, testutil.Photos("a", 3, 2021))
	record := models.NewProgressRecord()
	record.MarkProcessed("a-00", "a-01")
	record.IncProcessed("random")
	require.NoError(t, f.store.Save(record))

	f.start(t)
	v := f.svc.Snapshot()
	require.Len(t, v.Assets, 1)
	assert.Equal(t, "a-02", v.Assets[0].ID)
	assert.Equal(t, 1, v.Progress.TotalProcessed)
}

func TestTriageService_Content(t *testing.T) {
	f := newServiceFixture(t, 100, testutil.Photos("a", 3, 2021))
	f.start(t)

	c, err := f.svc.Content(context.Background(), "a-01", catalog.QualityFull)
	require.NoError(t, err)
	assert.Equal(t, "a-01", c.AssetID)
	assert.Equal(t, "a-01", f.fetcher.last.ID)

	_, err = f.svc.Content(context.Background(), "zzz", catalog.QualityFull)
	assert.ErrorIs(t, err, catalog.ErrAssetNotFound)
}
