package progress

import (
	"path/filepath"
	"swipetriage/internal/models"
	"swipetriage/internal/progress/backend"
	"swipetriage/internal/structures"
	"swipetriage/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeConfig(retries int) *structures.Config {
	return &structures.Config{
		Persistence: structures.Persistence{Driver: "memory", Retries: retries},
	}
}

func newTestStore(b backend.Backend, retries int) (*Store, *testutil.MockLogger) {
	logger := &testutil.MockLogger{}
	return NewStore(storeConfig(retries), b, logger, &testutil.MockMetrics{}).(*Store), logger
}

func sampleBatch() *models.BatchState {
	assets := testutil.Photos("p", 3, 2021)
	return &models.BatchState{
		Filter:     models.YearFilter(2021),
		BatchIndex: 2,
		PoolOffset: 20,
		Assets:     assets,
		Cursor:     1,
		Decisions:  []models.SwipeDecision{{AssetID: assets[0].ID, Action: models.ActionDelete}},
	}
}

func TestStore_LoadEmpty(t *testing.T) {
	s, _ := newTestStore(backend.NewMemoryBackend(), 0)

	record, quotas, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, record.TotalProcessed)
	assert.Equal(t, models.RandomFilter(), record.SelectedFilter)
	assert.NotNil(t, record.ProcessedAssetIDs)
	assert.Empty(t, quotas)

	batch, err := s.LoadInFlightBatch()
	require.NoError(t, err)
	assert.Nil(t, batch)
}

func TestStore_SaveAndLoadRecord(t *testing.T) {
	s, _ := newTestStore(backend.NewMemoryBackend(), 0)

	record := models.NewProgressRecord()
	record.MarkProcessed("a", "b")
	record.IncProcessed("random", "year_2020")
	record.SelectedFilter = models.YearFilter(2020)
	record.RecordDeletion(1, 2048)
	record.RecordActiveDay("2024-06-15")
	require.NoError(t, s.Save(record))

	loaded, _, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, record, loaded)
}

func TestStore_SaveQuota(t *testing.T) {
	s, _ := newTestStore(backend.NewMemoryBackend(), 0)

	states := map[string]models.QuotaState{
		"random": {Day: "2024-06-15", SwipesUsedToday: 7, BonusSwipesRemaining: 3},
	}
	require.NoError(t, s.SaveQuota(states))

	_, loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, states, loaded)
}

func TestStore_InFlightBatchRoundTrip(t *testing.T) {
	s, _ := newTestStore(backend.NewMemoryBackend(), 0)

	batch := sampleBatch()
	require.NoError(t, s.SaveInFlightBatch(batch))

	loaded, err := s.LoadInFlightBatch()
	require.NoError(t, err)
	assert.Equal(t, batch, loaded)

	require.NoError(t, s.ClearInFlightBatch())
	loaded, err = s.LoadInFlightBatch()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStore_InconsistentBatchDiscarded(t *testing.T) {
	s, logger := newTestStore(backend.NewMemoryBackend(), 0)

	batch := sampleBatch()
	batch.Cursor = 2 // one decision only
	require.NoError(t, s.SaveInFlightBatch(batch))

	loaded, err := s.LoadInFlightBatch()
	require.NoError(t, err)
	assert.Nil(t, loaded)
	assert.Equal(t, 1, logger.Count("warn"))
}

func TestStore_UnreadableBatchDiscarded(t *testing.T) {
	b := backend.NewMemoryBackend()
	require.NoError(t, b.Set(keyInFlight, []byte("{broken")))
	s, _ := newTestStore(b, 0)

	loaded, err := s.LoadInFlightBatch()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStore_CorruptRecordIsAnError(t *testing.T) {
	b := backend.NewMemoryBackend()
	require.NoError(t, b.Set(keyRecord, []byte("{broken")))
	s, _ := newTestStore(b, 0)

	_, _, err := s.Load()
	assert.Error(t, err)
}

func TestStore_CommitWritesBothOrClears(t *testing.T) {
	s, _ := newTestStore(backend.NewMemoryBackend(), 0)

	record := models.NewProgressRecord()
	record.IncProcessed("random")
	require.NoError(t, s.Commit(record, sampleBatch()))

	loadedBatch, err := s.LoadInFlightBatch()
	require.NoError(t, err)
	assert.NotNil(t, loadedBatch)

	record.MarkProcessed("p-00")
	require.NoError(t, s.Commit(record, nil))
	loadedBatch, err = s.LoadInFlightBatch()
	require.NoError(t, err)
	assert.Nil(t, loadedBatch)

	loaded, _, err := s.Load()
	require.NoError(t, err)
	assert.True(t, loaded.IsProcessed("p-00"))
}

func TestStore_RetriesTransientFailure(t *testing.T) {
	flaky := testutil.NewFlakyBackend()
	s, logger := newTestStore(flaky, 2)

	flaky.Fail(2)
	require.NoError(t, s.Save(models.NewProgressRecord()))
	assert.Equal(t, 3, flaky.Writes)
	assert.Equal(t, 2, logger.Count("warn"))
}

func TestStore_SurfacesPermanentFailure(t *testing.T) {
	flaky := testutil.NewFlakyBackend()
	s, logger := newTestStore(flaky, 1)

	flaky.Fail(5)
	err := s.Save(models.NewProgressRecord())
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, testutil.ErrInjected)
	assert.Equal(t, 2, flaky.Writes)
	assert.Equal(t, 1, logger.Count("error"))
}

func TestStore_ResetAll(t *testing.T) {
	s, _ := newTestStore(backend.NewMemoryBackend(), 0)

	record := models.NewProgressRecord()
	record.MarkProcessed("x")
	require.NoError(t, s.Commit(record, sampleBatch()))
	require.NoError(t, s.SaveQuota(map[string]models.QuotaState{"random": {SwipesUsedToday: 3}}))

	require.NoError(t, s.ResetAll())

	loaded, quotas, err := s.Load()
	require.NoError(t, err)
	assert.False(t, loaded.IsProcessed("x"))
	assert.Empty(t, quotas)
	batch, _ := s.LoadInFlightBatch()
	assert.Nil(t, batch)
}

func TestStore_OverBolt(t *testing.T) {
	b, err := backend.NewBoltBackend(filepath.Join(t.TempDir(), "progress.db"))
	require.NoError(t, err)
	s, _ := newTestStore(b, 0)
	defer s.Close()

	record := models.NewProgressRecord()
	record.MarkProcessed("a")
	require.NoError(t, s.Save(record))

	loaded, _, err := s.Load()
	require.NoError(t, err)
	assert.True(t, loaded.IsProcessed("a"))
}
