package service

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"POIReview-App/internal/domain/model"
)

func TestUUIDAssigner_Unique(t *testing.T) {
	assigner := NewUUIDAssigner()
	seen := make(map[string]struct{}, 1000)

	for i := 0; i < 1000; i++ {
		id := assigner.Assign()
		require.NotEmpty(t, id)
		_, dup := seen[id]
		require.False(t, dup, "IDが重複しています: %s", id)
		seen[id] = struct{}{}
	}
}

func TestPOIStore_ReplaceAll(t *testing.T) {
	t.Run("検出順を保持し表示をリセットする", func(t *testing.T) {
		store := NewPOIStore()
		store.ReplaceAll([]model.POI{
			samplePOI(t, "a", "A", 23.78, 90.41),
			samplePOI(t, "b", "B", 23.79, 90.42),
		})
		seq := NewVisibilitySequencer(store)
		seq.RevealNext()

		store.ReplaceAll([]model.POI{
			samplePOI(t, "c", "C", 23.70, 90.40),
			samplePOI(t, "d", "D", 23.71, 90.43),
			samplePOI(t, "e", "E", 23.72, 90.44),
		})

		assert.Equal(t, []string{"c", "d", "e"}, poiIDs(store.All()))
		assert.Empty(t, seq.Visible())
		assert.Equal(t, 3, store.Len())
	})

	t.Run("重複IDは最初の1件だけを残す", func(t *testing.T) {
		store := NewPOIStore()
		first := samplePOI(t, "a", "First", 23.78, 90.41)
		second := samplePOI(t, "a", "Second", 23.79, 90.42)
		store.ReplaceAll([]model.POI{first, second})

		got, ok := store.Get("a")
		require.True(t, ok)
		assert.Equal(t, "First", got.Name())
		assert.Equal(t, 1, store.Len())
	})

	t.Run("変更通知が呼ばれる", func(t *testing.T) {
		store := NewPOIStore()
		var calls atomic.Int32
		store.OnChange(func() { calls.Add(1) })

		store.ReplaceAll([]model.POI{samplePOI(t, "a", "A", 23.78, 90.41)})
		store.Clear()

		assert.Equal(t, int32(2), calls.Load())
	})
}

func TestPOIStore_SetStatus(t *testing.T) {
	store := NewPOIStore()
	store.ReplaceAll([]model.POI{samplePOI(t, "a", "A", 23.78, 90.41)})

	updated, ok := store.SetStatus("a", model.StatusVerified)
	require.True(t, ok)
	assert.Equal(t, model.StatusVerified, updated.Status)

	_, ok = store.SetStatus("missing", model.StatusVerified)
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len())
}

func TestPOIStore_Replace(t *testing.T) {
	store := NewPOIStore()
	store.ReplaceAll([]model.POI{samplePOI(t, "a", "A", 23.78, 90.41)})

	replacement := samplePOI(t, "other-id", "Renamed", 23.80, 90.45)
	replacement.Status = model.StatusVerified

	got, ok := store.Replace("a", replacement)
	require.True(t, ok)
	assert.Equal(t, "a", got.ID, "IDは変更されない")
	assert.Equal(t, model.StatusEdited, got.Status, "置き換えは常に edited")
	assert.Equal(t, "Renamed", got.Name())

	_, ok = store.Replace("missing", replacement)
	assert.False(t, ok)
	_, exists := store.Get("other-id")
	assert.False(t, exists)
}

func TestPOIStore_ReturnedValuesAreCopies(t *testing.T) {
	store := NewPOIStore()
	store.ReplaceAll([]model.POI{samplePOI(t, "a", "A", 23.78, 90.41)})

	got, _ := store.Get("a")
	*got.DisplayName = "changed outside"
	got.Status = model.StatusRejected

	again, _ := store.Get("a")
	assert.Equal(t, "A", again.Name())
	assert.Equal(t, model.StatusDetected, again.Status)
}

func TestPOIStore_ToggleEditPermission(t *testing.T) {
	store := NewPOIStore()
	store.ReplaceAll([]model.POI{samplePOI(t, "a", "A", 23.78, 90.41)})

	got, ok := store.ToggleEditPermission("a")
	require.True(t, ok)
	assert.True(t, got.EditEnabled)
	assert.Equal(t, model.StatusDetected, got.Status, "編集許可の切り替えはステータスを変えない")

	got, _ = store.ToggleEditPermission("a")
	assert.False(t, got.EditEnabled)
}

func TestPOIStore_Filter(t *testing.T) {
	store := NewPOIStore()
	store.ReplaceAll([]model.POI{
		samplePOI(t, "a", "A", 23.78, 90.41),
		samplePOI(t, "b", "B", 23.79, 90.42),
		samplePOI(t, "c", "C", 23.80, 90.43),
	})
	store.SetStatus("a", model.StatusVerified)
	store.SetStatus("c", model.StatusVerified)

	verified := store.Filter(func(p model.POI) bool { return p.Status == model.StatusVerified })
	assert.Equal(t, []string{"a", "c"}, poiIDs(verified))
	assert.Len(t, store.Filter(nil), 3)
}

func TestPOIStore_DisposeDropsListeners(t *testing.T) {
	store := NewPOIStore()
	var calls atomic.Int32
	store.OnChange(func() { calls.Add(1) })

	store.Dispose()
	store.ReplaceAll([]model.POI{samplePOI(t, "a", "A", 23.78, 90.41)})

	assert.Equal(t, int32(0), calls.Load())
}

func TestPOIStore_ConcurrentAccess(t *testing.T) {
	store := NewPOIStore()
	seq := NewVisibilitySequencer(store)
	pois := make([]model.POI, 0, 50)
	for i := 0; i < 50; i++ {
		pois = append(pois, samplePOI(t, string(rune('A'+i%26))+string(rune('a'+i/26)), "P", 23.7, 90.4))
	}
	store.ReplaceAll(pois)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				seq.RevealNext()
				store.SetStatus(pois[(n+j)%len(pois)].ID, model.StatusVerified)
				_ = seq.Visible()
			}
		}(i)
	}
	wg.Wait()

	assert.True(t, seq.IsFullyRevealed())
	assert.Len(t, seq.Visible(), 50)
}
