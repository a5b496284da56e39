package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"POIReview-App/internal/domain/model"
)

func TestVisibilitySequencer_RevealsInDetectionOrder(t *testing.T) {
	store := NewPOIStore()
	seq := NewVisibilitySequencer(store)
	store.ReplaceAll([]model.POI{
		samplePOI(t, "p1", "One", 23.78, 90.41),
		samplePOI(t, "p2", "Two", 23.79, 90.42),
		samplePOI(t, "p3", "Three", 23.80, 90.43),
	})

	for i, want := range []string{"p1", "p2", "p3"} {
		poi, ok := seq.RevealNext()
		require.True(t, ok)
		assert.Equal(t, want, poi.ID)
		assert.Len(t, seq.Visible(), i+1)
	}

	assert.True(t, seq.IsFullyRevealed())
	assert.Equal(t, []string{"p1", "p2", "p3"}, poiIDs(seq.Visible()))

	// 追いついた後の呼び出しは何もしない
	before := seq.Progress()
	_, ok := seq.RevealNext()
	assert.False(t, ok)
	assert.Equal(t, before, seq.Progress())
}

func TestVisibilitySequencer_EmptyStore(t *testing.T) {
	seq := NewVisibilitySequencer(NewPOIStore())

	_, ok := seq.RevealNext()
	assert.False(t, ok)
	assert.True(t, seq.IsFullyRevealed())
	assert.Empty(t, seq.Visible())
}

func TestVisibilitySequencer_Reset(t *testing.T) {
	store := NewPOIStore()
	seq := NewVisibilitySequencer(store)
	store.ReplaceAll([]model.POI{
		samplePOI(t, "p1", "One", 23.78, 90.41),
		samplePOI(t, "p2", "Two", 23.79, 90.42),
	})
	seq.RevealNext()
	seq.RevealNext()
	generation := seq.Progress().Generation

	seq.Reset()

	assert.Empty(t, seq.Visible())
	assert.Equal(t, 2, store.Len(), "リセットはストアを変更しない")
	assert.Greater(t, seq.Progress().Generation, generation)

	poi, ok := seq.RevealNext()
	require.True(t, ok)
	assert.Equal(t, "p1", poi.ID)
}

func TestVisibilitySequencer_VisibleReflectsMutations(t *testing.T) {
	store := NewPOIStore()
	seq := NewVisibilitySequencer(store)
	store.ReplaceAll([]model.POI{samplePOI(t, "p1", "One", 23.78, 90.41)})
	seq.RevealNext()

	store.SetStatus("p1", model.StatusVerified)

	visible := seq.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, model.StatusVerified, visible[0].Status, "表示中のPOIとストアの値は常に一致する")
}

func TestVisibilitySequencer_RevealNextIfUnchanged(t *testing.T) {
	store := NewPOIStore()
	seq := NewVisibilitySequencer(store)
	store.ReplaceAll([]model.POI{
		samplePOI(t, "p1", "One", 23.78, 90.41),
		samplePOI(t, "p2", "Two", 23.79, 90.42),
	})

	stale := seq.Progress()
	seq.RevealNext()

	_, ok := seq.RevealNextIfUnchanged(stale)
	assert.False(t, ok, "古い進捗では表示を進めない")
	assert.Len(t, seq.Visible(), 1)

	poi, ok := seq.RevealNextIfUnchanged(seq.Progress())
	require.True(t, ok)
	assert.Equal(t, "p2", poi.ID)
}

func TestVisibilitySequencer_ClearEmptiesVisible(t *testing.T) {
	store := NewPOIStore()
	seq := NewVisibilitySequencer(store)
	store.ReplaceAll([]model.POI{samplePOI(t, "p1", "One", 23.78, 90.41)})
	seq.RevealNext()

	store.Clear()

	assert.Empty(t, seq.Visible())
	assert.Equal(t, 0, store.Len())
	_, ok := store.Get("p1")
	assert.False(t, ok)
}
