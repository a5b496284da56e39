package service

import (
	"sync"

	"POIReview-App/internal/domain/model"
)

// MarkerStore はCSVから取り込んだマーカーを取り込み順に保持する
// 個別削除はなく、一括置き換えと位置更新のみを行う
type MarkerStore struct {
	mu      sync.RWMutex
	markers []model.Marker
	index   map[string]int
}

// NewMarkerStore は空のMarkerStoreを作成
func NewMarkerStore() *MarkerStore {
	return &MarkerStore{
		index: make(map[string]int),
	}
}

// ReplaceAll は全マーカーを置き換える
func (s *MarkerStore) ReplaceAll(markers []model.Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.markers = make([]model.Marker, 0, len(markers))
	s.index = make(map[string]int, len(markers))
	for _, m := range markers {
		if _, dup := s.index[m.ID]; dup {
			continue
		}
		s.index[m.ID] = len(s.markers)
		s.markers = append(s.markers, m)
	}
}

// Get はIDに対応するマーカーを返す
func (s *MarkerStore) Get(id string) (model.Marker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return model.Marker{}, false
	}
	return s.markers[i], true
}

// UpdatePosition はドラッグされたマーカーの位置を更新する（存在しないIDは何もしない）
func (s *MarkerStore) UpdatePosition(id string, lat, lng float64) (model.Marker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return model.Marker{}, false
	}
	s.markers[i].Latitude = lat
	s.markers[i].Longitude = lng
	return s.markers[i], true
}

// All は全マーカーを返す
func (s *MarkerStore) All() []model.Marker {
	return s.Filter(nil)
}

// Filter は述語に合うマーカーを返す（nil なら全件）
func (s *MarkerStore) Filter(pred func(model.Marker) bool) []model.Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Marker, 0, len(s.markers))
	for _, m := range s.markers {
		if pred == nil || pred(m) {
			result = append(result, m)
		}
	}
	return result
}

// Len はマーカーの件数を返す
func (s *MarkerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.markers)
}

// Clear は全マーカーを破棄する
func (s *MarkerStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = nil
	s.index = make(map[string]int)
}
