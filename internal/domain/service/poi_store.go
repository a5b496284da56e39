package service

import (
	"sync"

	"POIReview-App/internal/domain/model"
)

// Progress は表示進捗のスナップショット
type Progress struct {
	Generation uint64 `json:"generation"` // ReplaceAll/Clear/Reset のたびに増える
	Visible    int    `json:"visible"`
	Total      int    `json:"total"`
}

// POIStore は取り込んだPOIを検出順に保持する唯一の情報源
// 表示中のPOIは別コピーを持たず、先頭から visible 件のプレフィックスとして表す
type POIStore struct {
	mu         sync.RWMutex
	pois       []model.POI
	index      map[string]int
	visible    int
	generation uint64
	listeners  []func()
}

// NewPOIStore は空のPOIStoreを作成
func NewPOIStore() *POIStore {
	return &POIStore{
		index: make(map[string]int),
	}
}

// OnChange は件数や表示進捗が変わったときに呼ばれるリスナーを登録する
func (s *POIStore) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// ReplaceAll は全POIを置き換え、表示進捗もリセットする
func (s *POIStore) ReplaceAll(points []model.POI) {
	s.mu.Lock()
	s.pois = make([]model.POI, 0, len(points))
	s.index = make(map[string]int, len(points))
	for _, p := range points {
		if _, dup := s.index[p.ID]; dup {
			continue
		}
		s.index[p.ID] = len(s.pois)
		s.pois = append(s.pois, clonePOI(p))
	}
	s.visible = 0
	s.generation++
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners)
}

// Get はIDに対応するPOIを返す
func (s *POIStore) Get(id string) (model.POI, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return model.POI{}, false
	}
	return clonePOI(s.pois[i]), true
}

// SetStatus はステータスだけを更新する（存在しないIDは何もしない）
func (s *POIStore) SetStatus(id string, status model.POIStatus) (model.POI, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return model.POI{}, false
	}
	s.pois[i].Status = status
	return clonePOI(s.pois[i]), true
}

// Replace はPOIの値を丸ごと置き換える
// 置き換えは常に編集として扱い、ステータスは edited になる
func (s *POIStore) Replace(id string, poi model.POI) (model.POI, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return model.POI{}, false
	}
	poi = clonePOI(poi)
	poi.ID = id
	poi.Status = model.StatusEdited
	s.pois[i] = poi
	return clonePOI(poi), true
}

// Modify はロックを保持したまま現在値を読み取り、fn で変更して書き戻す
// Replace と同じくステータスは edited になる
func (s *POIStore) Modify(id string, fn func(poi *model.POI)) (model.POI, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return model.POI{}, false
	}
	poi := clonePOI(s.pois[i])
	fn(&poi)
	poi.ID = id
	poi.Status = model.StatusEdited
	s.pois[i] = poi
	return clonePOI(poi), true
}

// ToggleEditPermission はPOI単位の編集許可を切り替える
func (s *POIStore) ToggleEditPermission(id string) (model.POI, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return model.POI{}, false
	}
	s.pois[i].EditEnabled = !s.pois[i].EditEnabled
	return clonePOI(s.pois[i]), true
}

// Clear は全POIと表示進捗を破棄し初期状態に戻す
func (s *POIStore) Clear() {
	s.mu.Lock()
	s.pois = nil
	s.index = make(map[string]int)
	s.visible = 0
	s.generation++
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners)
}

// Dispose はストアを破棄する（以後リスナーは呼ばれない）
func (s *POIStore) Dispose() {
	s.mu.Lock()
	s.listeners = nil
	s.mu.Unlock()
	s.Clear()
}

// All は全POIを検出順で返す
func (s *POIStore) All() []model.POI {
	return s.Filter(nil)
}

// Filter は述語に合うPOIを検出順で返す（nil なら全件）
func (s *POIStore) Filter(pred func(model.POI) bool) []model.POI {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.POI, 0, len(s.pois))
	for _, p := range s.pois {
		if pred == nil || pred(p) {
			result = append(result, clonePOI(p))
		}
	}
	return result
}

// Len はPOIの件数を返す
func (s *POIStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pois)
}

// --- VisibilitySequencer から使う表示プレフィックス操作 ---

func (s *POIStore) progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Progress{Generation: s.generation, Visible: s.visible, Total: len(s.pois)}
}

// revealNext は表示プレフィックスを1件伸ばす
// expect が指定された場合、進捗が一致するときだけ進める
func (s *POIStore) revealNext(expect *Progress) (model.POI, bool) {
	s.mu.Lock()
	if s.visible >= len(s.pois) {
		s.mu.Unlock()
		return model.POI{}, false
	}
	if expect != nil && (expect.Generation != s.generation || expect.Visible != s.visible) {
		s.mu.Unlock()
		return model.POI{}, false
	}
	poi := clonePOI(s.pois[s.visible])
	s.visible++
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners)
	return poi, true
}

func (s *POIStore) resetVisible() {
	s.mu.Lock()
	s.visible = 0
	s.generation++
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners)
}

func (s *POIStore) visibleSnapshot() []model.POI {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.POI, s.visible)
	for i := 0; i < s.visible; i++ {
		result[i] = clonePOI(s.pois[i])
	}
	return result
}

func notify(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}

// clonePOI はポインタフィールドを複製して呼び出し側と共有しないようにする
func clonePOI(p model.POI) model.POI {
	if p.DisplayName != nil {
		name := *p.DisplayName
		p.DisplayName = &name
	}
	if p.ExistingLocation != nil {
		loc := *p.ExistingLocation
		p.ExistingLocation = &loc
	}
	return p
}
