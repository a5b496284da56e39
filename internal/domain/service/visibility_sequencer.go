package service

import "POIReview-App/internal/domain/model"

// VisibilitySequencer はストアの内容を検出順に少しずつ表示させる
// 「ストアに存在する」と「ユーザーに表示されている」を分離し、取り込みと表示のペースを独立させる
type VisibilitySequencer struct {
	store *POIStore
}

// NewVisibilitySequencer は新しいVisibilitySequencerを作成
func NewVisibilitySequencer(store *POIStore) *VisibilitySequencer {
	return &VisibilitySequencer{store: store}
}

// RevealNext は未表示のPOIがあれば次の1件を表示に加えて返す
// 追いついている場合は何も変更せず false を返すため、タイマーから投機的に呼んでも安全
func (v *VisibilitySequencer) RevealNext() (model.POI, bool) {
	return v.store.revealNext(nil)
}

// RevealNextIfUnchanged は進捗が p のままの場合だけ次の1件を表示する
func (v *VisibilitySequencer) RevealNextIfUnchanged(p Progress) (model.POI, bool) {
	return v.store.revealNext(&p)
}

// Reset は表示中のPOIを空にする（ストアは変更しない）
func (v *VisibilitySequencer) Reset() {
	v.store.resetVisible()
}

// IsFullyRevealed は全POIが表示済みかどうかを返す
func (v *VisibilitySequencer) IsFullyRevealed() bool {
	p := v.store.progress()
	return p.Visible == p.Total
}

// Visible は表示中のPOIを表示順で返す
func (v *VisibilitySequencer) Visible() []model.POI {
	return v.store.visibleSnapshot()
}

// Progress は現在の表示進捗を返す
func (v *VisibilitySequencer) Progress() Progress {
	return v.store.progress()
}
