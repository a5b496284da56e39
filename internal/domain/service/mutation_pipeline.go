package service

import (
	"context"
	"log"

	"POIReview-App/internal/domain/helper"
	"POIReview-App/internal/domain/model"
	"POIReview-App/internal/domain/repository"
)

// MutationPipeline は1件のPOIに対する編集を適用し、ストアへ書き込む
// 存在しないIDへの操作はエラーにせず found=false を返す
type MutationPipeline struct {
	store    *POIStore
	geocoder repository.ReverseGeocoder
}

// NewMutationPipeline は新しいMutationPipelineを作成
func NewMutationPipeline(store *POIStore, geocoder repository.ReverseGeocoder) *MutationPipeline {
	return &MutationPipeline{
		store:    store,
		geocoder: geocoder,
	}
}

// Verify はPOIを確認済みにする
// existing フラグによる操作制限は呼び出し側のポリシーであり、ここでは拒否しない
func (m *MutationPipeline) Verify(id string) (model.POI, bool) {
	return m.store.SetStatus(id, model.StatusVerified)
}

// Reject はPOIを却下する
func (m *MutationPipeline) Reject(id string) (model.POI, bool) {
	return m.store.SetStatus(id, model.StatusRejected)
}

// ManualEdit はフォームからの編集内容をマージして書き込む（ステータスは edited）
// 座標が解析できない場合は何も書き込まずエラーを返す
func (m *MutationPipeline) ManualEdit(id string, edit model.ManualEdit) (model.POI, bool, error) {
	current, ok := m.store.Get(id)
	if !ok {
		return model.POI{}, false, nil
	}

	merged, err := helper.ApplyManualEdit(current, edit)
	if err != nil {
		return model.POI{}, true, err
	}

	updated, ok := m.store.Replace(id, merged)
	return updated, ok, nil
}

// Reposition はドラッグで移動した座標を逆ジオコーディングで補完して書き込む
// 補完に失敗しても座標だけは必ず反映する（住所属性は以前の値のまま）
func (m *MutationPipeline) Reposition(ctx context.Context, id string, loc model.LatLng) (model.RepositionResult, bool, error) {
	if err := helper.ValidateLatLng(loc.Lat, loc.Lng); err != nil {
		return model.RepositionResult{}, false, err
	}

	previous, ok := m.store.Get(id)
	if !ok {
		return model.RepositionResult{}, false, nil
	}

	// 外部呼び出しはストアのロック外で行う
	var place *model.PlaceAttributes
	var enrichErr error
	if m.geocoder != nil {
		place, enrichErr = m.geocoder.ReverseGeocode(ctx, loc.Lat, loc.Lng)
	}
	if enrichErr != nil {
		log.Printf("⚠️ 逆ジオコーディングに失敗したため座標のみ更新します (POI: %s): %v", id, enrichErr)
		place = nil
	}

	updated, ok := m.store.Modify(id, func(poi *model.POI) {
		if place != nil {
			helper.ApplyPlaceAttributes(poi, place)
		}
		helper.SetCoordinates(poi, loc)
	})
	if !ok {
		// 逆ジオコーディング中に新しい取り込みで消えた場合
		return model.RepositionResult{}, false, nil
	}

	moved := helper.HaversineDistance(previous.Location, loc) * 1000
	log.Printf("✅ POIを移動: %s (%.1fm, 住所補完: %t)", id, moved, place != nil)

	return model.RepositionResult{
		POI:           updated,
		Enriched:      place != nil,
		EnrichmentErr: enrichErr,
	}, true, nil
}
