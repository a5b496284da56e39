package usecase

import (
	"context"
	"fmt"
	"io"
	"log"

	"POIReview-App/internal/domain/helper"
	"POIReview-App/internal/domain/model"
	"POIReview-App/internal/domain/repository"
	"POIReview-App/internal/domain/service"
	"POIReview-App/internal/infrastructure/export"
)

// POIListResponse は全POIと表示進捗
type POIListResponse struct {
	POIs     []model.POI      `json:"pois"`
	Progress service.Progress `json:"progress"`
	InFlight bool             `json:"in_flight"`
}

// VisiblePOIsResponse は表示中のPOI
type VisiblePOIsResponse struct {
	POIs          []model.POI `json:"pois"`
	Total         int         `json:"total"`
	FullyRevealed bool        `json:"fully_revealed"`
	InFlight      bool        `json:"in_flight"`
}

// POIReviewUseCase は画像アップロードからPOIレビューまでのユースケース
type POIReviewUseCase interface {
	// ProcessUpload は画像からPOIを検出してストアを置き換える
	ProcessUpload(ctx context.Context, req model.DetectionRequest) ([]model.POI, error)
	ListPOIs() *POIListResponse
	VisiblePOIs() *VisiblePOIsResponse
	RevealNext() (model.POI, bool)
	GetPOI(id string) (model.POI, error)
	Verify(id string) (model.POI, error)
	Reject(id string) (model.POI, error)
	ToggleEditPermission(id string) (model.POI, error)
	ManualEdit(id string, edit model.ManualEdit) (model.POI, error)
	Reposition(ctx context.Context, id string, loc model.LatLng) (*model.RepositionResult, error)
	ClearAll()
	// VisibleBounds は表示中のPOIを含む地図範囲を返す
	VisibleBounds() (helper.MapBounds, bool)
	// ExportPOIs は指定ステータスのPOIを指定形式で書き出す（ステータス未指定は全件）
	ExportPOIs(w io.Writer, format string, statuses []model.POIStatus) error
	// PublishVerified は確認済みPOIを外部の記録システムに保存し、件数を返す
	PublishVerified(ctx context.Context) (int, error)
}

// poiReviewUseCaseImpl はPOIReviewUseCaseの実装
type poiReviewUseCaseImpl struct {
	store     *service.POIStore
	sequencer *service.VisibilitySequencer
	gate      *service.IngestionGate
	pipeline  *service.MutationPipeline
	sink      repository.POIExportRepository
}

// NewPOIReviewUseCase は新しいPOIReviewUseCaseインスタンスを作成（sink は nil 可）
func NewPOIReviewUseCase(
	store *service.POIStore,
	sequencer *service.VisibilitySequencer,
	gate *service.IngestionGate,
	pipeline *service.MutationPipeline,
	sink repository.POIExportRepository,
) POIReviewUseCase {
	return &poiReviewUseCaseImpl{
		store:     store,
		sequencer: sequencer,
		gate:      gate,
		pipeline:  pipeline,
		sink:      sink,
	}
}

func (u *poiReviewUseCaseImpl) ProcessUpload(ctx context.Context, req model.DetectionRequest) ([]model.POI, error) {
	pois, err := u.gate.Ingest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("画像の処理に失敗: %w", err)
	}
	return pois, nil
}

func (u *poiReviewUseCaseImpl) ListPOIs() *POIListResponse {
	return &POIListResponse{
		POIs:     u.store.All(),
		Progress: u.sequencer.Progress(),
		InFlight: u.gate.InFlight(),
	}
}

func (u *poiReviewUseCaseImpl) VisiblePOIs() *VisiblePOIsResponse {
	return &VisiblePOIsResponse{
		POIs:          u.sequencer.Visible(),
		Total:         u.store.Len(),
		FullyRevealed: u.sequencer.IsFullyRevealed(),
		InFlight:      u.gate.InFlight(),
	}
}

func (u *poiReviewUseCaseImpl) RevealNext() (model.POI, bool) {
	return u.sequencer.RevealNext()
}

func (u *poiReviewUseCaseImpl) GetPOI(id string) (model.POI, error) {
	poi, ok := u.store.Get(id)
	if !ok {
		return model.POI{}, fmt.Errorf("%w: %s", model.ErrPOINotFound, id)
	}
	return poi, nil
}

func (u *poiReviewUseCaseImpl) Verify(id string) (model.POI, error) {
	return found(u.pipeline.Verify(id))(id)
}

func (u *poiReviewUseCaseImpl) Reject(id string) (model.POI, error) {
	return found(u.pipeline.Reject(id))(id)
}

func (u *poiReviewUseCaseImpl) ToggleEditPermission(id string) (model.POI, error) {
	return found(u.store.ToggleEditPermission(id))(id)
}

func (u *poiReviewUseCaseImpl) ManualEdit(id string, edit model.ManualEdit) (model.POI, error) {
	poi, ok, err := u.pipeline.ManualEdit(id, edit)
	if err != nil {
		return model.POI{}, fmt.Errorf("POIの編集に失敗: %w", err)
	}
	return found(poi, ok)(id)
}

func (u *poiReviewUseCaseImpl) Reposition(ctx context.Context, id string, loc model.LatLng) (*model.RepositionResult, error) {
	result, ok, err := u.pipeline.Reposition(ctx, id, loc)
	if err != nil {
		return nil, fmt.Errorf("POIの移動に失敗: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrPOINotFound, id)
	}
	return &result, nil
}

func (u *poiReviewUseCaseImpl) ClearAll() {
	u.store.Clear()
	log.Printf("🧹 全POIをクリアしました")
}

func (u *poiReviewUseCaseImpl) VisibleBounds() (helper.MapBounds, bool) {
	return helper.POIBounds(u.sequencer.Visible(), helper.DefaultBoundsPadding)
}

func (u *poiReviewUseCaseImpl) ExportPOIs(w io.Writer, format string, statuses []model.POIStatus) error {
	pois := u.store.Filter(helper.StatusPredicate(statuses...))

	switch format {
	case model.ExportFormatCSV:
		return export.WritePOIsCSV(w, pois)
	case model.ExportFormatXLSX:
		return export.WritePOIsXLSX(w, pois)
	case model.ExportFormatGeoJSON:
		return export.WritePOIsGeoJSON(w, pois)
	default:
		return fmt.Errorf("%w: %s", model.ErrUnsupportedFormat, format)
	}
}

func (u *poiReviewUseCaseImpl) PublishVerified(ctx context.Context) (int, error) {
	if u.sink == nil {
		return 0, model.ErrExportSinkDisabled
	}

	verified := u.store.Filter(helper.StatusPredicate(model.StatusVerified))
	if len(verified) == 0 {
		return 0, model.ErrNothingToExport
	}

	log.Printf("💾 確認済みPOIを%d件エクスポート中...", len(verified))
	if err := u.sink.SavePOIs(ctx, verified); err != nil {
		return 0, fmt.Errorf("POIのエクスポートに失敗: %w", err)
	}
	return len(verified), nil
}

// found は存在しないIDを ErrPOINotFound に変換する
func found(poi model.POI, ok bool) func(id string) (model.POI, error) {
	return func(id string) (model.POI, error) {
		if !ok {
			return model.POI{}, fmt.Errorf("%w: %s", model.ErrPOINotFound, id)
		}
		return poi, nil
	}
}
