package repository

import (
	"context"

	"POIReview-App/internal/domain/model"
)

// POIExportRepository レビュー済みPOIを外部の記録システムへ書き出すリポジトリ
type POIExportRepository interface {
	// SavePOIs はPOIをIDをキーにアップサートする
	SavePOIs(ctx context.Context, pois []model.POI) error
}
