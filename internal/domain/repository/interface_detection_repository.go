package repository

import (
	"context"

	"POIReview-App/internal/domain/model"
)

// DetectionProvider はアップロード画像からPOIを検出する外部サービス
type DetectionProvider interface {
	Detect(ctx context.Context, req model.DetectionRequest) ([]model.RawDetectedPOI, error)
}
