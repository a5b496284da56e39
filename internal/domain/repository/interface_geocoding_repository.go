package repository

import (
	"context"

	"POIReview-App/internal/domain/model"
)

// ReverseGeocoder は座標から場所の属性を取得する外部サービス
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (*model.PlaceAttributes, error)
}
