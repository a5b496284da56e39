package helper

import (
	"github.com/paulmach/orb"

	"POIReview-App/internal/domain/model"
)

// DefaultBoundsPadding 地図表示用の余白（約111m）
const DefaultBoundsPadding = 0.001

// MapBounds 地図の表示範囲
type MapBounds struct {
	MinLat float64      `json:"min_lat"`
	MinLng float64      `json:"min_lng"`
	MaxLat float64      `json:"max_lat"`
	MaxLng float64      `json:"max_lng"`
	Center model.LatLng `json:"center"`
}

// ToPoint LatLng を orb.Point に変換（orb は [経度, 緯度] 順）
func ToPoint(loc model.LatLng) orb.Point {
	return orb.Point{loc.Lng, loc.Lat}
}

// FromPoint orb.Point を LatLng に変換
func FromPoint(p orb.Point) model.LatLng {
	return model.LatLng{Lat: p.Lat(), Lng: p.Lon()}
}

// POIBounds はPOIを全て含む境界ボックスを計算する（POIがなければ false）
func POIBounds(pois []model.POI, padding float64) (MapBounds, bool) {
	if len(pois) == 0 {
		return MapBounds{}, false
	}

	points := make(orb.MultiPoint, 0, len(pois))
	for _, p := range pois {
		points = append(points, ToPoint(p.Location))
	}
	return toMapBounds(points.Bound().Pad(padding)), true
}

// MarkerBounds はマーカーを全て含む境界ボックスを計算する
func MarkerBounds(markers []model.Marker, padding float64) (MapBounds, bool) {
	if len(markers) == 0 {
		return MapBounds{}, false
	}

	points := make(orb.MultiPoint, 0, len(markers))
	for _, m := range markers {
		points = append(points, ToPoint(m.ToLatLng()))
	}
	return toMapBounds(points.Bound().Pad(padding)), true
}

func toMapBounds(bound orb.Bound) MapBounds {
	return MapBounds{
		MinLat: bound.Min.Lat(),
		MinLng: bound.Min.Lon(),
		MaxLat: bound.Max.Lat(),
		MaxLng: bound.Max.Lon(),
		Center: FromPoint(bound.Center()),
	}
}
