package repository

import (
	"time"

	"github.com/paulmach/orb"

	"POIReview-App/internal/domain/model"
)

// GeoPoint PostGIS POINT 型の JSON 表現
type GeoPoint struct {
	Type        string    `json:"type" firestore:"type"`
	Coordinates []float64 `json:"coordinates" firestore:"coordinates"`
}

// LocationToGeoPoint model.LatLng を PostGIS POINT 形式に変換
func LocationToGeoPoint(location model.LatLng) *GeoPoint {
	// orb.Point を作成
	point := orb.Point{location.Lng, location.Lat}

	return &GeoPoint{
		Type:        "Point",
		Coordinates: []float64{point.Lon(), point.Lat()},
	}
}

// POIExportRow POI を外部保存用の構造体に変換したもの
type POIExportRow struct {
	ID             string    `json:"id" firestore:"id"`
	Name           string    `json:"name" firestore:"name"`
	Status         string    `json:"status" firestore:"status"`
	Address        string    `json:"address" firestore:"address"`
	RoadInfo       string    `json:"road_info" firestore:"roadInfo"`
	Area           string    `json:"area" firestore:"area"`
	SubArea        string    `json:"sub_area" firestore:"subArea"`
	City           string    `json:"city" firestore:"city"`
	PostCode       string    `json:"post_code" firestore:"postCode"`
	PType          string    `json:"p_type" firestore:"pType"`
	Latitude       float64   `json:"latitude" firestore:"latitude"`
	Longitude      float64   `json:"longitude" firestore:"longitude"`
	Location       *GeoPoint `json:"location" firestore:"location"`
	ExistsInSystem bool      `json:"exists_in_system" firestore:"existsInSystem"`
	Confidence     float64   `json:"confidence" firestore:"confidence"`
	ExportedAt     time.Time `json:"exported_at" firestore:"exportedAt"`
}

// POIToExportRow model.POI を外部保存用に変換
func POIToExportRow(poi model.POI, exportedAt time.Time) POIExportRow {
	g := poi.Geocoding.Geocoded
	return POIExportRow{
		ID:             poi.ID,
		Name:           poi.Name(),
		Status:         string(poi.Status),
		Address:        poi.Address,
		RoadInfo:       poi.RoadInfo,
		Area:           g.Area,
		SubArea:        g.SubArea,
		City:           g.City,
		PostCode:       g.PostCode,
		PType:          g.PType,
		Latitude:       poi.Location.Lat,
		Longitude:      poi.Location.Lng,
		Location:       LocationToGeoPoint(poi.Location),
		ExistsInSystem: poi.ExistingFlag,
		Confidence:     poi.Geocoding.ConfidenceScore,
		ExportedAt:     exportedAt.UTC(),
	}
}
