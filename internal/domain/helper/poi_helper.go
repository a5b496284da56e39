package helper

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"POIReview-App/internal/domain/model"
)

const earthRadiusKm = 6371.0

// HaversineDistance は2地点間の距離を計算する (km)
func HaversineDistance(p1, p2 model.LatLng) float64 {
	lat1 := p1.Lat * math.Pi / 180
	lng1 := p1.Lng * math.Pi / 180
	lat2 := p2.Lat * math.Pi / 180
	lng2 := p2.Lng * math.Pi / 180
	dLat := lat2 - lat1
	dLng := lng2 - lng1
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// FormatCoordinate は座標を往復変換で値が変わらない10進数文字列にする
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseCoordinate は10進数の座標文字列を解析する
func ParseCoordinate(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidCoordinates, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidCoordinates, s)
	}
	return v, nil
}

// ParseLatLng は緯度経度の文字列ペアを解析し範囲を検証する
func ParseLatLng(lat, lng string) (model.LatLng, error) {
	la, err := ParseCoordinate(lat)
	if err != nil {
		return model.LatLng{}, err
	}
	lo, err := ParseCoordinate(lng)
	if err != nil {
		return model.LatLng{}, err
	}
	if err := ValidateLatLng(la, lo); err != nil {
		return model.LatLng{}, err
	}
	return model.LatLng{Lat: la, Lng: lo}, nil
}

// ValidateLatLng 緯度経度が有効範囲内か検証する
func ValidateLatLng(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: 緯度は-90から90の範囲内である必要があります", model.ErrInvalidCoordinates)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: 経度は-180から180の範囲内である必要があります", model.ErrInvalidCoordinates)
	}
	return nil
}

// SetCoordinates は数値座標と文字列座標を同時に更新する
func SetCoordinates(poi *model.POI, loc model.LatLng) {
	poi.Location = loc
	poi.Geocoding.Geocoded.Latitude = FormatCoordinate(loc.Lat)
	poi.Geocoding.Geocoded.Longitude = FormatCoordinate(loc.Lng)
}

// ComposeAddress は短縮住所・サブエリア・エリアから表示用住所を組み立てる
func ComposeAddress(shortAddress, subArea, area string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{shortAddress, subArea, area} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// FromRawDetected は検出結果をPOIに変換する（座標が解析できなければエラー）
func FromRawDetected(id string, raw model.RawDetectedPOI) (model.POI, error) {
	loc, err := ParseLatLng(raw.Geocoding.Geocoded.Latitude, raw.Geocoding.Geocoded.Longitude)
	if err != nil {
		return model.POI{}, err
	}

	poi := model.POI{
		ID:               id,
		DisplayName:      raw.DisplayName,
		RoadInfo:         raw.RoadInfo,
		Address:          raw.Address,
		Geocoding:        raw.Geocoding,
		Status:           model.StatusDetected,
		ExistingFlag:     raw.Existing,
		ExistingLocation: raw.ExistingLocation,
	}
	SetCoordinates(&poi, loc)
	return poi, nil
}

// ApplyManualEdit は編集内容をPOIにマージした新しい値を返す
func ApplyManualEdit(poi model.POI, edit model.ManualEdit) (model.POI, error) {
	loc, err := ParseLatLng(edit.Latitude, edit.Longitude)
	if err != nil {
		return model.POI{}, err
	}

	if edit.DisplayName != nil {
		name := *edit.DisplayName
		poi.DisplayName = &name
	}
	poi.RoadInfo = edit.RoadInfo

	geo := &poi.Geocoding.Geocoded
	geo.AddressShort = edit.AddressShort
	geo.Area = edit.Area
	geo.SubArea = edit.SubArea
	geo.City = edit.City
	geo.PostCode = edit.PostCode
	geo.RoadNameNumber = edit.RoadInfo
	geo.Address = ComposeAddress(edit.AddressShort, edit.SubArea, edit.Area)
	poi.Address = geo.Address

	SetCoordinates(&poi, loc)
	return poi, nil
}

// ApplyPlaceAttributes は逆ジオコーディング結果を住所属性にマージする（空の値は上書きしない）
func ApplyPlaceAttributes(poi *model.POI, place *model.PlaceAttributes) {
	if place == nil {
		return
	}
	geo := &poi.Geocoding.Geocoded
	mergeString(&geo.Area, place.Area)
	mergeString(&geo.SubArea, place.SubArea)
	mergeString(&geo.City, place.City)
	mergeString(&geo.District, place.District)
	mergeString(&geo.Thana, place.Thana)
	mergeString(&geo.Union, place.Union)
	mergeString(&geo.PostCode, place.PostCode)
	mergeString(&geo.RoadNameNumber, place.Road)
	mergeString(&geo.HoldingNumber, place.House)
	mergeString(&geo.PType, place.PType)
	mergeString(&geo.UCode, place.UCode)

	if place.Address != "" {
		geo.AddressShort = place.Address
		geo.Address = ComposeAddress(place.Address, geo.SubArea, geo.Area)
		poi.Address = geo.Address
		poi.Geocoding.Address = geo.Address
	}
	if place.Road != "" {
		poi.RoadInfo = place.Road
	}
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// StatusPredicate は指定ステータスのPOIを選ぶ述語を返す（空なら全件）
func StatusPredicate(statuses ...model.POIStatus) func(model.POI) bool {
	if len(statuses) == 0 {
		return func(model.POI) bool { return true }
	}
	set := make(map[model.POIStatus]struct{}, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return func(p model.POI) bool {
		_, ok := set[p.Status]
		return ok
	}
}
