package maps

import (
	"bytes"
	"encoding/json"
	"strconv"

	"POIReview-App/internal/domain/model"
)

// flexString は文字列・数値・null のいずれで返ってきても文字列として受け取る
// Barikoi は postCode などを API によって数値でも文字列でも返す
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexFloat は数値・数値文字列・null のいずれも float64 として受け取る
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// --- 検出API(extract)のレスポンスをパースするための構造体 ---

type extractResponse struct {
	Result []extractPOI `json:"result"`
}

type extractPOI struct {
	POIName              *string         `json:"poi_name"`
	StreetRoadNameNumber *string         `json:"street_road_name_number"`
	Address              *string         `json:"address"`
	Rupantor             *rupantor       `json:"rupantor"`
	Info                 *extractPOIInfo `json:"info"`
}

type extractPOIInfo struct {
	Info *existInfo `json:"info"`
}

type existInfo struct {
	Exist     bool      `json:"exist"`
	Latitude  flexFloat `json:"latitude"`
	Longitude flexFloat `json:"longitude"`
}

type rupantor struct {
	Address         flexString `json:"address"`
	AddressBn       flexString `json:"address_bn"`
	ConfidenceScore flexFloat  `json:"confidence_score_percentage"`
	Geocoded        geocoded   `json:"geocoded"`
	InputAddress    flexString `json:"input_address"`
	Status          flexString `json:"status"`
}

type geocoded struct {
	Address        flexString `json:"Address"`
	AddressLower   flexString `json:"address"`
	AddressBn      flexString `json:"address_bn"`
	AddressShort   flexString `json:"address_short"`
	Area           flexString `json:"area"`
	City           flexString `json:"city"`
	District       flexString `json:"district"`
	HoldingNumber  flexString `json:"holding_number"`
	Latitude       flexString `json:"latitude"`
	Longitude      flexString `json:"longitude"`
	PType          flexString `json:"pType"`
	PostCode       flexString `json:"postCode"`
	RoadNameNumber flexString `json:"road_name_number"`
	SubArea        flexString `json:"sub_area"`
	SuperSubArea   flexString `json:"super_sub_area"`
	Thana          flexString `json:"thana"`
	UCode          flexString `json:"uCode"`
	Unions         flexString `json:"unions"`
}

// toRawDetected 検出APIの1件をドメインモデルに変換
func (p extractPOI) toRawDetected() model.RawDetectedPOI {
	raw := model.RawDetectedPOI{
		DisplayName: p.POIName,
		RoadInfo:    deref(p.StreetRoadNameNumber),
		Address:     deref(p.Address),
	}

	if r := p.Rupantor; r != nil {
		g := r.Geocoded
		address := string(g.AddressLower)
		if address == "" {
			address = string(g.Address)
		}
		raw.Geocoding = model.GeocodingPayload{
			Address:         string(r.Address),
			AddressBn:       string(r.AddressBn),
			ConfidenceScore: float64(r.ConfidenceScore),
			InputAddress:    string(r.InputAddress),
			Status:          string(r.Status),
			Geocoded: model.GeocodedAttributes{
				Address:        address,
				AddressBn:      string(g.AddressBn),
				AddressShort:   string(g.AddressShort),
				Area:           string(g.Area),
				SubArea:        string(g.SubArea),
				SuperSubArea:   string(g.SuperSubArea),
				City:           string(g.City),
				District:       string(g.District),
				Thana:          string(g.Thana),
				Union:          string(g.Unions),
				PType:          string(g.PType),
				PostCode:       string(g.PostCode),
				RoadNameNumber: string(g.RoadNameNumber),
				HoldingNumber:  string(g.HoldingNumber),
				UCode:          string(g.UCode),
				Latitude:       string(g.Latitude),
				Longitude:      string(g.Longitude),
			},
		}
	}

	if p.Info != nil && p.Info.Info != nil {
		raw.Existing = p.Info.Info.Exist
		if raw.Existing {
			raw.ExistingLocation = &model.LatLng{
				Lat: float64(p.Info.Info.Latitude),
				Lng: float64(p.Info.Info.Longitude),
			}
		}
	}
	return raw
}

// --- 逆ジオコーディングAPIのレスポンスをパースするための構造体 ---

type reverseGeocodeResponse struct {
	Place  *reversePlace `json:"place"`
	Status int           `json:"status"`
}

type reversePlace struct {
	Address           flexString        `json:"address"`
	Area              flexString        `json:"area"`
	SubArea           flexString        `json:"sub_area"`
	City              flexString        `json:"city"`
	District          flexString        `json:"district"`
	Thana             flexString        `json:"thana"`
	Union             flexString        `json:"union"`
	PostCode          flexString        `json:"postCode"`
	UCode             flexString        `json:"uCode"`
	PType             flexString        `json:"pType"`
	AddressComponents addressComponents `json:"address_components"`
}

type addressComponents struct {
	House flexString `json:"house"`
	Road  flexString `json:"road"`
}

// toPlaceAttributes 逆ジオコーディング結果をドメインモデルに変換
func (p *reversePlace) toPlaceAttributes() *model.PlaceAttributes {
	return &model.PlaceAttributes{
		Address:  string(p.Address),
		Area:     string(p.Area),
		SubArea:  string(p.SubArea),
		City:     string(p.City),
		District: string(p.District),
		Thana:    string(p.Thana),
		Union:    string(p.Union),
		PostCode: string(p.PostCode),
		Road:     string(p.AddressComponents.Road),
		House:    string(p.AddressComponents.House),
		PType:    string(p.PType),
		UCode:    string(p.UCode),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
