package model

// LatLng 緯度経度を表す基本的な型
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// POIStatus POIのレビュー状態
type POIStatus string

// POI 画像から検出された Point of Interest（レビュー対象のスポット）
type POI struct {
	ID               string           `json:"id"`                      // 取り込み時に採番されるID（不変）
	DisplayName      *string          `json:"poi_name"`                // 表示名（NULLABLE）
	RoadInfo         string           `json:"street_road_name_number"` // 道路名・番地
	Address          string           `json:"address"`                 // 表示用の合成住所
	Geocoding        GeocodingPayload `json:"rupantor"`                // ジオコーディング結果（コアでは座標以外は解釈しない）
	Location         LatLng           `json:"location"`                // 正規の数値座標
	Status           POIStatus        `json:"status"`
	ExistingFlag     bool             `json:"exists_in_system"`            // 外部システムに既に登録済みか
	ExistingLocation *LatLng          `json:"existing_location,omitempty"` // 登録済みの場合の座標
	EditEnabled      bool             `json:"is_edit_enabled"`             // POI単位の編集許可
}

// GeocodingPayload 検出プロバイダが返すジオコーディング情報
type GeocodingPayload struct {
	Address         string             `json:"address"`
	AddressBn       string             `json:"address_bn"`
	ConfidenceScore float64            `json:"confidence_score_percentage"`
	InputAddress    string             `json:"input_address"`
	Status          string             `json:"status"`
	Geocoded        GeocodedAttributes `json:"geocoded"`
}

// GeocodedAttributes ジオコーディング済みの住所属性
type GeocodedAttributes struct {
	Address        string `json:"address"`
	AddressBn      string `json:"address_bn"`
	AddressShort   string `json:"address_short"`
	Area           string `json:"area"`
	SubArea        string `json:"sub_area"`
	SuperSubArea   string `json:"super_sub_area"`
	City           string `json:"city"`
	District       string `json:"district"`
	Thana          string `json:"thana"`
	Union          string `json:"unions"`
	PType          string `json:"pType"`
	PostCode       string `json:"postCode"`
	RoadNameNumber string `json:"road_name_number"`
	HoldingNumber  string `json:"holding_number"`
	UCode          string `json:"uCode"`
	Latitude       string `json:"latitude"`  // 10進数の緯度文字列
	Longitude      string `json:"longitude"` // 10進数の経度文字列
}

// Name 表示名を返す（未設定なら空文字列）
func (p *POI) Name() string {
	if p.DisplayName != nil {
		return *p.DisplayName
	}
	return ""
}

// RawDetectedPOI 検出サービスから返された未採番のPOI
type RawDetectedPOI struct {
	DisplayName      *string
	RoadInfo         string
	Address          string
	Geocoding        GeocodingPayload
	Existing         bool
	ExistingLocation *LatLng
}

// DetectionRequest 検出サービスに渡すアップロード内容
type DetectionRequest struct {
	Image    []byte
	Filename string
	Focus    *LatLng // 検出範囲のヒント座標（任意）
}

// PlaceAttributes 逆ジオコーディングで得られる場所の属性
type PlaceAttributes struct {
	Address  string
	Area     string
	SubArea  string
	City     string
	District string
	Thana    string
	Union    string
	PostCode string
	Road     string
	House    string
	PType    string
	UCode    string
}

// ManualEdit 編集フォームから送られる置き換え内容
type ManualEdit struct {
	DisplayName  *string `json:"poi_name"`
	RoadInfo     string  `json:"street_road_name_number"`
	AddressShort string  `json:"address_short"`
	Area         string  `json:"area"`
	SubArea      string  `json:"sub_area"`
	City         string  `json:"city"`
	PostCode     string  `json:"postCode"`
	Latitude     string  `json:"latitude" binding:"required"`
	Longitude    string  `json:"longitude" binding:"required"`
}

// RepositionResult ドラッグによる位置変更の結果
type RepositionResult struct {
	POI           POI   `json:"poi"`
	Enriched      bool  `json:"enriched"` // 逆ジオコーディングで住所が更新されたか
	EnrichmentErr error `json:"-"`
}
