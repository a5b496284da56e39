package model

// DefaultMarkerName 名前のないマーカーに付ける既定名
const DefaultMarkerName = "Unnamed Location"

// Marker CSVから一括登録される地図上のピン
type Marker struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ContactNo   string  `json:"contactNo,omitempty"`
	Details     string  `json:"details,omitempty"`
	ServiceType string  `json:"serviceType,omitempty"`
}

// ToLatLng マーカーの位置をLatLng型に変換
func (m *Marker) ToLatLng() LatLng {
	return LatLng{Lat: m.Latitude, Lng: m.Longitude}
}

// RowIssue 取り込み時に除外された行とその理由
type RowIssue struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// IngestReport CSV取り込みの結果
type IngestReport struct {
	Accepted int        `json:"accepted"`
	Dropped  []RowIssue `json:"dropped"`
	Chunks   int        `json:"chunks"`
}
