package model

// POIステータスの定数
const (
	StatusDetected POIStatus = "detected"
	StatusVerified POIStatus = "verified"
	StatusEdited   POIStatus = "edited"
	StatusRejected POIStatus = "rejected"
)

// エクスポート形式の定数
const (
	ExportFormatCSV     = "csv"
	ExportFormatXLSX    = "xlsx"
	ExportFormatGeoJSON = "geojson"
)

// エクスポート先の定数
const (
	ExportSinkNone      = "none"
	ExportSinkSupabase  = "supabase"
	ExportSinkPostgres  = "postgres"
	ExportSinkFirestore = "firestore"
)

// StatusNameMap はステータスから表示名へのマッピング
var StatusNameMap = map[POIStatus]string{
	StatusDetected: "AI検出",
	StatusVerified: "確認済み",
	StatusEdited:   "編集済み",
	StatusRejected: "却下",
}

// ParseStatus 文字列をPOIStatusに変換する
func ParseStatus(s string) (POIStatus, bool) {
	status := POIStatus(s)
	if _, ok := StatusNameMap[status]; ok {
		return status, true
	}
	return "", false
}

// GetStatusDisplayName はステータスの表示名を取得する
func GetStatusDisplayName(status POIStatus) string {
	if name, ok := StatusNameMap[status]; ok {
		return name
	}
	return string(status) // デフォルトはそのまま返す
}
