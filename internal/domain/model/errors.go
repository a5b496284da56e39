package model

import "errors"

var (
	ErrIngestionInFlight        = errors.New("検出処理が既に実行中です")
	ErrDetectionFailed          = errors.New("POI検出に失敗しました")
	ErrMalformedDetection       = errors.New("検出結果の形式が不正です")
	ErrInvalidCoordinates       = errors.New("座標の形式が不正です")
	ErrMissingCoordinateColumns = errors.New("CSVには latitude と longitude の列が必要です")
	ErrNoValidRows              = errors.New("有効なマーカー行がありません")
	ErrPOINotFound              = errors.New("POIが見つかりません")
	ErrMarkerNotFound           = errors.New("マーカーが見つかりません")
	ErrNothingToExport          = errors.New("エクスポート対象がありません")
	ErrUnsupportedFormat        = errors.New("未対応のエクスポート形式です")
	ErrExportSinkDisabled       = errors.New("エクスポート先が設定されていません")
)
