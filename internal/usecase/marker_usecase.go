package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"POIReview-App/internal/domain/helper"
	"POIReview-App/internal/domain/model"
	"POIReview-App/internal/domain/service"
	"POIReview-App/internal/infrastructure/export"
)

const (
	// DefaultChunkSize 1回に反映するマーカー数
	DefaultChunkSize = 50
	// DefaultChunkDelay チャンク間の待ち時間
	DefaultChunkDelay = 100 * time.Millisecond
)

var (
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}
	// エディタが先頭に挿入するファイルパスのコメント行
	filepathCommentLine = regexp.MustCompile(`(?m)^// filepath:.*$\r?\n?`)
)

// MarkerUseCase はCSVマーカーの取り込みと編集のユースケース
type MarkerUseCase interface {
	// ImportCSV はCSVを解析し、有効な行をチャンクごとにストアへ反映する
	ImportCSV(ctx context.Context, r io.Reader) (*model.IngestReport, error)
	ListMarkers() []model.Marker
	UpdatePosition(id string, loc model.LatLng) (model.Marker, error)
	Reset()
	Export(w io.Writer, format string) error
	Bounds() (helper.MapBounds, bool)
}

// markerUseCaseImpl はMarkerUseCaseの実装
type markerUseCaseImpl struct {
	store      *service.MarkerStore
	ids        service.IDAssigner
	chunkSize  int
	chunkDelay time.Duration

	ingestMu sync.Mutex
}

// NewMarkerUseCase は新しいMarkerUseCaseインスタンスを作成
func NewMarkerUseCase(store *service.MarkerStore, ids service.IDAssigner, chunkSize int, chunkDelay time.Duration) MarkerUseCase {
	if ids == nil {
		ids = service.NewUUIDAssigner()
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkDelay < 0 {
		chunkDelay = DefaultChunkDelay
	}
	return &markerUseCaseImpl{
		store:      store,
		ids:        ids,
		chunkSize:  chunkSize,
		chunkDelay: chunkDelay,
	}
}

// parsedRow は検証済みのCSV行
type parsedRow struct {
	lat, lng                      float64
	details, contact, serviceType string
}

func (u *markerUseCaseImpl) ImportCSV(ctx context.Context, r io.Reader) (*model.IngestReport, error) {
	rows, issues, err := parseMarkersCSV(r)
	if err != nil {
		return nil, err
	}

	markers := make([]model.Marker, 0, len(rows))
	for _, row := range rows {
		name := row.details
		if name == "" {
			name = model.DefaultMarkerName
		}
		markers = append(markers, model.Marker{
			ID:          u.ids.Assign(),
			Name:        name,
			Latitude:    row.lat,
			Longitude:   row.lng,
			ContactNo:   row.contact,
			Details:     row.details,
			ServiceType: row.serviceType,
		})
	}

	// 取り込み同士が混ざらないように直列化する
	u.ingestMu.Lock()
	defer u.ingestMu.Unlock()

	log.Printf("🚀 CSVマーカー取り込み開始: 有効 %d 行, 除外 %d 行", len(markers), len(issues))
	chunks := u.deliver(ctx, markers)
	log.Printf("✅ CSVマーカー取り込み完了: %d件 (%dチャンク)", u.store.Len(), chunks)

	return &model.IngestReport{
		Accepted: len(markers),
		Dropped:  issues,
		Chunks:   chunks,
	}, nil
}

// deliver は先頭から伸びていく部分列としてストアへ反映する
// ctx がキャンセルされたら残りをまとめて反映する
func (u *markerUseCaseImpl) deliver(ctx context.Context, markers []model.Marker) int {
	chunks := 0
	for end := 0; end < len(markers); {
		end += u.chunkSize
		if end > len(markers) {
			end = len(markers)
		}
		u.store.ReplaceAll(markers[:end])
		chunks++

		if end == len(markers) || u.chunkDelay == 0 {
			continue
		}
		select {
		case <-ctx.Done():
			log.Printf("⚠️ 取り込み中にリクエストが終了したため残りを一括反映します")
			u.store.ReplaceAll(markers)
			return chunks + 1
		case <-time.After(u.chunkDelay):
		}
	}
	return chunks
}

// parseMarkersCSV はCSVを解析して有効な行と除外した行を返す
func parseMarkersCSV(r io.Reader) ([]parsedRow, []model.RowIssue, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("CSVの読み込みに失敗: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	raw = filepathCommentLine.ReplaceAll(raw, nil)

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, model.ErrMissingCoordinateColumns
		}
		return nil, nil, fmt.Errorf("CSVヘッダーの解析に失敗: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}
	latCol, hasLat := columns["latitude"]
	lngCol, hasLng := columns["longitude"]
	if !hasLat || !hasLng {
		return nil, nil, model.ErrMissingCoordinateColumns
	}

	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []parsedRow
	var issues []model.RowIssue
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				issues = append(issues, model.RowIssue{Line: perr.StartLine, Reason: perr.Err.Error()})
				continue
			}
			return nil, nil, fmt.Errorf("CSVの解析に失敗: %w", err)
		}

		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}
		if latCol >= len(record) || lngCol >= len(record) {
			issues = append(issues, model.RowIssue{Line: line, Reason: "列が不足しています"})
			continue
		}

		lat, latErr := helper.ParseCoordinate(record[latCol])
		lng, lngErr := helper.ParseCoordinate(record[lngCol])
		if latErr != nil || lngErr != nil {
			issues = append(issues, model.RowIssue{Line: line, Reason: "緯度・経度が数値ではありません"})
			continue
		}
		if err := helper.ValidateLatLng(lat, lng); err != nil {
			issues = append(issues, model.RowIssue{Line: line, Reason: "緯度・経度が範囲外です"})
			continue
		}

		rows = append(rows, parsedRow{
			lat:         lat,
			lng:         lng,
			details:     field(record, "event_details"),
			contact:     field(record, "event_contact_no"),
			serviceType: field(record, "service_type"),
		})
	}

	if len(rows) == 0 {
		return nil, issues, model.ErrNoValidRows
	}
	return rows, issues, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func (u *markerUseCaseImpl) ListMarkers() []model.Marker {
	return u.store.All()
}

func (u *markerUseCaseImpl) UpdatePosition(id string, loc model.LatLng) (model.Marker, error) {
	if err := helper.ValidateLatLng(loc.Lat, loc.Lng); err != nil {
		return model.Marker{}, err
	}
	marker, ok := u.store.UpdatePosition(id, loc.Lat, loc.Lng)
	if !ok {
		return model.Marker{}, fmt.Errorf("%w: %s", model.ErrMarkerNotFound, id)
	}
	return marker, nil
}

func (u *markerUseCaseImpl) Reset() {
	u.store.Clear()
	log.Printf("🧹 全マーカーをクリアしました")
}

func (u *markerUseCaseImpl) Export(w io.Writer, format string) error {
	markers := u.store.All()
	switch format {
	case model.ExportFormatCSV:
		return export.WriteMarkersCSV(w, markers)
	case model.ExportFormatXLSX:
		return export.WriteMarkersXLSX(w, markers)
	default:
		return fmt.Errorf("%w: %s", model.ErrUnsupportedFormat, format)
	}
}

func (u *markerUseCaseImpl) Bounds() (helper.MapBounds, bool) {
	return helper.MarkerBounds(u.store.All(), helper.DefaultBoundsPadding)
}
