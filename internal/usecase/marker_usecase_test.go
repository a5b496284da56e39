package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"POIReview-App/internal/domain/model"
	"POIReview-App/internal/domain/service"
)

const markersCSV = `latitude,longitude,event_details,event_contact_no,service_type
23.7806,90.4193,Health camp,01700000000,medical
23.7811,90.4200,,01800000000,food
not-a-number,90.4210,Broken row,,
23.7830,90.4220,Blood drive,,medical
23.7840,90.4230,Vaccination,01900000000,
`

func newMarkerUseCase(chunkSize int, delay time.Duration) (MarkerUseCase, *service.MarkerStore) {
	store := service.NewMarkerStore()
	return NewMarkerUseCase(store, service.NewUUIDAssigner(), chunkSize, delay), store
}

func TestMarkerUseCase_ImportCSV(t *testing.T) {
	t.Run("不正な行を除外して残りを取り込む", func(t *testing.T) {
		uc, store := newMarkerUseCase(2, 0)

		report, err := uc.ImportCSV(context.Background(), strings.NewReader(markersCSV))
		require.NoError(t, err)

		assert.Equal(t, 4, report.Accepted)
		require.Len(t, report.Dropped, 1)
		assert.Equal(t, 4, report.Dropped[0].Line, "ヘッダーを含めた物理行番号")
		assert.Equal(t, 2, report.Chunks)

		markers := store.All()
		require.Len(t, markers, 4)
		assert.Equal(t, "Health camp", markers[0].Name)
		assert.Equal(t, "01700000000", markers[0].ContactNo)
		assert.Equal(t, "medical", markers[0].ServiceType)
		assert.Equal(t, model.DefaultMarkerName, markers[1].Name)
		assert.Equal(t, "Blood drive", markers[2].Name)
		assert.Equal(t, 23.7840, markers[3].Latitude)

		seen := map[string]bool{}
		for _, m := range markers {
			assert.NotEmpty(t, m.ID)
			assert.False(t, seen[m.ID], "IDが重複しています")
			seen[m.ID] = true
		}
	})

	t.Run("BOMとファイルパスのコメント行を無視する", func(t *testing.T) {
		uc, store := newMarkerUseCase(50, 0)
		input := "\xEF\xBB\xBF// filepath: /tmp/markers.csv\nLatitude , LONGITUDE\n23.78,90.41\n"

		report, err := uc.ImportCSV(context.Background(), strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, 1, report.Accepted)
		assert.Equal(t, model.DefaultMarkerName, store.All()[0].Name)
	})

	t.Run("座標の列がない", func(t *testing.T) {
		uc, _ := newMarkerUseCase(50, 0)

		_, err := uc.ImportCSV(context.Background(), strings.NewReader("name,lat,lng\nA,1,2\n"))
		assert.ErrorIs(t, err, model.ErrMissingCoordinateColumns)
	})

	t.Run("空のファイル", func(t *testing.T) {
		uc, _ := newMarkerUseCase(50, 0)

		_, err := uc.ImportCSV(context.Background(), strings.NewReader(""))
		assert.ErrorIs(t, err, model.ErrMissingCoordinateColumns)
	})

	t.Run("有効な行がない場合はストアを変更しない", func(t *testing.T) {
		uc, store := newMarkerUseCase(50, 0)
		store.ReplaceAll([]model.Marker{{ID: "keep", Name: "Keep"}})

		_, err := uc.ImportCSV(context.Background(), strings.NewReader("latitude,longitude\nabc,def\n95,90\n"))
		assert.ErrorIs(t, err, model.ErrNoValidRows)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("列が足りない行と範囲外の座標を除外する", func(t *testing.T) {
		uc, _ := newMarkerUseCase(50, 0)
		input := "event_details,latitude,longitude\nShort row\nFar away,91,90\nOK,23.78,90.41\n"

		report, err := uc.ImportCSV(context.Background(), strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, 1, report.Accepted)
		require.Len(t, report.Dropped, 2)
		assert.Equal(t, 2, report.Dropped[0].Line)
		assert.Equal(t, 3, report.Dropped[1].Line)
	})
}

func TestMarkerUseCase_ImportCSV_Chunked(t *testing.T) {
	t.Run("チャンクごとに先頭から伸びていく", func(t *testing.T) {
		uc, store := newMarkerUseCase(1, 20*time.Millisecond)

		done := make(chan *model.IngestReport, 1)
		go func() {
			report, err := uc.ImportCSV(context.Background(), strings.NewReader(markersCSV))
			assert.NoError(t, err)
			done <- report
		}()

		assert.Eventually(t, func() bool { return store.Len() > 0 && store.Len() < 4 }, time.Second, time.Millisecond)
		report := <-done
		assert.Equal(t, 4, report.Chunks)
		assert.Equal(t, 4, store.Len())
	})

	t.Run("キャンセルされたら残りを一括反映する", func(t *testing.T) {
		uc, store := newMarkerUseCase(1, time.Hour)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		report, err := uc.ImportCSV(ctx, strings.NewReader(markersCSV))
		require.NoError(t, err)
		assert.Equal(t, 4, report.Accepted)
		assert.Equal(t, 4, store.Len())
	})
}

func TestMarkerUseCase_UpdatePosition(t *testing.T) {
	uc, store := newMarkerUseCase(50, 0)
	store.ReplaceAll([]model.Marker{{ID: "m1", Name: "Clinic", Latitude: 23.78, Longitude: 90.41}})

	got, err := uc.UpdatePosition("m1", model.LatLng{Lat: 23.8, Lng: 90.5})
	require.NoError(t, err)
	assert.Equal(t, 23.8, got.Latitude)

	_, err = uc.UpdatePosition("missing", model.LatLng{Lat: 23.8, Lng: 90.5})
	assert.ErrorIs(t, err, model.ErrMarkerNotFound)

	_, err = uc.UpdatePosition("m1", model.LatLng{Lat: 100, Lng: 90.5})
	assert.ErrorIs(t, err, model.ErrInvalidCoordinates)
}

func TestMarkerUseCase_ExportAndReset(t *testing.T) {
	uc, _ := newMarkerUseCase(50, 0)
	_, err := uc.ImportCSV(context.Background(), strings.NewReader(markersCSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, uc.Export(&buf, model.ExportFormatCSV))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"name", "latitude", "longitude", "contact_no", "details", "service_type"}, records[0])
	assert.Equal(t, "Health camp", records[1][0])

	assert.ErrorIs(t, uc.Export(&buf, "pdf"), model.ErrUnsupportedFormat)

	bounds, ok := uc.Bounds()
	require.True(t, ok)
	assert.Less(t, bounds.MinLat, 23.7806)

	uc.Reset()
	assert.Empty(t, uc.ListMarkers())
	assert.ErrorIs(t, uc.Export(&buf, model.ExportFormatCSV), model.ErrNothingToExport)
	_, ok = uc.Bounds()
	assert.False(t, ok)
}
