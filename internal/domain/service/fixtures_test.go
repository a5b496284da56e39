package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"POIReview-App/internal/domain/helper"
	"POIReview-App/internal/domain/model"
)

// sequentialIDs はテスト用に poi-1, poi-2, ... を発行する
type sequentialIDs struct {
	n atomic.Int64
}

func (s *sequentialIDs) Assign() string {
	return fmt.Sprintf("poi-%d", s.n.Add(1))
}

// stubDetector は固定の検出結果を返す
type stubDetector struct {
	mu      sync.Mutex
	raws    []model.RawDetectedPOI
	err     error
	calls   int
	release chan struct{} // nil でなければ閉じられるまで待つ
	entered chan struct{}
}

func (d *stubDetector) Detect(ctx context.Context, req model.DetectionRequest) ([]model.RawDetectedPOI, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()

	if d.entered != nil {
		d.entered <- struct{}{}
	}
	if d.release != nil {
		select {
		case <-d.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return d.raws, d.err
}

func (d *stubDetector) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// stubGeocoder は固定の住所属性を返す
type stubGeocoder struct {
	place *model.PlaceAttributes
	err   error
	calls atomic.Int32
}

func (g *stubGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*model.PlaceAttributes, error) {
	g.calls.Add(1)
	if g.err != nil {
		return nil, g.err
	}
	return g.place, nil
}

// busyFlag は InFlightChecker のテスト実装
type busyFlag struct {
	v atomic.Bool
}

func (b *busyFlag) InFlight() bool { return b.v.Load() }

func rawPOI(name string, lat, lng string) model.RawDetectedPOI {
	n := name
	return model.RawDetectedPOI{
		DisplayName: &n,
		RoadInfo:    "Road 1",
		Address:     name + " address",
		Geocoding: model.GeocodingPayload{
			Address: name + " address",
			Geocoded: model.GeocodedAttributes{
				AddressShort: name + " address",
				Area:         "Gulshan",
				City:         "Dhaka",
				Latitude:     lat,
				Longitude:    lng,
			},
		},
	}
}

func samplePOI(t *testing.T, id, name string, lat, lng float64) model.POI {
	t.Helper()
	poi, err := helper.FromRawDetected(id, rawPOI(name, helper.FormatCoordinate(lat), helper.FormatCoordinate(lng)))
	if err != nil {
		t.Fatalf("テスト用POIの作成に失敗: %v", err)
	}
	return poi
}

func poiIDs(pois []model.POI) []string {
	result := make([]string, len(pois))
	for i, p := range pois {
		result[i] = p.ID
	}
	return result
}
