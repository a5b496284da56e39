package export

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"POIReview-App/internal/domain/model"
)

var poiHeaders = []string{
	"ID", "Name", "Status", "Address", "Road", "Area", "Sub Area", "City",
	"Post Code", "Latitude", "Longitude", "Exists In System", "Confidence",
}

// WritePOIsCSV はPOIをCSVで書き出す
func WritePOIsCSV(w io.Writer, pois []model.POI) error {
	if len(pois) == 0 {
		return model.ErrNothingToExport
	}
	return writeCSV(w, poiTable(pois))
}

// WritePOIsXLSX はPOIをExcel形式で書き出す
func WritePOIsXLSX(w io.Writer, pois []model.POI) error {
	if len(pois) == 0 {
		return model.ErrNothingToExport
	}
	return writeXLSX(w, poiTable(pois))
}

// WritePOIsGeoJSON はPOIをGeoJSONのFeatureCollectionで書き出す
func WritePOIsGeoJSON(w io.Writer, pois []model.POI) error {
	if len(pois) == 0 {
		return model.ErrNothingToExport
	}
	fc := geojson.NewFeatureCollection()
	for _, p := range pois {
		f := geojson.NewFeature(orb.Point{p.Location.Lng, p.Location.Lat})
		f.ID = p.ID
		f.Properties["name"] = p.Name()
		f.Properties["status"] = string(p.Status)
		f.Properties["status_label"] = model.GetStatusDisplayName(p.Status)
		f.Properties["address"] = p.Address
		f.Properties["area"] = p.Geocoding.Geocoded.Area
		f.Properties["sub_area"] = p.Geocoding.Geocoded.SubArea
		f.Properties["post_code"] = p.Geocoding.Geocoded.PostCode
		f.Properties["p_type"] = p.Geocoding.Geocoded.PType
		f.Properties["exists_in_system"] = p.ExistingFlag
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("GeoJSONの生成に失敗: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func poiTable(pois []model.POI) table {
	rows := make([][]interface{}, 0, len(pois))
	for _, p := range pois {
		g := p.Geocoding.Geocoded
		rows = append(rows, []interface{}{
			p.ID, p.Name(), string(p.Status), p.Address, p.RoadInfo, g.Area, g.SubArea, g.City,
			g.PostCode, p.Location.Lat, p.Location.Lng, p.ExistingFlag, p.Geocoding.ConfidenceScore,
		})
	}
	return table{
		sheet:   "POIs",
		headers: poiHeaders,
		widths:  []float64{38, 30, 12, 40, 25, 20, 20, 15, 10, 12, 12, 10, 10},
		rows:    rows,
	}
}
