package export

import (
	"io"

	"POIReview-App/internal/domain/model"
)

// WriteMarkersCSV はマーカーをCSVで書き出す
func WriteMarkersCSV(w io.Writer, markers []model.Marker) error {
	if len(markers) == 0 {
		return model.ErrNothingToExport
	}
	return writeCSV(w, markerTable(markers, []string{
		"name", "latitude", "longitude", "contact_no", "details", "service_type",
	}))
}

// WriteMarkersXLSX はマーカーをExcel形式で書き出す
func WriteMarkersXLSX(w io.Writer, markers []model.Marker) error {
	if len(markers) == 0 {
		return model.ErrNothingToExport
	}
	return writeXLSX(w, markerTable(markers, []string{
		"Name", "Latitude", "Longitude", "Contact No", "Details", "Service Type",
	}))
}

func markerTable(markers []model.Marker, headers []string) table {
	rows := make([][]interface{}, 0, len(markers))
	for _, m := range markers {
		rows = append(rows, []interface{}{
			m.Name, m.Latitude, m.Longitude, m.ContactNo, m.Details, m.ServiceType,
		})
	}
	return table{
		sheet:   "Markers",
		headers: headers,
		widths:  []float64{30, 12, 12, 15, 30, 15},
		rows:    rows,
	}
}
