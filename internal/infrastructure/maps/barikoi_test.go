package maps

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"POIReview-App/internal/domain/model"
)

const extractBody = `{
  "result": [
    {
      "poi_name": "Star Kabab",
      "street_road_name_number": "Road 11",
      "address": "House 7, Road 11, Banani",
      "rupantor": {
        "address": "house 7, road 11, banani",
        "confidence_score_percentage": "92.5",
        "status": "complete",
        "geocoded": {
          "Address": "House 7, Road 11, Banani, Dhaka",
          "address_short": "House 7, Road 11",
          "area": "Banani",
          "city": "Dhaka",
          "postCode": 1213,
          "latitude": "23.7937",
          "longitude": "90.4066"
        }
      },
      "info": {"info": {"exist": true, "latitude": "23.7938", "longitude": 90.4067}}
    },
    {
      "poi_name": null,
      "rupantor": {
        "geocoded": {"postCode": "1212", "latitude": "23.78", "longitude": "90.41"}
      },
      "info": {"info": {"exist": false}}
    }
  ]
}`

type recordingCompressor struct {
	calls int
}

func (c *recordingCompressor) Compress(data []byte) ([]byte, error) {
	c.calls++
	return []byte("compressed"), nil
}

func TestBarikoiDetectionProvider_Detect(t *testing.T) {
	var gotQuery map[string]string
	var gotFile []byte
	var gotFilename, gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotQuery = map[string]string{
			"focus_lat": r.URL.Query().Get("focus_lat"),
			"focus_lon": r.URL.Query().Get("focus_lon"),
		}

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotFile, _ = io.ReadAll(file)
		gotFilename = header.Filename
		gotContentType = header.Header.Get("Content-Type")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(extractBody))
	}))
	defer server.Close()

	compressor := &recordingCompressor{}
	provider := NewBarikoiDetectionProvider(server.URL, 5*time.Second, compressor)

	raws, err := provider.Detect(context.Background(), model.DetectionRequest{
		Image:    []byte("original png"),
		Filename: "street.png",
		Focus:    &model.LatLng{Lat: 23.79, Lng: 90.4},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, compressor.calls)
	assert.Equal(t, []byte("compressed"), gotFile)
	assert.Equal(t, "street.jpg", gotFilename)
	assert.Equal(t, "image/jpeg", gotContentType)
	assert.Equal(t, "23.79", gotQuery["focus_lat"])
	assert.Equal(t, "90.4", gotQuery["focus_lon"])

	require.Len(t, raws, 2)
	first := raws[0]
	require.NotNil(t, first.DisplayName)
	assert.Equal(t, "Star Kabab", *first.DisplayName)
	assert.Equal(t, "Road 11", first.RoadInfo)
	assert.Equal(t, "House 7, Road 11, Banani, Dhaka", first.Geocoding.Geocoded.Address)
	assert.Equal(t, "1213", first.Geocoding.Geocoded.PostCode, "数値のpostCodeも文字列として受け取る")
	assert.Equal(t, "23.7937", first.Geocoding.Geocoded.Latitude)
	assert.InDelta(t, 92.5, first.Geocoding.ConfidenceScore, 1e-9)
	assert.True(t, first.Existing)
	require.NotNil(t, first.ExistingLocation)
	assert.Equal(t, model.LatLng{Lat: 23.7938, Lng: 90.4067}, *first.ExistingLocation)

	second := raws[1]
	assert.Nil(t, second.DisplayName)
	assert.Equal(t, "1212", second.Geocoding.Geocoded.PostCode)
	assert.False(t, second.Existing)
	assert.Nil(t, second.ExistingLocation)
}

func TestBarikoiDetectionProvider_NoFocus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"result": []}`))
	}))
	defer server.Close()

	provider := NewBarikoiDetectionProvider(server.URL, 5*time.Second, nil)
	raws, err := provider.Detect(context.Background(), model.DetectionRequest{Image: []byte("jpeg")})

	require.NoError(t, err)
	assert.Empty(t, raws)
}

func TestBarikoiDetectionProvider_Errors(t *testing.T) {
	t.Run("エラーステータス", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		}))
		defer server.Close()

		_, err := NewBarikoiDetectionProvider(server.URL, 5*time.Second, nil).
			Detect(context.Background(), model.DetectionRequest{Image: []byte("jpeg")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("不正なJSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer server.Close()

		_, err := NewBarikoiDetectionProvider(server.URL, 5*time.Second, nil).
			Detect(context.Background(), model.DetectionRequest{Image: []byte("jpeg")})
		assert.Error(t, err)
	})

	t.Run("空の画像", func(t *testing.T) {
		_, err := NewBarikoiDetectionProvider("http://127.0.0.1:0", time.Second, nil).
			Detect(context.Background(), model.DetectionRequest{})
		assert.Error(t, err)
	})
}

func TestBarikoiReverseGeocoder_ReverseGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("api_key"))
		assert.Equal(t, "23.7925", q.Get("latitude"))
		assert.Equal(t, "90.4078", q.Get("longitude"))
		assert.Equal(t, "true", q.Get("post_code"))
		assert.Equal(t, "true", q.Get("thana"))

		_, _ = w.Write([]byte(`{
		  "place": {
		    "address": "House 5, Road 7",
		    "area": "Gulshan",
		    "sub_area": "Gulshan 1",
		    "city": "Dhaka",
		    "district": "Dhaka",
		    "thana": "Gulshan",
		    "union": null,
		    "postCode": 1212,
		    "pType": "Residential",
		    "uCode": "GLSN1234",
		    "address_components": {"house": "5", "road": "Road 7"}
		  },
		  "status": 200
		}`))
	}))
	defer server.Close()

	geocoder := NewBarikoiReverseGeocoder(server.URL, "test-key", 5*time.Second)
	place, err := geocoder.ReverseGeocode(context.Background(), 23.7925, 90.4078)
	require.NoError(t, err)

	assert.Equal(t, &model.PlaceAttributes{
		Address:  "House 5, Road 7",
		Area:     "Gulshan",
		SubArea:  "Gulshan 1",
		City:     "Dhaka",
		District: "Dhaka",
		Thana:    "Gulshan",
		PostCode: "1212",
		Road:     "Road 7",
		House:    "5",
		PType:    "Residential",
		UCode:    "GLSN1234",
	}, place)
}

func TestBarikoiReverseGeocoder_Errors(t *testing.T) {
	t.Run("APIキーなし", func(t *testing.T) {
		_, err := NewBarikoiReverseGeocoder("", "", time.Second).ReverseGeocode(context.Background(), 23, 90)
		assert.Error(t, err)
	})

	t.Run("本文のステータスがエラー", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"message": "invalid key", "status": 401}`))
		}))
		defer server.Close()

		_, err := NewBarikoiReverseGeocoder(server.URL, "bad", time.Second).ReverseGeocode(context.Background(), 23, 90)
		assert.Error(t, err)
	})

	t.Run("場所情報なし", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status": 200}`))
		}))
		defer server.Close()

		_, err := NewBarikoiReverseGeocoder(server.URL, "key", time.Second).ReverseGeocode(context.Background(), 23, 90)
		assert.Error(t, err)
	})

	t.Run("タイムアウト", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		_, err := NewBarikoiReverseGeocoder(server.URL, "key", 20*time.Millisecond).ReverseGeocode(context.Background(), 23, 90)
		assert.Error(t, err)
	})
}

func TestFlexString(t *testing.T) {
	var g geocoded
	require.NoError(t, json.Unmarshal([]byte(`{"postCode": 1000, "area": null, "city": "Dhaka"}`), &g))
	assert.Equal(t, flexString("1000"), g.PostCode)
	assert.Equal(t, flexString(""), g.Area)
	assert.Equal(t, flexString("Dhaka"), g.City)
}
