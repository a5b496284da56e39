package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"POIReview-App/internal/domain/helper"
	"POIReview-App/internal/domain/model"
)

// DefaultReverseGeocodeURL Barikoi の逆ジオコーディングAPI
const DefaultReverseGeocodeURL = "https://barikoi.xyz/v2/api/search/reverse/geocode"

// 逆ジオコーディングで要求する属性
var reverseGeocodeFlags = []string{
	"country", "district", "post_code", "sub_district", "union", "pauroshova",
	"location_type", "division", "address", "area", "bangla", "thana",
}

// BarikoiReverseGeocoder はBarikoi APIを使用した逆ジオコーディングの実装
type BarikoiReverseGeocoder struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewBarikoiReverseGeocoder は新しい逆ジオコーダーを生成する
func NewBarikoiReverseGeocoder(endpoint, apiKey string, timeout time.Duration) *BarikoiReverseGeocoder {
	if endpoint == "" {
		endpoint = DefaultReverseGeocodeURL
	}
	return &BarikoiReverseGeocoder{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ReverseGeocode は座標から場所の属性を取得する
func (b *BarikoiReverseGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*model.PlaceAttributes, error) {
	if b.apiKey == "" {
		return nil, errors.New("BARIKOI_API_KEYが設定されていません")
	}

	reqURL, err := b.buildURL(lat, lng)
	if err != nil {
		return nil, fmt.Errorf("URLの構築に失敗: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status)
	}

	var apiResp reverseGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("JSONのパースに失敗: %w", err)
	}

	if apiResp.Status != 0 && apiResp.Status != http.StatusOK {
		return nil, fmt.Errorf("APIがエラーを返しました: status=%d", apiResp.Status)
	}
	if apiResp.Place == nil {
		return nil, errors.New("APIから場所情報が返されませんでした")
	}

	return apiResp.Place.toPlaceAttributes(), nil
}

func (b *BarikoiReverseGeocoder) buildURL(lat, lng float64) (string, error) {
	u, err := url.Parse(b.endpoint)
	if err != nil {
		return "", err
	}
	params := u.Query()
	params.Set("api_key", b.apiKey)
	params.Set("latitude", helper.FormatCoordinate(lat))
	params.Set("longitude", helper.FormatCoordinate(lng))
	for _, flag := range reverseGeocodeFlags {
		params.Set(flag, "true")
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}
