package maps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"POIReview-App/internal/domain/helper"
	"POIReview-App/internal/domain/model"
)

// DefaultExtractURL Barikoi の画像からPOIを抽出するAPI
const DefaultExtractURL = "https://usage.bmapsbd.com/extract"

// ImageCompressor は送信前に画像を圧縮する
type ImageCompressor interface {
	Compress(data []byte) ([]byte, error)
}

// BarikoiDetectionProvider はBarikoi extract APIを使用したPOI検出の実装
type BarikoiDetectionProvider struct {
	endpoint   string
	httpClient *http.Client
	compressor ImageCompressor
}

// NewBarikoiDetectionProvider は新しいプロバイダを生成する（compressor は nil 可）
func NewBarikoiDetectionProvider(endpoint string, timeout time.Duration, compressor ImageCompressor) *BarikoiDetectionProvider {
	if endpoint == "" {
		endpoint = DefaultExtractURL
	}
	return &BarikoiDetectionProvider{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		compressor: compressor,
	}
}

// Detect は画像をアップロードし、検出されたPOIの一覧を返す
func (b *BarikoiDetectionProvider) Detect(ctx context.Context, req model.DetectionRequest) ([]model.RawDetectedPOI, error) {
	if len(req.Image) == 0 {
		return nil, fmt.Errorf("画像が空です")
	}

	// 1. 画像を圧縮
	image := req.Image
	if b.compressor != nil {
		compressed, err := b.compressor.Compress(req.Image)
		if err != nil {
			return nil, fmt.Errorf("画像の圧縮に失敗: %w", err)
		}
		image = compressed
	}

	// 2. multipartボディを構築
	body, contentType, err := buildImageForm(req.Filename, image)
	if err != nil {
		return nil, fmt.Errorf("フォームの構築に失敗: %w", err)
	}

	reqURL, err := b.buildURL(req.Focus)
	if err != nil {
		return nil, fmt.Errorf("URLの構築に失敗: %w", err)
	}

	// 3. HTTPリクエストを作成・実行
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("APIからエラーステータスが返されました: %s %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	// 4. JSONレスポンスをパース
	var apiResp extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("JSONのパースに失敗: %w", err)
	}

	// 5. ドメインモデルに変換して返す
	result := make([]model.RawDetectedPOI, 0, len(apiResp.Result))
	for _, p := range apiResp.Result {
		result = append(result, p.toRawDetected())
	}
	return result, nil
}

func (b *BarikoiDetectionProvider) buildURL(focus *model.LatLng) (string, error) {
	u, err := url.Parse(b.endpoint)
	if err != nil {
		return "", err
	}
	if focus != nil {
		params := u.Query()
		params.Set("focus_lat", helper.FormatCoordinate(focus.Lat))
		params.Set("focus_lon", helper.FormatCoordinate(focus.Lng))
		u.RawQuery = params.Encode()
	}
	return u.String(), nil
}

// buildImageForm は file フィールドにJPEG画像を持つmultipartボディを作る
func buildImageForm(filename string, image []byte) (*bytes.Buffer, string, error) {
	if filename == "" {
		filename = "upload.jpg"
	}
	// 圧縮後は常にJPEGなので拡張子を揃える
	filename = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)) + ".jpg"

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}
