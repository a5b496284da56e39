package handler

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"POIReview-App/internal/domain/model"
	"POIReview-App/internal/infrastructure/export"
	"POIReview-App/internal/usecase"
)

// MarkerHandler はCSVマーカーAPIのハンドラー
type MarkerHandler struct {
	useCase        usecase.MarkerUseCase
	maxUploadBytes int64
}

// NewMarkerHandler は新しいMarkerHandlerインスタンスを作成
func NewMarkerHandler(useCase usecase.MarkerUseCase, maxUploadBytes int64) *MarkerHandler {
	return &MarkerHandler{
		useCase:        useCase,
		maxUploadBytes: maxUploadBytes,
	}
}

// UploadCSV はCSVからマーカーを一括登録する
// POST /api/markers/upload
func (h *MarkerHandler) UploadCSV(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "CSVファイルが指定されていません",
			"details": err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "CSVファイルを開けません",
			"details": err.Error(),
		})
		return
	}
	defer file.Close()

	report, err := h.useCase.ImportCSV(c.Request.Context(), file)
	if err != nil {
		respondError(c, "CSVの取り込みに失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListMarkers は全マーカーを返す
// GET /api/markers
func (h *MarkerHandler) ListMarkers(c *gin.Context) {
	markers := h.useCase.ListMarkers()
	body := gin.H{
		"markers": markers,
		"total":   len(markers),
	}
	if bounds, ok := h.useCase.Bounds(); ok {
		body["bounds"] = bounds
	}
	c.JSON(http.StatusOK, body)
}

// Export はマーカーをファイルとしてダウンロードさせる
// GET /api/markers/export?format=xlsx
func (h *MarkerHandler) Export(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", model.ExportFormatCSV))

	var buf bytes.Buffer
	if err := h.useCase.Export(&buf, format); err != nil {
		respondError(c, "マーカーのエクスポートに失敗しました", err)
		return
	}
	sendFile(c, export.FileName("markers", format, time.Now()), contentTypes[format], buf.Bytes())
}

// UpdatePosition はドラッグされたマーカーの位置を反映する
// PATCH /api/markers/:id/location
func (h *MarkerHandler) UpdatePosition(c *gin.Context) {
	var req repositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "リクエストの形式が正しくありません",
			"details": err.Error(),
		})
		return
	}

	marker, err := h.useCase.UpdatePosition(c.Param("id"), model.LatLng{Lat: *req.Lat, Lng: *req.Lng})
	if err != nil {
		respondError(c, "マーカーの移動に失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, marker)
}

// Reset は全マーカーを破棄する
// DELETE /api/markers
func (h *MarkerHandler) Reset(c *gin.Context) {
	h.useCase.Reset()
	c.Status(http.StatusNoContent)
}
