package handler

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"POIReview-App/internal/domain/helper"
	"POIReview-App/internal/domain/model"
	"POIReview-App/internal/infrastructure/export"
	"POIReview-App/internal/usecase"
)

var contentTypes = map[string]string{
	model.ExportFormatCSV:     "text/csv; charset=utf-8",
	model.ExportFormatXLSX:    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	model.ExportFormatGeoJSON: "application/geo+json",
}

// POIHandler はPOIレビューAPIのハンドラー
type POIHandler struct {
	useCase        usecase.POIReviewUseCase
	maxUploadBytes int64
}

// NewPOIHandler は新しいPOIHandlerインスタンスを作成
func NewPOIHandler(useCase usecase.POIReviewUseCase, maxUploadBytes int64) *POIHandler {
	return &POIHandler{
		useCase:        useCase,
		maxUploadBytes: maxUploadBytes,
	}
}

// repositionRequest はドラッグ後の座標
type repositionRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// UploadImage は画像からPOIを検出するエンドポイント
// POST /api/pois/upload
func (h *POIHandler) UploadImage(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "画像ファイルが指定されていません",
			"details": err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "画像ファイルを開けません",
			"details": err.Error(),
		})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "画像ファイルの読み込みに失敗しました",
			"details": err.Error(),
		})
		return
	}

	focus, err := parseFocus(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "バリデーションエラー",
			"details": err.Error(),
		})
		return
	}

	pois, err := h.useCase.ProcessUpload(c.Request.Context(), model.DetectionRequest{
		Image:    image,
		Filename: fileHeader.Filename,
		Focus:    focus,
	})
	if err != nil {
		respondError(c, "POI検出に失敗しました", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pois":  pois,
		"total": len(pois),
	})
}

// parseFocus は focus_lat / focus_lon をフォームまたはクエリから読む（両方なければ nil）
func parseFocus(c *gin.Context) (*model.LatLng, error) {
	lat := c.PostForm("focus_lat")
	if lat == "" {
		lat = c.Query("focus_lat")
	}
	lng := c.PostForm("focus_lon")
	if lng == "" {
		lng = c.Query("focus_lon")
	}
	if lat == "" && lng == "" {
		return nil, nil
	}
	if lat == "" || lng == "" {
		return nil, &ValidationError{Field: "focus_lat/focus_lon", Message: "両方を指定してください"}
	}
	loc, err := helper.ParseLatLng(lat, lng)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// ListPOIs は全POIと表示進捗を返す
// GET /api/pois
func (h *POIHandler) ListPOIs(c *gin.Context) {
	c.JSON(http.StatusOK, h.useCase.ListPOIs())
}

// VisiblePOIs は表示中のPOIを返す
// GET /api/pois/visible
func (h *POIHandler) VisiblePOIs(c *gin.Context) {
	c.JSON(http.StatusOK, h.useCase.VisiblePOIs())
}

// RevealNext は次のPOIを1件表示する
// POST /api/pois/reveal
func (h *POIHandler) RevealNext(c *gin.Context) {
	poi, revealed := h.useCase.RevealNext()
	if !revealed {
		c.JSON(http.StatusOK, gin.H{"revealed": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"revealed": true, "poi": poi})
}

// Bounds は表示中のPOIを含む地図範囲を返す
// GET /api/pois/bounds
func (h *POIHandler) Bounds(c *gin.Context) {
	bounds, ok := h.useCase.VisibleBounds()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, bounds)
}

// Export はPOIをファイルとしてダウンロードさせる
// GET /api/pois/export?format=csv&status=verified,edited
func (h *POIHandler) Export(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", model.ExportFormatCSV))

	var statuses []model.POIStatus
	for _, raw := range c.QueryArray("status") {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			status, ok := model.ParseStatus(s)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":   "バリデーションエラー",
					"details": (&ValidationError{Field: "status", Message: "不明なステータスです: " + s}).Error(),
				})
				return
			}
			statuses = append(statuses, status)
		}
	}

	var buf bytes.Buffer
	if err := h.useCase.ExportPOIs(&buf, format, statuses); err != nil {
		respondError(c, "POIのエクスポートに失敗しました", err)
		return
	}
	sendFile(c, export.FileName("pois", format, time.Now()), contentTypes[format], buf.Bytes())
}

// Publish は確認済みPOIを外部の記録システムに保存する
// POST /api/pois/publish
func (h *POIHandler) Publish(c *gin.Context) {
	count, err := h.useCase.PublishVerified(c.Request.Context())
	if err != nil {
		respondError(c, "POIの保存に失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"published": count})
}

// ClearAll は全POIを破棄する
// DELETE /api/pois
func (h *POIHandler) ClearAll(c *gin.Context) {
	h.useCase.ClearAll()
	c.Status(http.StatusNoContent)
}

// GetPOI はPOIを1件返す
// GET /api/pois/:id
func (h *POIHandler) GetPOI(c *gin.Context) {
	poi, err := h.useCase.GetPOI(c.Param("id"))
	if err != nil {
		respondError(c, "POIが見つかりません", err)
		return
	}
	c.JSON(http.StatusOK, poi)
}

// Verify はPOIを確認済みにする
// POST /api/pois/:id/verify
func (h *POIHandler) Verify(c *gin.Context) {
	h.respondPOI(c, "POIの確認に失敗しました")(h.useCase.Verify(c.Param("id")))
}

// Reject はPOIを却下する
// POST /api/pois/:id/reject
func (h *POIHandler) Reject(c *gin.Context) {
	h.respondPOI(c, "POIの却下に失敗しました")(h.useCase.Reject(c.Param("id")))
}

// ToggleEdit は編集可否を切り替える
// POST /api/pois/:id/toggle-edit
func (h *POIHandler) ToggleEdit(c *gin.Context) {
	h.respondPOI(c, "編集可否の切り替えに失敗しました")(h.useCase.ToggleEditPermission(c.Param("id")))
}

// ManualEdit はフォームの編集内容を反映する
// PUT /api/pois/:id
func (h *POIHandler) ManualEdit(c *gin.Context) {
	var edit model.ManualEdit
	if err := c.ShouldBindJSON(&edit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "リクエストの形式が正しくありません",
			"details": err.Error(),
		})
		return
	}
	h.respondPOI(c, "POIの編集に失敗しました")(h.useCase.ManualEdit(c.Param("id"), edit))
}

// Reposition はドラッグで移動したPOIの座標を反映する
// PATCH /api/pois/:id/location
func (h *POIHandler) Reposition(c *gin.Context) {
	var req repositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "リクエストの形式が正しくありません",
			"details": err.Error(),
		})
		return
	}

	result, err := h.useCase.Reposition(c.Request.Context(), c.Param("id"), model.LatLng{Lat: *req.Lat, Lng: *req.Lng})
	if err != nil {
		respondError(c, "POIの移動に失敗しました", err)
		return
	}

	body := gin.H{
		"poi":      result.POI,
		"enriched": result.Enriched,
	}
	if result.EnrichmentErr != nil {
		body["enrichment_error"] = result.EnrichmentErr.Error()
	}
	c.JSON(http.StatusOK, body)
}

func (h *POIHandler) respondPOI(c *gin.Context, message string) func(model.POI, error) {
	return func(poi model.POI, err error) {
		if err != nil {
			respondError(c, message, err)
			return
		}
		c.JSON(http.StatusOK, poi)
	}
}

// sendFile は添付ファイルとしてレスポンスを返す
func sendFile(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
