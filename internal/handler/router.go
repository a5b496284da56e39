package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter はAPIルートを登録したginエンジンを作成
func NewRouter(poiHandler *POIHandler, markerHandler *MarkerHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")
	api.GET("/health", healthHandler)

	pois := api.Group("/pois")
	{
		pois.POST("/upload", poiHandler.UploadImage)
		pois.GET("", poiHandler.ListPOIs)
		pois.DELETE("", poiHandler.ClearAll)
		pois.GET("/visible", poiHandler.VisiblePOIs)
		pois.POST("/reveal", poiHandler.RevealNext)
		pois.GET("/bounds", poiHandler.Bounds)
		pois.GET("/export", poiHandler.Export)
		pois.POST("/publish", poiHandler.Publish)
		pois.GET("/:id", poiHandler.GetPOI)
		pois.PUT("/:id", poiHandler.ManualEdit)
		pois.POST("/:id/verify", poiHandler.Verify)
		pois.POST("/:id/reject", poiHandler.Reject)
		pois.POST("/:id/toggle-edit", poiHandler.ToggleEdit)
		pois.PATCH("/:id/location", poiHandler.Reposition)
	}

	markers := api.Group("/markers")
	{
		markers.POST("/upload", markerHandler.UploadCSV)
		markers.GET("", markerHandler.ListMarkers)
		markers.DELETE("", markerHandler.Reset)
		markers.GET("/export", markerHandler.Export)
		markers.PATCH("/:id/location", markerHandler.UpdatePosition)
	}

	return r
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "POIReview-App",
	})
}
