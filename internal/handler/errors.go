package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"POIReview-App/internal/domain/model"
)

// statusFor はユースケースのエラーをHTTPステータスに変換する
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrPOINotFound), errors.Is(err, model.ErrMarkerNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrIngestionInFlight):
		return http.StatusConflict
	case errors.Is(err, model.ErrDetectionFailed), errors.Is(err, model.ErrMalformedDetection):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrInvalidCoordinates),
		errors.Is(err, model.ErrMissingCoordinateColumns),
		errors.Is(err, model.ErrNoValidRows),
		errors.Is(err, model.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNothingToExport):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrExportSinkDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError はエラーレスポンスを返す
func respondError(c *gin.Context, message string, err error) {
	c.JSON(statusFor(err), gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

// ValidationError はバリデーションエラーを表す
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
