// Package httperrors переводит доменные ошибки сервиса в HTTP-ответы.
package httperrors

import (
	"errors"
	"net/http"

	"github.com/sir_venger/vidstream/internal/models"
	"github.com/sir_venger/vidstream/pkg/byterange"
)

// Status возвращает HTTP-статус для ошибки.
func Status(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrRangeNotSatisfiable), errors.Is(err, models.ErrMalformedRange):
		return http.StatusRequestedRangeNotSatisfiable
	case errors.Is(err, models.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, models.ErrInvalidUpload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Write пишет ответ для ошибки. Детали внутренних ошибок наружу не отдаются.
func Write(w http.ResponseWriter, err error) {
	status := Status(err)
	switch status {
	case http.StatusNotFound:
		http.Error(w, "Video not found", status)
	case http.StatusRequestedRangeNotSatisfiable:
		var rangeErr *models.RangeError
		if errors.As(err, &rangeErr) {
			w.Header().Set("Content-Range", byterange.Unsatisfied(rangeErr.Size))
		}
		http.Error(w, http.StatusText(status), status)
	case http.StatusInternalServerError:
		http.Error(w, http.StatusText(status), status)
	default:
		http.Error(w, err.Error(), status)
	}
}
