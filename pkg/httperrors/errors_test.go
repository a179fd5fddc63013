package httperrors

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sir_venger/vidstream/internal/models"
)

func TestWrite(t *testing.T) {
	cases := []struct {
		name         string
		err          error
		status       int
		contentRange string
		body         string
	}{
		{name: "not found", err: fmt.Errorf("%w: clip.mp4", models.ErrNotFound), status: http.StatusNotFound, body: "Video not found\n"},
		{name: "unsatisfiable", err: &models.RangeError{Size: 1000, Err: models.ErrRangeNotSatisfiable}, status: http.StatusRequestedRangeNotSatisfiable, contentRange: "bytes */1000"},
		{name: "malformed", err: &models.RangeError{Size: 42, Err: models.ErrMalformedRange}, status: http.StatusRequestedRangeNotSatisfiable, contentRange: "bytes */42"},
		{name: "invalid upload", err: fmt.Errorf("%w: title is required", models.ErrInvalidUpload), status: http.StatusBadRequest, body: "invalid upload: title is required\n"},
		{name: "too large", err: models.ErrUploadTooLarge, status: http.StatusRequestEntityTooLarge},
		{name: "internal", err: errors.New("disk on fire"), status: http.StatusInternalServerError, body: "Internal Server Error\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Write(rec, tc.err)

			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, tc.contentRange, rec.Header().Get("Content-Range"))
			if tc.body != "" {
				require.Equal(t, tc.body, rec.Body.String())
			}
		})
	}
}
