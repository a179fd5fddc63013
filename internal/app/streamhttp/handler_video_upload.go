package streamhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sir_venger/vidstream/internal/models"
	"github.com/sir_venger/vidstream/pkg/httperrors"
	"github.com/sir_venger/vidstream/pkg/streamproto"
)

// Часть формы сверх этого объёма multipart сбрасывает во временные файлы.
const uploadMemoryLimit = 32 << 20

// uploadVideo принимает multipart-форму и полностью делегирует сохранение сервису стриминга.
func (a *Server) uploadVideo(w http.ResponseWriter, r *http.Request) {
	if a.MaxUploadBytes > 0 {
		if r.ContentLength > a.MaxUploadBytes {
			a.writeUploadError(w, r, fmt.Errorf("%w: limit %d bytes", models.ErrUploadTooLarge, a.MaxUploadBytes))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	}

	if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = fmt.Errorf("%w: limit %d bytes", models.ErrUploadTooLarge, tooLarge.Limit)
		} else {
			err = fmt.Errorf("%w: %v", models.ErrInvalidUpload, err)
		}
		a.writeUploadError(w, r, err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(streamproto.FormVideo)
	if err != nil {
		a.writeUploadError(w, r, fmt.Errorf("%w: video file and title are required", models.ErrInvalidUpload))
		return
	}
	defer file.Close()

	req := models.UploadRequest{
		Title:       r.FormValue(streamproto.FormTitle),
		Description: r.FormValue(streamproto.FormDescription),
		Category:    r.FormValue(streamproto.FormCategory),
		Tags:        splitTags(r.FormValue(streamproto.FormTags)),
		Visibility:  r.FormValue(streamproto.FormVisibility),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}

	res, err := a.Streams.Upload(r.Context(), req, file)
	a.Observer.RecordUpload(res.Size, err)
	if err != nil {
		a.writeUploadError(w, r, err)
		return
	}
	a.log.Info("video uploaded", "key", res.Key, "size", res.Size, "title", res.Request.Title)

	writeJSON(w, http.StatusOK, streamproto.UploadResponse{
		Success:  true,
		Filename: res.Key,
		Message:  "Video uploaded and saved successfully",
		Video: &streamproto.UploadedVideo{
			Title:       res.Request.Title,
			Description: res.Request.Description,
			Category:    res.Request.Category,
			Tags:        res.Request.Tags,
			Visibility:  res.Request.Visibility,
			Status:      "saved",
			UploadedAt:  res.UploadedAt.Format(time.RFC3339Nano),
			FilePath:    a.RoutePrefix + "/" + res.Key,
			Size:        res.Size,
		},
	})
}

// writeUploadError отвечает JSON-ом {success:false}; причины внутренних ошибок наружу не отдаются.
func (a *Server) writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	status := httperrors.Status(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		a.log.Error("upload failed", "path", r.URL.Path, "error", err)
		msg = "Upload failed"
	} else {
		a.log.Debug("upload rejected", "status", status, "error", err)
	}

	writeJSON(w, status, streamproto.UploadResponse{Success: false, Message: msg})
}

// splitTags разбирает список тегов через запятую; пустой ввод даёт пустой, а не nil, срез.
func splitTags(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
