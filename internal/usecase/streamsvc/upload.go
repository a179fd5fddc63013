package streamsvc

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sir_venger/vidstream/internal/models"
)

const (
	defaultUploadExt = "mp4"
	maxSafeTitleLen  = 100
)

var (
	unsafeTitleChars = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)
	extPattern       = regexp.MustCompile(`^[a-z0-9]{1,10}$`)
)

// Upload проверяет форму, выбирает ключ вида <title>_<id>.<ext> и публикует файл в хранилище.
func (s *Streams) Upload(ctx context.Context, req models.UploadRequest, r io.Reader) (models.UploadResult, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return models.UploadResult{}, fmt.Errorf("%w: video file and title are required", models.ErrInvalidUpload)
	}
	if !isVideoType(req.ContentType) {
		return models.UploadResult{}, fmt.Errorf("%w: only video files are allowed, got %q", models.ErrInvalidUpload, req.ContentType)
	}

	key := fmt.Sprintf("%s_%s.%s", safeTitle(req.Title), s.NewID(), uploadExt(req.FileName))
	n, err := s.Store.Put(ctx, key, r)
	if err != nil {
		return models.UploadResult{}, err
	}

	return models.UploadResult{
		Key:        key,
		Size:       n,
		Request:    req,
		UploadedAt: s.Now().UTC(),
	}, nil
}

func safeTitle(title string) string {
	out := unsafeTitleChars.ReplaceAllString(title, "_")
	if len(out) > maxSafeTitleLen {
		out = out[:maxSafeTitleLen]
	}
	return out
}

// uploadExt берёт расширение из исходного имени файла, иначе mp4.
func uploadExt(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.TrimSpace(name)), "."))
	if !extPattern.MatchString(ext) {
		return defaultUploadExt
	}
	return ext
}

func isVideoType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "video/")
}
