// Package streamproto описывает HTTP-протокол взаимодействия с сервисом стриминга видео.
package streamproto

// Пути и заголовки протокола.
const (
	DefaultRoutePrefix = "/api/videos"
	UploadPath         = "/upload"
	HealthPath         = "/health"
	GCPath             = "/admin/gc"
	MetricsPath        = "/metrics"

	HeaderRange        = "Range"
	HeaderContentRange = "Content-Range"
	HeaderAcceptRanges = "Accept-Ranges"
	AcceptRangesBytes  = "bytes"
)

// Поля multipart-формы загрузки.
const (
	FormVideo       = "video"
	FormTitle       = "title"
	FormDescription = "description"
	FormCategory    = "category"
	FormTags        = "tags"
	FormVisibility  = "visibility"
)

// UploadResponse — тело ответа на загрузку видео.
type UploadResponse struct {
	Success  bool           `json:"success"`
	Filename string         `json:"filename,omitempty"`
	Message  string         `json:"message"`
	Video    *UploadedVideo `json:"video,omitempty"`
}

// UploadedVideo — метаданные загруженного видео, которые эхом возвращаются клиенту.
type UploadedVideo struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Visibility  string   `json:"visibility"`
	Status      string   `json:"status"`
	UploadedAt  string   `json:"uploadedAt"`
	FilePath    string   `json:"filePath"`
	Size        int64    `json:"size"`
}

// HealthResponse — payload ответа /health.
type HealthResponse struct {
	OK         bool  `json:"ok"`
	Files      int   `json:"files"`
	TotalBytes int64 `json:"total_bytes"`
}
