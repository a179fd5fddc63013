package models

// DefaultContentType отдаётся для всех ресурсов, если конфигурация не задаёт иное.
const DefaultContentType = "video/mp4"

// MediaResource описывает неизменяемый бинарный объект в хранилище.
type MediaResource struct {
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}
