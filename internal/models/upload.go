package models

import "time"

// UploadRequest — метаданные формы загрузки, которые приходят вместе с файлом.
type UploadRequest struct {
	Title       string
	Description string
	Category    string
	Tags        []string
	Visibility  string
	FileName    string
	ContentType string
}

// UploadResult возвращается после успешной загрузки и содержит ключевые метаданные.
type UploadResult struct {
	Key        string
	Size       int64
	Request    UploadRequest
	UploadedAt time.Time
}
