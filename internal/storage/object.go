// Package storage реализует бэкенды хранения медиа-ресурсов: каталог на локальном
// диске и in-memory вариант для тестов. Сервис стриминга только читает объекты;
// запись идёт через Put из пайплайна загрузки.
package storage

import (
	"io"
)

// Object — открытый ресурс: позиционное чтение и размер, зафиксированный на момент открытия.
// Каждый запрос получает собственный Object, поэтому параллельные чтения не делят состояние.
type Object interface {
	io.ReaderAt
	io.Closer
	Size() int64
}

// Usage — агрегированная статистика по содержимому хранилища.
type Usage struct {
	Files      int   `json:"files"`
	TotalBytes int64 `json:"total_bytes"`
}
