package streamsvc

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/sir_venger/vidstream/internal/models"
	"github.com/sir_venger/vidstream/internal/storage"
)

type (
	// Store — бэкенд хранения: открытие ресурса на чтение и публикация нового.
	Store interface {
		Open(ctx context.Context, key string) (storage.Object, error)
		Put(ctx context.Context, key string, r io.Reader) (int64, error)
	}

	// Service объединяет выдачу ресурсов по диапазонам и приём загрузок.
	Service interface {
		Serve(ctx context.Context, key, rangeHeader string) (*StreamResult, error)
		Upload(ctx context.Context, req models.UploadRequest, r io.Reader) (models.UploadResult, error)
	}
)

type Deps struct {
	Store       Store
	ContentType string
	NewID       func() string
	Now         func() time.Time
}

type Streams struct {
	Deps
}

// New конструирует сервис стриминга с заданными зависимостями.
func New(deps Deps) *Streams {
	if deps.ContentType == "" {
		deps.ContentType = models.DefaultContentType
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Streams{Deps: deps}
}

var _ Service = (*Streams)(nil)
