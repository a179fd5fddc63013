package streamsvc

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sir_venger/vidstream/internal/models"
	"github.com/sir_venger/vidstream/internal/storage"
	"github.com/sir_venger/vidstream/pkg/byterange"
)

// StreamResult — готовый к отдаче ресурс или его окно. Body обязан быть закрыт вызывающим.
type StreamResult struct {
	Resource models.MediaResource
	Partial  bool
	Range    byterange.Range
	Body     io.ReadCloser
}

// ContentLength возвращает длину тела ответа.
func (r *StreamResult) ContentLength() int64 {
	if r.Partial {
		return r.Range.Length()
	}
	return r.Resource.Size
}

// Serve открывает ресурс и, если задан rangeHeader, ограничивает тело одним диапазоном.
// Пустой rangeHeader означает отсутствие заголовка Range.
func (s *Streams) Serve(ctx context.Context, key, rangeHeader string) (*StreamResult, error) {
	obj, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, err
	}

	res := &StreamResult{
		Resource: models.MediaResource{
			Key:         key,
			Size:        obj.Size(),
			ContentType: s.ContentType,
		},
		Range: byterange.Range{Start: 0, End: obj.Size() - 1},
	}

	if rangeHeader != "" {
		rng, err := byterange.Parse(rangeHeader, res.Resource.Size)
		if err != nil {
			_ = obj.Close()
			if errors.Is(err, byterange.ErrMalformed) || errors.Is(err, byterange.ErrUnsatisfiable) {
				return nil, &models.RangeError{Size: res.Resource.Size, Err: err}
			}
			return nil, err
		}
		res.Partial = true
		res.Range = rng
	}

	res.Body = &sectionBody{
		SectionReader: io.NewSectionReader(obj, res.Range.Start, res.ContentLength()),
		obj:           obj,
		key:           key,
	}

	return res, nil
}

// sectionBody читает ограниченное окно объекта и закрывает объект вместе с собой.
type sectionBody struct {
	*io.SectionReader
	obj storage.Object
	key string
}

func (b *sectionBody) Read(p []byte) (int, error) {
	n, err := b.SectionReader.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("read %s: %w", b.key, err)
	}
	return n, err
}

func (b *sectionBody) Close() error {
	return b.obj.Close()
}
