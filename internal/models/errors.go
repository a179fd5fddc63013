package models

import (
	"errors"
	"fmt"

	"github.com/sir_venger/vidstream/pkg/byterange"
)

var (
	ErrNotFound            = errors.New("video not found")
	ErrMalformedRange      = byterange.ErrMalformed
	ErrRangeNotSatisfiable = byterange.ErrUnsatisfiable
	ErrInvalidUpload       = errors.New("invalid upload")
	ErrUploadTooLarge      = errors.New("upload too large")
)

// RangeError несёт полный размер ресурса, чтобы клиент мог узнать допустимые границы
// через заголовок Content-Range: bytes */<size>.
type RangeError struct {
	Size int64
	Err  error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%v (size %d)", e.Err, e.Size)
}

func (e *RangeError) Unwrap() error {
	return e.Err
}

// Is сводит и синтаксические, и граничные ошибки к ErrRangeNotSatisfiable: наружу обе отдаются как 416.
func (e *RangeError) Is(target error) bool {
	return target == ErrRangeNotSatisfiable
}
