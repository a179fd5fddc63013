// Package byterange разбирает заголовок Range (единица bytes) и сводит его к одному
// закрытому диапазону [Start, End] внутри ресурса известного размера.
//
// Поддерживается только один непрерывный диапазон на запрос: multi-range
// (bytes=0-10,20-30) считается синтаксической ошибкой, а не обрезается молча.
package byterange

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const Unit = "bytes"

var (
	ErrMalformed     = errors.New("malformed range")
	ErrUnsatisfiable = errors.New("range not satisfiable")
)

var specPattern = regexp.MustCompile(`^(\d*)-(\d*)$`)

// Range — закрытый диапазон смещений, обе границы включительно.
type Range struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Length возвращает число байт в диапазоне.
func (r Range) Length() int64 {
	return r.End - r.Start + 1
}

// String форматирует диапазон как значение заголовка запроса Range.
func (r Range) String() string {
	return fmt.Sprintf("%s=%d-%d", Unit, r.Start, r.End)
}

// ContentRange форматирует значение заголовка ответа Content-Range.
func (r Range) ContentRange(total int64) string {
	return fmt.Sprintf("%s %d-%d/%d", Unit, r.Start, r.End, total)
}

// Unsatisfied — значение Content-Range для ответа 416.
func Unsatisfied(total int64) string {
	return fmt.Sprintf("%s */%d", Unit, total)
}

// Parse разбирает значение заголовка Range относительно ресурса размером size.
//
//	bytes=S-E  -> [S, min(E, size-1)]
//	bytes=S-   -> [S, size-1]
//	bytes=-N   -> последние N байт (N > size отдаёт весь ресурс)
//
// Нарушение грамматики возвращает ErrMalformed, диапазон вне ресурса или S > E возвращает ErrUnsatisfiable.
func Parse(header string, size int64) (Range, error) {
	u, spec, ok := strings.Cut(strings.TrimSpace(header), "=")
	if !ok || !strings.EqualFold(strings.TrimSpace(u), Unit) {
		return Range{}, fmt.Errorf("%w: %q", ErrMalformed, header)
	}

	m := specPattern.FindStringSubmatch(strings.TrimSpace(spec))
	if m == nil {
		return Range{}, fmt.Errorf("%w: %q", ErrMalformed, header)
	}
	startStr, endStr := m[1], m[2]

	switch {
	case startStr == "" && endStr == "":
		return Range{}, fmt.Errorf("%w: %q", ErrMalformed, header)
	case startStr == "":
		suffix, err := parseOffset(endStr)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrMalformed, header)
		}
		if suffix == 0 || size <= 0 {
			return Range{}, fmt.Errorf("%w: %q for size %d", ErrUnsatisfiable, header, size)
		}
		suffix = min(suffix, size)
		return Range{Start: size - suffix, End: size - 1}, nil
	}

	start, err := parseOffset(startStr)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrMalformed, header)
	}
	if start >= size {
		return Range{}, fmt.Errorf("%w: start %d beyond size %d", ErrUnsatisfiable, start, size)
	}

	end := size - 1
	if endStr != "" {
		e, err := parseOffset(endStr)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrMalformed, header)
		}
		if e < start {
			return Range{}, fmt.Errorf("%w: start %d after end %d", ErrUnsatisfiable, start, e)
		}
		// Конец за пределами ресурса не ошибка: обрезаем до последнего байта.
		end = min(e, end)
	}

	return Range{Start: start, End: end}, nil
}

// parseOffset принимает только то, что уже прошло specPattern; ошибка возможна лишь при переполнении int64.
func parseOffset(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// Split делит ресурс размером total на не более чем parts последовательных диапазонов.
func Split(total int64, parts int) []Range {
	if total <= 0 {
		return nil
	}
	if parts <= 0 {
		parts = 1
	}

	chunk := int64(math.Ceil(float64(total) / float64(parts)))
	if chunk <= 0 {
		chunk = 1
	}

	out := make([]Range, 0, parts)
	for start := int64(0); start < total; start += chunk {
		out = append(out, Range{Start: start, End: min(start+chunk, total) - 1})
	}

	return out
}
