package streamhttp

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sir_venger/vidstream/pkg/streamproto"
)

// fetchVideo обслуживает GET и HEAD: целиком (200) или один диапазон (206).
func (a *Server) fetchVideo(w http.ResponseWriter, r *http.Request) {
	key, ok := a.requireVideoKey(w, r)
	if !ok {
		return
	}

	// Несколько заголовков Range склеиваем через запятую: это multi-range, и парсер его отвергнет.
	rangeHeader := strings.Join(r.Header.Values(streamproto.HeaderRange), ",")

	res, err := a.Streams.Serve(r.Context(), key, rangeHeader)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	defer res.Body.Close()

	h := w.Header()
	h.Set("Content-Type", res.Resource.ContentType)
	h.Set(streamproto.HeaderAcceptRanges, streamproto.AcceptRangesBytes)
	h.Set("Content-Length", strconv.FormatInt(res.ContentLength(), 10))

	status := http.StatusOK
	if res.Partial {
		h.Set(streamproto.HeaderContentRange, res.Range.ContentRange(res.Resource.Size))
		status = http.StatusPartialContent
	}
	w.WriteHeader(status)

	if r.Method == http.MethodHead {
		return
	}

	// Заголовки уже ушли: статус не поменять, клиент увидит обрыв по недоданному Content-Length.
	if _, err = io.Copy(w, res.Body); err != nil {
		if r.Context().Err() != nil {
			a.log.Debug("client went away", "key", key, "error", err)
			return
		}
		a.log.Error("stream interrupted", "key", key, "range", rangeHeader, "error", err)
	}
}
