package streamhttp

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sir_venger/vidstream/pkg/httperrors"
)

// requireVideoKey достаёт ключ ресурса из path-параметра и отвечает 404, если он пустой или битый.
// Санитизация относительно корня хранилища остаётся за хранилищем.
func (a *Server) requireVideoKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key, err := videoKey(r)
	if err != nil {
		http.Error(w, "Video not found", http.StatusNotFound)
		return "", false
	}

	return key, true
}

// videoKey декодирует параметр: chi отдаёт сырой сегмент, если в пути есть %-последовательности.
func videoKey(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "key")
	if raw == "" {
		return "", errors.New("empty key")
	}

	key, err := url.PathUnescape(raw)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(key) == "" {
		return "", errors.New("empty key")
	}

	return key, nil
}

// writeError отвечает по ошибке сервиса; внутренние ошибки логируются, остальные пишутся только в debug.
func (a *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httperrors.Status(err)
	if status >= http.StatusInternalServerError {
		a.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		a.log.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	httperrors.Write(w, err)
}
