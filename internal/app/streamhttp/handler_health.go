package streamhttp

import (
	"net/http"

	"github.com/sir_venger/vidstream/pkg/streamproto"
)

// health возвращает агрегированную статистику по данным хранилища.
func (a *Server) health(w http.ResponseWriter, r *http.Request) {
	usage, err := a.Store.Usage()
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, streamproto.HealthResponse{
		OK:         true,
		Files:      usage.Files,
		TotalBytes: usage.TotalBytes,
	})
}
