package streamhttp

import (
	"context"
	"net/http"
	"time"
)

const defaultGCTTL = 24 * time.Hour

// gcOnce вручную запускает сбор зависших незавершённых загрузок.
func (a *Server) gcOnce(w http.ResponseWriter, r *http.Request) {
	if _, err := a.sweep(); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunGC периодически чистит хранилище, пока не отменён ctx.
func (a *Server) RunGC(ctx context.Context, every time.Duration) error {
	if every <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := a.sweep(); err != nil {
				a.log.Warn("gc sweep failed", "error", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (a *Server) sweep() (int, error) {
	ttl := a.GCTTL
	if ttl <= 0 {
		ttl = defaultGCTTL
	}

	removed, err := a.Store.Sweep(ttl)
	if err != nil {
		return 0, err
	}
	a.Observer.RecordSweep(removed)
	if removed > 0 {
		a.log.Info("gc removed stale uploads", "count", removed, "ttl", ttl)
	}

	return removed, nil
}
