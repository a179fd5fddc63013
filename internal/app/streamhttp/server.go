package streamhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"

	"github.com/sir_venger/vidstream/internal/logging"
	"github.com/sir_venger/vidstream/internal/metrics"
	"github.com/sir_venger/vidstream/internal/storage"
	"github.com/sir_venger/vidstream/internal/usecase/streamsvc"
	"github.com/sir_venger/vidstream/pkg/streamproto"
)

// Maintainer — служебные операции хранилища: статистика и сбор мусора.
type Maintainer interface {
	Usage() (storage.Usage, error)
	Sweep(ttl time.Duration) (int, error)
}

type Deps struct {
	Streams        streamsvc.Service
	Store          Maintainer
	Logger         hclog.Logger
	Observer       *metrics.Observer
	RoutePrefix    string
	MaxUploadBytes int64
	GCTTL          time.Duration
	RateLimit      RateLimitConfig
}

// Server serves the video streaming HTTP API.
type Server struct {
	Deps
	log    hclog.Logger
	router http.Handler
}

// New собирает HTTP-обработчик сервиса.
func New(deps Deps) *Server {
	if deps.RoutePrefix == "" {
		deps.RoutePrefix = streamproto.DefaultRoutePrefix
	}
	srv := &Server{
		Deps: deps,
		log:  logging.OrNop(deps.Logger).Named("streamhttp"),
	}
	srv.router = srv.routes()

	return srv
}

func (a *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// routes регистрирует обработчики видео, здоровья, GC и метрик.
func (a *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.observe)
	r.Use(middleware.Recoverer)

	r.Route(a.RoutePrefix, func(vr chi.Router) {
		vr.Use(rateLimit(a.RateLimit))
		vr.Post(streamproto.UploadPath, a.uploadVideo)
		vr.Get("/{key}", a.fetchVideo)
		vr.Head("/{key}", a.fetchVideo)
	})

	r.Get(streamproto.HealthPath, a.health)
	r.Post(streamproto.GCPath, a.gcOnce)
	r.Method(http.MethodGet, streamproto.MetricsPath, a.Observer.Handler())

	return r
}
