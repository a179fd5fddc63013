package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/sir_venger/vidstream/internal/app/streamhttp"
	"github.com/sir_venger/vidstream/internal/config"
	"github.com/sir_venger/vidstream/internal/logging"
	"github.com/sir_venger/vidstream/internal/metrics"
	"github.com/sir_venger/vidstream/internal/storage"
	"github.com/sir_venger/vidstream/internal/usecase/streamsvc"
)

const shutdownTimeout = 15 * time.Second

// main инициализирует HTTP-сервис стриминга и обеспечивает корректное завершение по сигналу.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("streamd", "error", false).Error("load config", "error", err)
		os.Exit(1)
	}
	log := logging.New("streamd", cfg.LogLevel, cfg.LogJSON)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log hclog.Logger) error {
	store, err := storage.NewLocalStore(cfg.DataDir)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observer, err := metrics.NewObserver("", reg)
	if err != nil {
		return err
	}

	h := streamhttp.New(streamhttp.Deps{
		Streams: streamsvc.New(streamsvc.Deps{
			Store:       store,
			ContentType: cfg.ContentType,
		}),
		Store:          store,
		Logger:         log.Named("http"),
		Observer:       observer,
		RoutePrefix:    cfg.RoutePrefix,
		MaxUploadBytes: cfg.MaxUploadBytes,
		GCTTL:          cfg.GC.TTL(),
		RateLimit: streamhttp.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			Burst:             cfg.RateLimit.Burst,
		},
	})

	// WriteTimeout не задаём: длительность отдачи видео не ограничена, обрыв отлавливает сам транспорт.
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		log.Info("listening", "addr", cfg.ListenAddr, "data_dir", store.Root(), "prefix", cfg.RoutePrefix)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		// Фоновый GC незавершённых загрузок.
		return h.RunGC(egCtx, cfg.GC.Interval())
	})
	// Сценарий graceful shutdown при получении SIGTERM/SIGINT или падении соседней горутины.
	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		log.Info("shutdown complete")
		return nil
	})

	return eg.Wait()
}
