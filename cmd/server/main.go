package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/youruser/photobooth/internal/api"
	"github.com/youruser/photobooth/internal/composite"
	"github.com/youruser/photobooth/internal/config"
	imagepkg "github.com/youruser/photobooth/internal/image"
	"github.com/youruser/photobooth/internal/logger"
	"github.com/youruser/photobooth/internal/metrics"
	"github.com/youruser/photobooth/internal/output"
	"github.com/youruser/photobooth/internal/template"
	"github.com/youruser/photobooth/internal/util"
)

func main() {
	cfg, err := config.Load(os.Getenv("PHOTOBOOTH_CONFIG"))
	if err != nil {
		log.Fatal(err)
	}
	zl, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync() //nolint:errcheck

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	if err := util.EnsureDir(cfg.Paths.Captured); err != nil {
		return fmt.Errorf("creating capture directory: %w", err)
	}

	// Templates are not preloaded, each request reads them, but an empty
	// store at startup is worth a warning.
	store := template.NewStore(cfg.Paths.Templates, zl.Named("templates"))
	if names, err := store.List(); err != nil || len(names) == 0 {
		zl.Warn("no templates found", zap.String("dir", cfg.Paths.Templates), zap.Error(err))
	} else {
		zl.Info("templates available", zap.Strings("templates", names))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := composite.NewService(
		store,
		imagepkg.NewLoader(cfg.Paths.Captured, cfg.Compose.DecodeTimeout),
		output.NewWriter(cfg.Paths.Captured, "captured", cfg.Compose.JPEGQuality, zl.Named("output")),
		metrics.New(reg),
		zl.Named("composite"),
		composite.Options{DefaultTemplate: cfg.Compose.DefaultTemplate},
	)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery(), api.RequestLogger(zl.Named("http")))
	api.RegisterRoutes(r, api.Deps{
		Service:     svc,
		Templates:   store,
		CapturedDir: cfg.Paths.Captured,
		QRBaseURL:   cfg.QR.BaseURL,
		QRSize:      cfg.QR.Size,
		Gatherer:    reg,
		Log:         zl.Named("api"),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		zl.Info("starting server", zap.String("addr", "http://localhost"+srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
