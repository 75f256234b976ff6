package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/phani41/brain-tumor-detection-cnn/docs"
	"github.com/phani41/brain-tumor-detection-cnn/internal/cache"
	"github.com/phani41/brain-tumor-detection-cnn/internal/config"
	"github.com/phani41/brain-tumor-detection-cnn/internal/controller"
	"github.com/phani41/brain-tumor-detection-cnn/internal/handler"
	"github.com/phani41/brain-tumor-detection-cnn/internal/inference"
	"github.com/phani41/brain-tumor-detection-cnn/internal/logging"
	"github.com/phani41/brain-tumor-detection-cnn/internal/metrics"
	"github.com/phani41/brain-tumor-detection-cnn/internal/preview"
	"github.com/phani41/brain-tumor-detection-cnn/internal/render"
	"github.com/phani41/brain-tumor-detection-cnn/internal/service"
)

// @title Brain Tumor MRI Classification API
// @version 1.0
// @description Classifies brain MRI scans through the external inference service and returns display-ready results.
// @BasePath /api
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync()

	classifyService := service.NewClassifyService(logger, inference.NewClient(cfg.Inference, nil))

	if cfg.CacheEnable {
		redisCache := cache.NewRedisCache(
			cfg.RedisConfig.Addr,
			cfg.RedisConfig.Password,
			cfg.RedisConfig.DB,
			cfg.RedisConfig.TTL,
		)
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("redis is not reachable, results will not be cached until it is", zap.Error(err))
		}
		classifyService.SetCacheClient(redisCache)
		logger.Info("set redis as cache", zap.String("addr", cfg.RedisConfig.Addr))
	}

	previews := preview.NewStore()
	ctrl := controller.New(logger, previews, cfg.UI.BannerDismiss)
	janitorSchedule, err := cron.ParseStandard(cfg.UI.JanitorSchedule)
	if err != nil {
		logger.Fatal("janitor schedule", zap.Error(err))
	}
	go ctrl.RunJanitor(ctx, janitorSchedule, cfg.UI.SessionIdleTTL)

	opts := render.Options{
		LowConfidenceThreshold: cfg.UI.LowConfidenceThreshold,
		MaxEntries:             cfg.UI.MaxProbabilityEntries,
	}

	ui, err := handler.NewUIHandler(logger, classifyService, ctrl, previews, opts, cfg.Upload.MaxBytes)
	if err != nil {
		logger.Fatal("template error", zap.Error(err))
	}
	api := handler.NewAPIHandler(logger, classifyService, opts, cfg.Upload.MaxBytes)

	r := chi.NewRouter()
	r.Use([]func(http.Handler) http.Handler{
		middleware.RequestID,
		logging.Middleware(logger.Named("http")),
		middleware.Recoverer,
		middleware.Throttle(cfg.Server.ThrottleLimit),
		middleware.Timeout(cfg.Server.Timeout),
		metrics.Middleware,
	}...)

	handler.Mount(r, ui, api)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("server started",
			zap.String("port", cfg.Server.Port),
			zap.String("inference", cfg.Inference.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server stopped", zap.Int("sessions_dropped", ctrl.Sessions()))
}
