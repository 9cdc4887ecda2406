package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dealdesk/internal/filestore"
	negotiationHandler "dealdesk/internal/negotiation/handler"
	negmetrics "dealdesk/internal/negotiation/metrics"
	"dealdesk/internal/negotiation/service"
	feedbackStore "dealdesk/internal/negotiation/store/feedback"
	submissionStore "dealdesk/internal/negotiation/store/submission"
	"dealdesk/internal/notify"
	"dealdesk/internal/platform/config"
	"dealdesk/internal/platform/httpserver"
	"dealdesk/internal/platform/logger"
	"dealdesk/internal/platform/postgres"
	platformredis "dealdesk/internal/platform/redis"
	"dealdesk/internal/report"
	httptransport "dealdesk/internal/transport/http"
	"dealdesk/pkg/platform/middleware/auth"
)

// main wires dependencies and keeps the server lifecycle small. Each
// infrastructure backend falls back to an in-process implementation when its
// URL is not configured, so a bare binary is a working single-node deployment.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	var (
		submissions service.SubmissionStore
		feedbacks   service.FeedbackStore
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if _, err := pool.Exec(ctx, submissionStore.Schema); err != nil {
			log.Error("submission schema setup failed", "error", err)
			os.Exit(1)
		}
		if _, err := pool.Exec(ctx, feedbackStore.Schema); err != nil {
			log.Error("feedback schema setup failed", "error", err)
			os.Exit(1)
		}
		submissions = submissionStore.NewPostgres(pool)
		feedbacks = feedbackStore.NewPostgres(pool)
		log.Info("using postgres stores")
	} else {
		submissions = submissionStore.NewInMemory()
		feedbacks = feedbackStore.NewInMemory()
		log.Info("using in-memory stores")
	}

	var files service.FileStore
	if cfg.RedisURL != "" {
		client, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		files = filestore.NewRedis(client.Client)
		log.Info("using redis file store")
	} else {
		files = filestore.NewMemory()
		log.Info("using in-memory file store")
	}

	var notifier notify.Notifier
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := notify.NewKafka(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		notifier = kafka
		log.Info("using kafka notifier", "topic", cfg.KafkaTopic)
	} else {
		notifier = notify.NewMemory()
		log.Info("using in-memory notifier")
	}

	svc := service.New(submissions, feedbacks,
		service.WithLogger(log),
		service.WithMetrics(negmetrics.New()),
		service.WithNotifier(notifier),
		service.WithFileStore(files),
		service.WithReportGenerator(report.NewCSV()),
	)

	handler := negotiationHandler.New(svc, log)
	validator := auth.NewHMACValidator([]byte(cfg.JWTSigningKey))
	router := httptransport.NewRouter(handler, validator, log)

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting dealdesk", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
