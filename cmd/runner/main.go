package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"audittrack/escalation-runner/internal/api"
	"audittrack/escalation-runner/internal/config"
	"audittrack/escalation-runner/internal/email"
	"audittrack/escalation-runner/internal/escalation"
	"audittrack/escalation-runner/internal/security"
	"audittrack/escalation-runner/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := security.ValidateConfig(cfg); err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	db, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	var mailer email.Mailer
	if cfg.EmailWebhookURL != "" {
		mailer = email.NewWebhook(cfg.EmailWebhookURL)
	} else {
		mailer = email.NewLogMailer(logger)
	}

	passTimeout := time.Duration(cfg.PassTimeoutSec) * time.Second
	evaluator := escalation.New(db, db, db, mailer, logger,
		escalation.WithDedupWindow(time.Duration(cfg.DedupWindowHours)*time.Hour))

	r := chi.NewRouter()
	r.Route("/run-escalation", func(r chi.Router) {
		r.Post("/", api.RunEscalationHandler(evaluator, passTimeout, logger))
	})
	r.Post("/ingest", api.IngestHandler(db, logger))
	r.Get("/healthz", api.HealthHandler)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: passTimeout + 30*time.Second,
	}

	logger.Info("escalation runner listening", zap.String("addr", cfg.ListenAddr))
	log.Fatal(srv.ListenAndServe())
}
