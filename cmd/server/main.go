package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	httpadapter "hirewire/internal/adapters/http"
	pg "hirewire/internal/adapters/postgres"
	"hirewire/internal/bus"
	"hirewire/internal/config"
	"hirewire/internal/ports"
	boardsvc "hirewire/internal/services/board"
	pipesvc "hirewire/internal/services/pipeline"
	scoresvc "hirewire/internal/services/scoring"
	"hirewire/internal/workers/rescorerunner"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Printf("warning: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required for Postgres adapters")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pg.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("migrate error: %v", err)
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	defer db.Close()

	// Wire repositories to services (ports)
	var _ ports.ApplicationRepository = db
	var _ ports.StageRepository = db
	var _ ports.ScoreRepository = db
	var _ ports.RescoreJobRepository = db

	invalidations := bus.New()
	pipe := pipesvc.New(db, db, invalidations)
	boards := boardsvc.New(db, db, db)
	scoring := scoresvc.New(db, db, db, scoresvc.CriteriaScorer{}, invalidations)

	srv := httpadapter.New(pipe, boards, scoring, db, db, db)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	// Optional background batch-rescore workers
	if cfg.RescoreWorkers > 0 {
		processor := rescorerunner.BatchProcessor{Apps: db, Scoring: scoring, Jobs: db}
		go rescorerunner.Run(ctx, db, processor, cfg.RescoreWorkers, 500*time.Millisecond)
		log.Printf("rescore workers started: %d", cfg.RescoreWorkers)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- http.ListenAndServe(cfg.ListenAddr, r) }()
	log.Printf("listening on %s", cfg.ListenAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Printf("shutting down on %s", sig)
		cancel()
		time.Sleep(300 * time.Millisecond)
	case err := <-errCh:
		log.Fatal(fmt.Errorf("server error: %w", err))
	}
}
