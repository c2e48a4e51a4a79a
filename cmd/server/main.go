package main

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"gstrecon/internal/config"
	"gstrecon/internal/handler"
	"gstrecon/internal/port"
	"gstrecon/internal/recon"
	"gstrecon/internal/repository/noop"
	"gstrecon/internal/repository/postgres"
	"gstrecon/internal/router"
	"gstrecon/internal/service"
	"gstrecon/internal/session"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// The run archive is optional; without a database completed runs are
	// logged and discarded.
	var db *sqlx.DB
	var runRepo port.RunRepository
	if cfg.DB.Enabled {
		db, err = postgres.NewDB(&cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		runRepo = postgres.NewRunRepo(db)
	} else {
		runRepo = noop.NewRunRepo()
		log.Println("run archive disabled; completed runs will not be persisted")
	}

	engine := recon.NewEngine(recon.Config{
		AmountEpsilon:   decimal.NewFromFloat(cfg.Recon.AmountEpsilon),
		MajorDeltaRatio: decimal.NewFromFloat(cfg.Recon.MajorDeltaRatio),
		DateWindowDays:  cfg.Recon.DateWindowDays,
		Workers:         cfg.Recon.Workers,
	})

	sessions := session.NewStore()
	reconSvc := service.NewReconService(sessions, engine, runRepo)

	sessionH := handler.NewSessionHandler(reconSvc)
	reconH := handler.NewReconHandler(reconSvc)
	exportH := handler.NewExportHandler(reconSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(cfg.CORS.AllowedOrigins, sessionH, reconH, exportH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
