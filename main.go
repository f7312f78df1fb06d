package main

import (
	"context"
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"github.com/yumyai/genegraph/internal/config"
	"github.com/yumyai/genegraph/logger"
	ggdb "github.com/yumyai/genegraph/pkg/db"
	"github.com/yumyai/genegraph/pkg/handler"

	_ "modernc.org/sqlite"
)

const VERSION = "0.1.0"

func main() {

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Establish logger
	if err := logger.InitLogger(logger.ParseLevel(cfg.LogLevel)); err != nil {
		panic(err)
	}
	defer logger.Sync() // Make sure that the buffered is flushed.

	if !cfg.DotEnv {
		logger.Warn("No .env found, using local environment")
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		logger.Fatal("Cannot prepare data directory", zap.String("data", cfg.DataDir), zap.Error(err))
	}

	// Connect to db
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		logger.Fatal("Cannot open database", zap.String("DB_LOC", dbPath), zap.Error(err))
	}
	defer db.Close()

	store, err := ggdb.NewGraphStore(context.Background(), db)
	if err != nil {
		logger.Fatal("Cannot prepare graph store", zap.Error(err))
	}

	gctx := handler.NewGraphContext(store, cfg.ModelConfig())
	gctx.MaxMemory = cfg.MaxMemory()

	logger.Info("Start:", zap.String("Version", VERSION))
	logger.Info("Open database on", zap.String("DB_LOC", dbPath))
	logger.Info("Pipeline settings",
		zap.Float64("cutoff", cfg.Cutoff),
		zap.Bool("parallel_domains", cfg.ParallelDomains),
		zap.Bool("allow_partial_processing", cfg.AllowPartialProcessing))

	router := handler.NewRouter(gctx, logger.L())

	logger.Info("Server starting", zap.String("addr", cfg.Addr))
	httpErr := http.ListenAndServe(cfg.Addr, router)
	if httpErr != nil {
		logger.Error("Error starting server:", zap.String("error message", httpErr.Error()))
	}
}
