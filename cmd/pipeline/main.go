package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/richxcame/urban-mobility/internal/cleaning"
	"github.com/richxcame/urban-mobility/internal/forecast"
	"github.com/richxcame/urban-mobility/internal/ingest"
	"github.com/richxcame/urban-mobility/internal/observability"
	"github.com/richxcame/urban-mobility/internal/pipeline"
	"github.com/richxcame/urban-mobility/pkg/config"
	"github.com/richxcame/urban-mobility/pkg/database"
	"github.com/richxcame/urban-mobility/pkg/logger"
)

func main() {
	csvPath := flag.String("input", "data/trips.csv", "path to the raw trip CSV extract")
	migrationsPath := flag.String("migrations", "migrations", "path to the schema migrations directory")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load("pipeline")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Apply schema migrations before touching the store
	if err := database.RunMigrations(&cfg.Database, *migrationsPath); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to PostgreSQL
	pool, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(pool)
	logger.Info("Connected to PostgreSQL database")

	file, err := os.Open(*csvPath)
	if err != nil {
		logger.Fatal("Failed to open input file", zap.String("path", *csvPath), zap.Error(err))
	}
	defer file.Close()

	source, err := ingest.NewCSVSource(file)
	if err != nil {
		logger.Fatal("Failed to read input header", zap.Error(err))
	}

	engine, err := forecast.NewEngine(cfg.Pipeline.TrainSplitRatio)
	if err != nil {
		logger.Fatal("Failed to build forecast engine", zap.Error(err))
	}

	p := pipeline.New(
		source,
		ingest.NewRepository(pool),
		cleaning.NewRepository(pool),
		forecast.NewRepository(pool),
		cleaning.NewFilter(&cfg.Pipeline),
		engine,
		observability.NewMetrics(),
		&cfg.Pipeline,
	)

	summary, err := p.Run(context.Background())
	if err != nil {
		logger.Fatal("Pipeline run failed",
			zap.Int64("rows_stored", summary.Ingest.RowsStored),
			zap.Int64("clean_trips", summary.CleanTrips),
			zap.Error(err),
		)
	}
}
