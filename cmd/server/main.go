package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/smartcfo/invoice-insights/internal/config"
	"github.com/smartcfo/invoice-insights/internal/forecast"
	httpadapter "github.com/smartcfo/invoice-insights/internal/interfaces/http"
	"github.com/smartcfo/invoice-insights/internal/report"
	"github.com/smartcfo/invoice-insights/internal/repository"
	"github.com/smartcfo/invoice-insights/internal/service"
	"github.com/smartcfo/invoice-insights/pkg/database"
	"github.com/smartcfo/invoice-insights/pkg/utils"
)

func main() {
	// Local overrides before viper reads the environment
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting invoice insights service",
		zap.Int("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Path))

	if err := os.MkdirAll(cfg.Report.OutputDir, 0755); err != nil {
		logger.Fatal("Failed to create report directory", zap.Error(err))
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	invoiceRepo := repository.NewInvoiceRepository(db.DB, logger)

	forecastEngine := forecast.NewEngine(logger)
	insightsService := service.NewInsightsService(invoiceRepo, forecastEngine, logger)

	exporter := report.NewExcelExporter(
		insightsService,
		cfg.Analytics.TopVendorsLimit,
		cfg.Analytics.AnomalyThreshold,
		cfg.Analytics.ForecastHorizon,
		logger,
	)

	handlers := httpadapter.NewHandlers(
		insightsService,
		invoiceRepo,
		exporter,
		cfg.Report.OutputDir,
		httpadapter.Defaults{
			TopVendorsLimit:  cfg.Analytics.TopVendorsLimit,
			AnomalyThreshold: cfg.Analytics.AnomalyThreshold,
			ForecastHorizon:  cfg.Analytics.ForecastHorizon,
		},
		logger,
	)

	srv := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handlers, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
