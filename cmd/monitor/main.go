package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gregtusar/spreadwatch/api"
	"github.com/gregtusar/spreadwatch/internal/config"
	"github.com/gregtusar/spreadwatch/pkg/mexc"
	"github.com/gregtusar/spreadwatch/pkg/monitor"
	"github.com/gregtusar/spreadwatch/pkg/quanto"
	"github.com/gregtusar/spreadwatch/pkg/registry"
	"github.com/gregtusar/spreadwatch/pkg/telegram"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	logger  *logrus.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "spreadwatch",
		Short: "Cross-venue crypto spread monitor",
		Long:  `Polls MEXC perpetual futures and Quanto order books, tracks the percentage spread per pair and alerts Telegram when it widens past a threshold`,
		Run:   runMonitor,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runMonitor(cmd *cobra.Command, args []string) {
	// Initialize logger
	logger = logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load .env for local development, then configuration
	_ = godotenv.Load()
	cfg, err := config.Load(cfgFile)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Set log level
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		logger.WithError(err).Error("Invalid log level, using INFO")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.Logging.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Venue clients
	mexcClient := mexc.NewClient(cfg.MEXC.APIKey, cfg.MEXC.APISecret, cfg.MEXC.BaseURL)
	quantoClient := quanto.NewClient(cfg.Quanto.BaseURL, time.Duration(cfg.Quanto.Timeout)*time.Second)

	// Pair registry, seeded from configuration on first run
	pairs, err := registry.Load(cfg.Monitor.PairsFile, cfg.Monitor.Pairs, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load pair registry")
	}

	// Telegram notifier, no-op without credentials
	notifier := telegram.NewNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID, logger)
	if !notifier.Enabled() {
		logger.Warn("Telegram credentials not configured, alerts will only be logged")
	}

	// Create and start the spread monitor
	mon := monitor.New(monitor.Config{
		PollInterval:    time.Duration(cfg.Monitor.PollInterval) * time.Second,
		Concurrency:     cfg.Monitor.Concurrency,
		SpreadThreshold: cfg.Monitor.SpreadThreshold,
		DiscoveryLimit:  cfg.Monitor.DiscoveryLimit,
	}, mexcClient, quantoClient, pairs, notifier, logger)

	if err := mon.Start(ctx, mexcClient); err != nil {
		logger.WithError(err).Fatal("Failed to start spread monitor")
	}

	// Start API server
	apiServer := api.NewServer(mon, pairs, logger, fmt.Sprintf("%d", cfg.Server.Port),
		time.Duration(cfg.Server.StreamInterval)*time.Second)
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.WithError(err).Fatal("Failed to start API server")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Spread monitor is running. Press Ctrl+C to stop.")

	<-sigChan
	logger.Info("Received shutdown signal")

	// Graceful shutdown
	mon.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("API server shutdown failed")
	}

	logger.Info("Spread monitor stopped")
}
