package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signal-fusion-ranker/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to config file")
	scheduled := flag.Bool("schedule", false, "run on the configured cron schedule instead of once")
	flag.Parse()

	if err := initializeSystem(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = logger.Shutdown(shutdownCtx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx, *configPath)
	if err != nil {
		return 1
	}

	newsSvc := initializeNews(ctx, cfg)
	defer newsSvc.Close()

	rec := initializeRecorder(ctx, cfg)
	defer rec.Close()

	p := &pipeline{
		universe: initializeUniverse(ctx, cfg),
		ranker:   initializeEngine(cfg, initializePrices(ctx, cfg), newsSvc),
		sink:     initializeSinks(ctx, cfg),
		recorder: rec,
		news:     newsSvc,
		now:      time.Now,
	}

	if !*scheduled && !cfg.Schedule.Enabled {
		if err := p.Run(ctx); err != nil {
			logger.ErrorWithErr(ctx, "Ranking run failed", err)
			return 1
		}
		return 0
	}

	c, err := schedule(ctx, cfg.Schedule.Cron, p)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to schedule ranking", err, "cron", cfg.Schedule.Cron)
		return 1
	}
	c.Start()
	logger.Info(ctx, "Scheduler started", "cron", cfg.Schedule.Cron)

	if os.Getenv("RUN_ON_START") == "true" {
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.ErrorWithErr(ctx, "Startup run failed", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info(ctx, "Shutdown signal received, stopping...")
	<-c.Stop().Done()
	return 0
}
