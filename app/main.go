package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/link-comb/app/api"
	"github.com/lysyi3m/link-comb/app/cfg"
	"github.com/lysyi3m/link-comb/app/config"
	"github.com/lysyi3m/link-comb/app/feed"
	"github.com/lysyi3m/link-comb/app/tasks"
)

func main() {
	os.Exit(run())
}

func run() int {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if appCfg == nil {
		// Help was shown
		return 0
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting Link Comb", "version", appCfg.Version, "config", appCfg.ConfigFile)

	pipelineConfig, err := config.NewLoader(appCfg.ConfigFile).Load()
	if err != nil {
		slog.Error("Failed to load configuration", "path", appCfg.ConfigFile, "error", err)
		return 1
	}

	httpClient := &http.Client{
		Transport: http.DefaultTransport,
	}
	contentExtractor := feed.NewContentExtractor()
	generator := feed.NewGenerator(appCfg.Version)

	newTask := func() *tasks.BuildFeedTask {
		return tasks.NewBuildFeedTask(pipelineConfig, httpClient, contentExtractor, generator, appCfg.SelfLink())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !appCfg.Serve {
		return runOnce(ctx, newTask())
	}

	return serve(ctx, appCfg, pipelineConfig, func() tasks.TaskInterface { return newTask() })
}

func runOnce(ctx context.Context, task *tasks.BuildFeedTask) int {
	task.Start()
	if err := task.Execute(ctx); err != nil {
		slog.Error("Link feed generation failed", "error", err)
		return 1
	}

	slog.Info("Success! New feed created", "path", task.Report().OutputPath, "items", task.Report().ItemsWritten)
	return 0
}

func serve(ctx context.Context, appCfg *cfg.Cfg, pipelineConfig *config.PipelineConfig, newTask tasks.TaskFactory) int {
	scheduler := tasks.NewScheduler(newTask, appCfg.GetInterval())
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(scheduler, pipelineConfig.Output.Path, appCfg.Version)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "feed", appCfg.SelfLink(), "interval", appCfg.GetInterval())

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		slog.Info("Received shutdown signal")
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
		exitCode = 1
	}

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	return exitCode
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
