package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/robfig/cron"
	"github.com/spf13/cobra"

	config "github.com/sheetcast/sheetcast/configs"
	"github.com/sheetcast/sheetcast/internal/api/handlers"
	"github.com/sheetcast/sheetcast/internal/jobs"
	"github.com/sheetcast/sheetcast/internal/repository"
	"github.com/sheetcast/sheetcast/internal/runlock"
	"github.com/sheetcast/sheetcast/internal/service"
)

type app struct {
	cfg         *config.Config
	coordinator *jobs.Coordinator
	refreshJob  *jobs.TokenRefreshJob
	history     *jobs.RunHistory
	cache       repository.CacheRepository
}

func buildApp(ctx context.Context) (*app, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	rowRepo, err := repository.NewSheetRowRepository(ctx, *cfg)
	if err != nil {
		return nil, err
	}

	tokens := repository.NewFileTokenRepository(cfg.TokenFilePath)
	cache := repository.NewFileCacheRepository(cfg.CacheFilePath, cfg.FetchSchedule)

	uploader := service.NewR2Service(*cfg)
	video := service.NewFFmpegVideoService()
	resolver := service.NewMediaService(uploader, video)

	instagramService := service.NewInstagramService(*cfg, tokens, resolver)
	threadsService := service.NewThreadsService(*cfg, tokens, resolver)

	lock := runlock.New(cfg.LockFilePath, cfg.LockTTL)
	history := jobs.NewRunHistory()

	return &app{
		cfg:         cfg,
		coordinator: jobs.NewCoordinator(lock, rowRepo, cache, history, instagramService, threadsService),
		refreshJob:  jobs.NewTokenRefreshJob(instagramService, threadsService),
		history:     history,
		cache:       cache,
	}, nil
}

var rootCmd = &cobra.Command{
	Use:   "sheetcast",
	Short: "Spreadsheet-driven social media auto-poster",
	Long: `Sheetcast reads scheduled posts from a Google Sheets content queue,
publishes the ones that are due to Instagram and Threads, and writes the
outcome back to the sheet's status column.

The run command executes a single batch pass and is meant to be triggered
by cron or Task Scheduler; overlapping invocations are rejected by a run
lock. The serve command keeps a long-running process that triggers the
pipeline every minute and exposes a small status API.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one pipeline pass and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx)
		if err != nil {
			return err
		}

		summary, err := a.coordinator.Run(ctx)
		if err != nil {
			if errors.Is(err, runlock.ErrHeld) {
				slog.Error("another run is in progress, aborting")
			}
			return err
		}
		slog.Info("pipeline finished",
			"due", summary.Due,
			"published", summary.Published,
			"failed", summary.Failed,
			"fetched_sheet", summary.Fetched)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pipeline on an internal schedule with a status API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx)
		if err != nil {
			return err
		}

		c := cron.New()
		c.AddFunc("@every 0h1m0s", func() {
			if _, err := a.coordinator.Run(context.Background()); err != nil && !errors.Is(err, runlock.ErrHeld) {
				slog.Error("pipeline run failed", "error", err)
			}
		})
		c.AddFunc("0 0 3 * * *", a.refreshJob.RefreshTokens)
		c.Start()
		defer c.Stop()

		srv := fiber.New(fiber.Config{
			ErrorHandler: func(fc *fiber.Ctx, err error) error {
				log.Printf("Error: %v", err)
				return fc.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
			},
		})
		srv.Use(logger.New())

		status := handlers.NewStatusHandler(a.history, a.cache)
		srv.Get("/healthz", status.Health)
		api := srv.Group("/api")
		api.Get("/runs", status.ListRuns)
		api.Get("/pending", status.ListPending)

		go func() {
			if err := srv.Listen(a.cfg.ListenAddr); err != nil {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()
		log.Printf("Status server is running on %s", a.cfg.ListenAddr)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down...")
		if err := srv.Shutdown(); err != nil {
			return err
		}
		log.Println("Shutdown complete.")
		return nil
	},
}

var refreshTokensCmd = &cobra.Command{
	Use:   "refresh-tokens",
	Short: "Refresh stored long-lived platform tokens once",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		a.refreshJob.RefreshTokens()
		return nil
	},
}

func main() {
	rootCmd.AddCommand(runCmd, serveCmd, refreshTokensCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
