package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hms/migrator/internal/config"
	"github.com/hms/migrator/internal/migrate"
	"github.com/hms/migrator/internal/platform/auth"
	"github.com/hms/migrator/internal/platform/middleware"
	"github.com/hms/migrator/internal/platform/report"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hms-migrator",
		Short: "Hospital records migration service",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the migration trigger API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()
	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to stores")
	}
	defer a.Close(ctx)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	apiV1 := e.Group("/api/v1", auth.Middleware(cfg.AuthTokenSecret))
	migrations := apiV1.Group("/migrations")

	a.RegisterRoutes(migrations, apiV1)

	// Serve until interrupted, then drain in-flight requests. Migration
	// runs already in progress keep their page-level commit semantics.
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(":" + cfg.Port)
	}()
	logger.Info().Str("port", cfg.Port).Msg("migration API listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		logger.Info().Msg("shutting down")
		return e.Shutdown(shutdownCtx)
	}
}

func migrateCmd() *cobra.Command {
	var reportPath string

	cmd := &cobra.Command{
		Use:   "migrate <flow>...",
		Short: "Run one or more migration flows",
		Long: "Runs the named flows in order. Flows: " + flowUsage + `
Use "all" to run every flow in dependency order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			a, err := buildApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			runnable := a.flows()
			flows := args
			if len(args) == 1 && args[0] == "all" {
				// Document-store flows drop out when MONGO_URI is unset.
				flows = make([]string, 0, len(allFlows))
				for _, f := range allFlows {
					if _, ok := runnable[f]; ok {
						flows = append(flows, f)
					}
				}
			}

			summaries := make(map[string]*migrate.Summary, len(flows))
			for _, flow := range flows {
				run, ok := runnable[flow]
				if !ok {
					return fmt.Errorf("unknown flow %q, expected one of: %s", flow, flowUsage)
				}
				summary, err := run(ctx)
				if err != nil {
					return fmt.Errorf("flow %s: %w", flow, err)
				}
				summaries[flow] = summary
				fmt.Printf("%s: migrated %d, skipped %d\n", flow, summary.TotalMigrated, summary.SkippedCount)
			}

			if reportPath != "" {
				if err := report.WriteSkipReport(reportPath, summaries); err != nil {
					return err
				}
				fmt.Printf("skip report written to %s\n", reportPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&reportPath, "report", "", "Write skipped records to an .xlsx workbook at this path")
	return cmd
}

func tokenCmd() *cobra.Command {
	var subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the trigger API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.AuthTokenSecret == "" {
				return fmt.Errorf("AUTH_TOKEN_SECRET is not set, the API runs unauthenticated")
			}
			token, err := auth.Sign(cfg.AuthTokenSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "ops", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
