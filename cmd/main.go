package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yungbote/calisthenics-backend/internal/app"
	"github.com/yungbote/calisthenics-backend/internal/data/db"
	"github.com/yungbote/calisthenics-backend/internal/pkg/envutil"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
)

func newLogger() (*logger.Logger, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "calisthenics",
		Short:         "Calisthenics training API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API (default)",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply schema migrations and exit",
			RunE:  runMigrate,
		},
		newCatalogCmd(),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := newLogger()
	if err != nil {
		return err
	}
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Sync()
		return err
	}
	a, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return err
	}
	defer a.Close()

	a.Start(ctx)
	return a.Run(ctx)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	pg, err := db.NewPostgresService(log, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()
	if err := db.AutoMigrateAll(pg.DB()); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	if err := db.EnsureProgressIndexes(pg.DB()); err != nil {
		return fmt.Errorf("indexes: %w", err)
	}
	log.Info("migrations applied")
	return nil
}
