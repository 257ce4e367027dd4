package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"

	"github.com/taskflow/core/internal/client"
	"github.com/taskflow/core/internal/infrastructure/config"
	"github.com/taskflow/core/internal/infrastructure/database"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/infrastructure/server"
	"github.com/taskflow/core/internal/ui"
)

// Build information, set with -ldflags
var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "development"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the TaskFlow API server",
		Long:  "Start the TaskFlow API server with the task API, health endpoints, metrics and browser UI",
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(runServer())
		},
	}
}

// NewUICommand creates the terminal UI command
func NewUICommand() *cobra.Command {
	var apiURL string

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the terminal UI",
		Long:  "Browse, create, update and delete tasks from the terminal against a running API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return ui.Run(ctx, client.New(apiURL, nil))
		},
	}

	cmd.Flags().StringVar(&apiURL, "api", "http://localhost:8080", "Base URL of the TaskFlow API")
	return cmd
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Install or remove the tasks table (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Create the tasks table",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration(database.MigrateUp)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Drop the tasks table",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration(database.MigrateDown)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			showMigrationVersion()
		},
	})

	return migrateCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print TaskFlow version",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "TaskFlow %s\n", Version)
			fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
			fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
		},
	}
}

// runServer serves until SIGINT/SIGTERM and returns the process exit code
func runServer() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Printf("Failed to initialize logger: %v", err)
		return 1
	}
	defer appLogger.Close()

	db, err := database.New(cfg.Database)
	if err != nil {
		appLogger.Errorw("Failed to connect to database", "error", err, "host", cfg.Database.Host)
		return 1
	}

	srv, err := server.New(cfg, db, appLogger)
	if err != nil {
		appLogger.Errorw("Failed to initialize server", "error", err)
		db.Close()
		return 1
	}

	appLogger.Infow("Starting TaskFlow API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"driver", cfg.Database.Driver,
		"rate_limit_backend", cfg.Security.RateLimitBackend,
	)

	wait := gfshutdown.GracefulShutdown(context.Background(), cfg.Server.ShutdownTimeout, map[string]gfshutdown.Operation{
		// One operation so the pool is closed only after in-flight requests finish
		"http-server": func(ctx context.Context) error {
			appLogger.Infow("Graceful shutdown initiated")
			if err := srv.Shutdown(ctx); err != nil {
				appLogger.Errorw("Server shutdown failed", "error", err)
			}
			return db.Close()
		},
	})

	startErr := make(chan error, 1)
	go func() {
		startErr <- srv.Start(cfg.Server.GetAddr())
	}()

	select {
	case err := <-startErr:
		if err != nil {
			appLogger.Errorw("Server failed", "error", err)
			db.Close()
			return 1
		}
		return <-wait
	case exitCode := <-wait:
		appLogger.Infow("Server stopped", "exit_code", exitCode)
		return exitCode
	}
}

func openForMigration() *database.DB {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	return db
}

func runMigration(direction string) {
	db := openForMigration()
	defer db.Close()

	changed, err := db.Migrate(direction)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if !changed {
		fmt.Println("No migrations to run")
		return
	}
	fmt.Printf("Migration %s completed successfully\n", direction)
}

func showMigrationVersion() {
	db := openForMigration()
	defer db.Close()

	version, dirty, err := db.MigrationVersion()
	if err != nil {
		log.Fatalf("Failed to get migration version: %v", err)
	}

	fmt.Printf("Current migration version: %d\n", version)
	fmt.Printf("Dirty: %t\n", dirty)
}
