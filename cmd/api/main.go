package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskflow/core/cmd/api/commands"
)

// @title TaskFlow API
// @version 1.0
// @description Task tracking API: create, list, update and delete tasks
// @termsOfService https://github.com/taskflow/core/blob/main/LICENSE

// @contact.name TaskFlow Support
// @contact.url https://github.com/taskflow/core

// @license.name MIT
// @license.url https://github.com/taskflow/core/blob/main/LICENSE

// @host localhost:8080
// @BasePath /api

func main() {
	rootCmd := &cobra.Command{
		Use:   "taskflow",
		Short: "TaskFlow task tracking server",
		Long:  `TaskFlow serves a JSON API for tasks backed by PostgreSQL, together with a browser UI and a terminal UI.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUICommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
