package commands

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/lib/pq"
	"github.com/spf13/cobra"

	"alfredoptarigan/kryptohire/internal/config"
)

func InitDatabaseCommands(rootCmd *cobra.Command) {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			_, err := config.InitDatabase(cfg)
			return err
		},
	}
	rootCmd.AddCommand(migrateCmd)

	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database administration",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create the Postgres database named by DB_NAME if it does not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return createDatabase(config.Load())
		},
	}
	dbCmd.AddCommand(createCmd)
	rootCmd.AddCommand(dbCmd)
}

func createDatabase(cfg *config.Config) error {
	if cfg.Database.Driver != "postgres" {
		log.Printf("ℹ️  DB_DRIVER=%s, nothing to create", cfg.Database.Driver)
		return nil
	}

	db, err := sql.Open("postgres", cfg.GetAdminDSN())
	if err != nil {
		return fmt.Errorf("failed to open admin connection: %w", err)
	}
	defer db.Close()

	var exists bool
	err = db.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", cfg.Database.DBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check database: %w", err)
	}
	if exists {
		log.Printf("✅ Database %s already exists", cfg.Database.DBName)
		return nil
	}

	if _, err := db.Exec("CREATE DATABASE " + pq.QuoteIdentifier(cfg.Database.DBName)); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	log.Printf("✅ Database %s created", cfg.Database.DBName)
	return nil
}
