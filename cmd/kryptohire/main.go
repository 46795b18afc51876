// Package main is the entry point for the kryptohire operator CLI.
// It wires database, search index and documentation commands onto one root command.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"alfredoptarigan/kryptohire/cmd/kryptohire/internal/commands"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "kryptohire",
		Short: "Kryptohire operator CLI",
		Long: `kryptohire manages the Kryptohire API's backing services.

It reads the same .env / environment variables as the API server:
- DB_DRIVER, DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, SQLITE_PATH
- QDRANT_URL, QDRANT_API_KEY, QDRANT_COLLECTION, GEMINI_API_KEY
- SITE_URL`,
		SilenceUsage: true,
	}

	commands.InitDatabaseCommands(rootCmd)
	commands.InitIndexCommands(rootCmd)
	commands.InitDocsCommands(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}
	return nil
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stderr)
}
