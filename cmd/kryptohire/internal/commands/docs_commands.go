package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"alfredoptarigan/kryptohire/internal/config"
	"alfredoptarigan/kryptohire/internal/handlers"
)

func InitDocsCommands(rootCmd *cobra.Command) {
	openapiCmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document served at /api/v1/docs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			baseURL, _ := cmd.Flags().GetString("base-url")
			if baseURL == "" {
				baseURL = config.Load().Server.BaseURL
			}

			doc := handlers.NewOpenAPIDocument(baseURL, handlers.Routes(&handlers.Handlers{}, baseURL))
			out, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return err
			}
			return os.WriteFile(output, out, 0o644)
		},
	}
	openapiCmd.Flags().StringP("base-url", "", "", "Server base URL (defaults to SITE_URL)")
	openapiCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	rootCmd.AddCommand(openapiCmd)
}
