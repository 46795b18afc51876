package commands

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"alfredoptarigan/kryptohire/internal/config"
	applog "alfredoptarigan/kryptohire/internal/logger"
	"alfredoptarigan/kryptohire/internal/repositories"
	"alfredoptarigan/kryptohire/internal/services"
)

func InitIndexCommands(rootCmd *cobra.Command) {
	reindexCmd := &cobra.Command{
		Use:   "reindex",
		Short: "Re-embed every resume into the Qdrant collection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return reindex(cmd.Context())
		},
	}
	rootCmd.AddCommand(reindexCmd)
}

func reindex(ctx context.Context) error {
	log.Println("🚀 Starting resume reindex...")
	cfg := config.Load()

	appLogger, err := applog.New(cfg.Logger)
	if err != nil {
		return err
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return err
	}

	index, err := services.NewResumeIndexFromConfig(ctx, cfg.Qdrant, cfg.AI, appLogger)
	if err != nil {
		return err
	}

	resumeService := services.NewResumeService(
		repositories.NewResumeRepository(db),
		repositories.NewJobRepository(db),
		repositories.NewProfileRepository(db),
		index,
		appLogger,
	)

	count, err := resumeService.Reindex(ctx)
	if err != nil {
		return err
	}
	log.Printf("✅ Reindexed %d resumes", count)
	return nil
}
