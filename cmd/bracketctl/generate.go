package main

import (
	"fmt"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/config"
	"github.com/AdamBeresnev/bracket-engine/internal/db"
	"github.com/AdamBeresnev/bracket-engine/internal/service"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type generateOptions struct {
	tournament  string
	actor       string
	source      string
	format      string
	seed        string
	bracketSize int
	force       bool
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and persist a tournament's bracket",
		RunE: func(cmd *cobra.Command, args []string) error {
			tournamentID, err := uuid.Parse(opts.tournament)
			if err != nil {
				return fmt.Errorf("invalid tournament id: %w", err)
			}
			var actor uuid.UUID
			if opts.actor != "" {
				if actor, err = uuid.Parse(opts.actor); err != nil {
					return fmt.Errorf("invalid actor id: %w", err)
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer logger.Sync()

			database, err := db.InitDB(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer database.Close()

			if cfg.MigrateOnStart {
				if err := db.RunMigrations(database.DB); err != nil {
					return err
				}
			}

			tournamentStore := store.NewTournamentStore(database)
			tournaments := service.NewTournamentService(
				database,
				tournamentStore,
				service.NewEntrantResolver(tournamentStore, cfg.ConfirmedStatuses),
				service.NewGenerationService(database, tournamentStore, logger),
				logger,
			)

			result, err := tournaments.GenerateBracket(cmd.Context(), tournamentID, actor, service.GenerateRequest{
				Format:        bracket.Format(opts.format),
				Seed:          opts.seed,
				ForceGenerate: opts.force,
				BracketSize:   opts.bracketSize,
				Source:        service.EntrantSource(opts.source),
			})
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&opts.tournament, "tournament", "", "tournament id")
	cmd.Flags().StringVar(&opts.actor, "actor", "", "id of the user recorded in the audit log")
	cmd.Flags().StringVar(&opts.source, "source", string(service.SourceConfirmed), "entrant source: confirmed or manual")
	cmd.Flags().StringVar(&opts.format, "format", "", "override the tournament's format")
	cmd.Flags().StringVar(&opts.seed, "seed", "", "draw seed; defaults to the current time")
	cmd.Flags().IntVar(&opts.bracketSize, "bracket-size", 0, "explicit power-of-two bracket size")
	cmd.Flags().BoolVar(&opts.force, "force", false, "generate even if inscriptions are open or matches have started")
	_ = cmd.MarkFlagRequired("tournament")

	return cmd
}
