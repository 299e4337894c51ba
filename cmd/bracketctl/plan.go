package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/draw"
	"github.com/spf13/cobra"
)

type planOptions struct {
	format        string
	entrants      string
	seed          string
	bracketSize   int
	preserveOrder bool
}

func newPlanCmd() *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the structure a generation would create, without touching the database",
		Example: `  bracketctl plan --format DRAW_A_B --entrants 1,2,3,4,5 --seed spring
  bracketctl plan --format DRAW_A_B --entrants 7:1,9:8,3 --bracket-size 8 --preserve-order`,
		RunE: func(cmd *cobra.Command, args []string) error {
			entrants, err := parseEntrants(opts.entrants)
			if err != nil {
				return err
			}

			plan, err := draw.BuildPlan(draw.PlanInput{
				Format:        bracket.Format(strings.ToUpper(opts.format)),
				Entrants:      entrants,
				Seed:          opts.seed,
				TargetSize:    opts.bracketSize,
				PreserveOrder: opts.preserveOrder,
			})
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), plan)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", string(bracket.FormatDrawAB), "tournament format")
	cmd.Flags().StringVar(&opts.entrants, "entrants", "", "comma separated entrant ids, each optionally id:seed")
	cmd.Flags().StringVar(&opts.seed, "seed", "", "draw seed (required so the plan is reproducible)")
	cmd.Flags().IntVar(&opts.bracketSize, "bracket-size", 0, "explicit power-of-two bracket size")
	cmd.Flags().BoolVar(&opts.preserveOrder, "preserve-order", false, "keep the listed order and place seeded entrants by seed")
	_ = cmd.MarkFlagRequired("entrants")
	_ = cmd.MarkFlagRequired("seed")

	return cmd
}

// parseEntrants reads "12,7:1,30" into entrants; the part after a colon is
// the placement seed.
func parseEntrants(raw string) ([]bracket.Entrant, error) {
	var entrants []bracket.Entrant
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		idPart, seedPart, hasSeed := strings.Cut(field, ":")
		id, err := strconv.ParseInt(idPart, 10, 32)
		if err != nil || id < 1 {
			return nil, fmt.Errorf("invalid entrant id %q", idPart)
		}

		e := bracket.Entrant{ID: id}
		if hasSeed {
			seed, err := strconv.Atoi(seedPart)
			if err != nil || seed < 1 {
				return nil, fmt.Errorf("invalid seed %q for entrant %d", seedPart, id)
			}
			e.Seed = &seed
		}
		entrants = append(entrants, e)
	}
	return entrants, nil
}
