// Package pool manages the global pool of available cases.
package pool

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/myrjola/entangled/cmd/cli/clidb"
	"github.com/myrjola/entangled/internal/models"
	"github.com/myrjola/entangled/internal/repositories"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "pool",
	Title: "Case pool operations",
}

//go:embed cases.json
var defaultPool []byte

var Seed = &cobra.Command{
	Use:     "seed [file]",
	GroupID: "pool",
	Short:   "Seed the case pool",
	Long:    "Posts cases from a JSON file into the available pool. Without a file, the bundled starter cases are used.",
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		data := defaultPool
		if len(args) == 1 {
			var err error
			if data, err = os.ReadFile(args[0]); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "read seed file: %v\n", err)
				return
			}
		}
		var cases []models.Case
		if err := json.Unmarshal(data, &cases); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "decode seed file: %v\n", err)
			return
		}

		documents, logger, err := clidb.Open(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "open database: %v\n", err)
			return
		}
		repo := repositories.NewCaseRepository(documents, logger)
		if err = repo.SeedPool(ctx, cases); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "seed pool: %v\n", err)
			return
		}
		fmt.Printf("seeded %d cases\n", len(cases))
	},
}

var List = &cobra.Command{
	Use:     "list",
	GroupID: "pool",
	Short:   "List the case pool",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()

		documents, logger, err := clidb.Open(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "open database: %v\n", err)
			return
		}
		repo := repositories.NewCaseRepository(documents, logger)
		cases, err := repo.ListAvailable(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "list pool: %v\n", err)
			return
		}
		for _, c := range cases {
			fmt.Printf("%-24s %-12s %-10s %s\n", c.ID, c.Type, c.Rarity, c.Title)
		}
	},
}
