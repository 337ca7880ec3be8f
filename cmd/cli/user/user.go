// Package user inspects per-user investigation state.
package user

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/myrjola/entangled/cmd/cli/clidb"
	"github.com/myrjola/entangled/internal/progression"
	"github.com/myrjola/entangled/internal/repositories"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "user",
	Title: "User operations",
}

func init() {
	Inspect.Flags().String("entity", "whisper", "entity id for the relationship")
}

var Inspect = &cobra.Command{
	Use:     "inspect [userID]",
	GroupID: "user",
	Short:   "Inspect a user's progression",
	Long:    "Prints a user's relationship, case, evidence, and channel state as JSON.",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		userID := args[0]

		entityID, err := cmd.Flags().GetString("entity")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "invalid entity flag: %v\n", err)
			return
		}

		documents, logger, err := clidb.Open(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "open database: %v\n", err)
			return
		}
		relationships := repositories.NewRelationshipRepository(documents, logger)
		cases := repositories.NewCaseRepository(documents, logger)
		evidence := repositories.NewEvidenceRepository(documents, logger)
		channels := repositories.NewChannelRepository(documents, relationships, cases, logger)

		relationship, err := relationships.Get(ctx, userID, entityID)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "load relationship: %v\n", err)
			return
		}
		caseState, err := cases.State(ctx, userID)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "load cases: %v\n", err)
			return
		}
		inventory, err := evidence.Inventory(ctx, userID)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "load evidence: %v\n", err)
			return
		}
		channelState, err := channels.State(ctx, userID)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "load channels: %v\n", err)
			return
		}

		out := map[string]any{
			"displayName":  progression.DisplayName(*relationship),
			"relationship": relationship,
			"cases":        caseState,
			"evidence":     inventory,
			"channels":     channelState,
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err = encoder.Encode(out); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "encode state: %v\n", err)
			return
		}
	},
}
