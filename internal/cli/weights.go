package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"DigestEngine/internal/domain"
)

func init() {
	cmd := &cobra.Command{
		Use:   "weights <user-id> [topic=weight ...]",
		Short: "Show or set a user's topic weights",
		Args:  cobra.MinimumNArgs(1),
		Run:   runWeights,
	}

	RootCmd.AddCommand(cmd)
}

func runWeights(cmd *cobra.Command, args []string) {
	application := openApp()
	defer application.Close()

	userID := args[0]
	store := application.Store()

	if len(args) > 1 {
		weights := domain.UserWeights{}
		for _, pair := range args[1:] {
			topic, raw, ok := strings.Cut(pair, "=")
			if !ok {
				exitErr("parse weight", fmt.Errorf("expected topic=weight, got %q", pair))
			}
			weight, err := strconv.Atoi(raw)
			if err != nil {
				exitErr("parse weight", err)
			}
			weights[topic] = weight
		}
		if err := store.SaveWeights(cmd.Context(), userID, weights); err != nil {
			exitErr("save weights", err)
		}
	}

	weights, err := store.LoadWeights(cmd.Context(), userID)
	if err != nil {
		exitErr("load weights", err)
	}

	fmt.Printf("weights for %s (%d explicit, unset topics default to %d)\n",
		userID, len(weights), domain.DefaultTopicWeight)
	for topic, weight := range weights {
		fmt.Printf("  %-16s %3d\n", topic, weight)
	}
}
