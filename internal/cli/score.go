package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute and persist the scored segment pool for a date",
		Run:   runScore,
	}

	RootCmd.AddCommand(cmd)
}

func runScore(cmd *cobra.Command, args []string) {
	application := openApp()
	defer application.Close()

	pool, err := application.Engine().ComputeDailyScores(cmd.Context(), targetDate())
	if err != nil {
		exitErr("compute daily scores", err)
	}

	fmt.Printf("pool %s: %d scored segments\n", pool.Date.Format("2006-01-02"), len(pool.Segments))
	for _, seg := range pool.Segments {
		fmt.Printf("  %-24s topic=%-12s source=%-16s relevance=%.3f\n",
			seg.ID, seg.TopicID, seg.SourceID, seg.Relevance)
	}
}
