package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "playlist <user-id>",
		Short: "Select and persist one user's playlist for a date",
		Args:  cobra.ExactArgs(1),
		Run:   runPlaylist,
	}

	RootCmd.AddCommand(cmd)
}

func runPlaylist(cmd *cobra.Command, args []string) {
	application := openApp()
	defer application.Close()

	playlist, err := application.Engine().SelectPlaylist(cmd.Context(), args[0], targetDate())
	if err != nil {
		exitErr("select playlist", err)
	}

	fmt.Printf("playlist for %s on %s (%d segments)\n",
		playlist.UserID, playlist.Date.Format("2006-01-02"), len(playlist.SegmentIDs))
	for i, b := range playlist.Breakdowns {
		marker := " "
		if b.Wildcard {
			marker = "*"
		}
		fmt.Printf("  %2d%s %-24s relevance=%.3f weight=%3d decay=%.3f final=%.4f\n",
			i+1, marker, b.SegmentID, b.Relevance, b.Weight, b.Decay, b.Final)
	}
}
