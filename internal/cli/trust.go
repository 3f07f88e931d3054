package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "trust",
		Short: "Run one trust recompute cycle over all sources",
		Run:   runTrust,
	}

	RootCmd.AddCommand(cmd)
}

func runTrust(cmd *cobra.Command, args []string) {
	application := openApp()
	defer application.Close()

	sources, err := application.Engine().RecomputeSourceTrust(cmd.Context())
	if err != nil {
		exitErr("recompute trust", err)
	}

	for _, src := range sources {
		fmt.Printf("  %-16s tier=%-10s trust=%6.2f state=%s\n",
			src.ID, src.Tier, src.TrustScore, src.State)
	}
	fmt.Printf("%d sources recomputed\n", len(sources))
}
