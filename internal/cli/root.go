// Package cli implements the digestengine CLI commands.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"DigestEngine/internal/app"
	"DigestEngine/internal/config"
	"DigestEngine/internal/logging"
)

var dateFlag string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "digestengine",
	Short: "Scoring and selection engine for daily audio digests",
	Long: "Ranks candidate segments by source trust, tier corroboration, and freshness,\n" +
		"then assembles a fixed-size personalized playlist per user per day.",
}

func init() {
	RootCmd.PersistentFlags().StringVar(&dateFlag, "date", "", "Calendar date to operate on (YYYY-MM-DD, default today)")
}

func openApp() *app.Application {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(cfg, logger)
	if err != nil {
		exitErr("init application", err)
	}
	return application
}

func targetDate() time.Time {
	if dateFlag == "" {
		return time.Now().UTC()
	}
	day, err := time.Parse("2006-01-02", dateFlag)
	if err != nil {
		exitErr("parse --date", err)
	}
	return day
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
