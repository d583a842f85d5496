// Package cli implements the swipetriage commands.
package cli

import (
	"fmt"
	"os"
	"swipetriage/internal/structures"

	"github.com/spf13/cobra"
)

var (
	configPath string
	debugMode  bool
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:          "swipetriage",
	Short:        "Swipe through a photo library in batches and delete what you don't keep",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Config file path (default: $SWIPETRIAGE_CONFIG or config/config.yml)")
	RootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Debug mode: console logging and the quota reset endpoint")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
}

func defaultConfigPath() string {
	if env := os.Getenv("SWIPETRIAGE_CONFIG"); env != "" {
		return env
	}
	return "config/config.yml"
}

func cliFlags() *structures.CliFlags {
	return &structures.CliFlags{ConfigPath: configPath, DebugMode: debugMode}
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
