package cli

import (
	"fmt"
	"swipetriage/internal/di"

	"github.com/spf13/cobra"
)

var confirmReset bool

func init() {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all progress, quota state and the in-flight batch",
		Run:   runReset,
	}
	cmd.Flags().BoolVarP(&confirmReset, "yes", "y", false, "Confirm the reset")

	RootCmd.AddCommand(cmd)
}

func runReset(cmd *cobra.Command, args []string) {
	if !confirmReset {
		exitErr("reset", fmt.Errorf("refusing to erase progress without --yes"))
	}

	s, err := di.InitStore(cliFlags())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.ResetAll(); err != nil {
		exitErr("reset", err)
	}
	fmt.Println("Progress reset.")
}
