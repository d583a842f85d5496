package cli

import (
	"swipetriage/internal/di"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Scan the library and serve the triage API",
		RunE:  runServe,
	}

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := di.InitApp(cliFlags())
	if err != nil {
		return err
	}
	return app.Run()
}
