package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hookctl",
		Short: "hookbox operator CLI",
		Long: `hookctl signs and sends webhook deliveries to a hookbox server and
manages the message database directly.

Database commands read the same HOOKBOX_* environment as the server.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newSignCmd(),
		newSendCmd(),
		newMigrateCmd(),
		newListCmd(),
	)
	return root
}
