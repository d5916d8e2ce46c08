package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"instastudio/internal/ipc"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notification",
		Short: "Send a test notification through the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TestNotification()
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, resp)
				}
				if resp.Sent {
					fmt.Fprintf(cmd.OutOrStdout(), "Notification sent: %s\n", resp.Message)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Notification not sent: %s\n", resp.Message)
				return nil
			})
		},
	}
}
