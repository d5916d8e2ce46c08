package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"instastudio/internal/ipc"
	"instastudio/internal/logs"
)

const logFollowWaitMillis = 1000

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		follow bool
		lines  int
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show daemon log output",
		Long: `Logs reads the daemon's current log. When the HTTP API is enabled the
lines are fetched over HTTP, otherwise the daemon socket is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if lines <= 0 {
				lines = 10
			}

			if err := tailViaHTTP(cmd, ctx, follow, lines); err == nil {
				return nil
			} else if !logs.IsAPIUnavailable(err) {
				return err
			}

			return ctx.withClient(func(client *ipc.Client) error {
				return tailViaIPC(cmd.Context(), cmd, client, follow, lines)
			})
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep streaming new log lines")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of lines to show initially")
	return cmd
}

func tailViaHTTP(cmd *cobra.Command, ctx *commandContext, follow bool, lines int) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	client, err := logs.NewTailClient(cfg.Paths.APIBind, cfg.Paths.APIToken)
	if err != nil {
		return err
	}
	if client == nil {
		return logs.ErrAPIUnavailable
	}

	out := cmd.OutOrStdout()
	resp, err := client.Fetch(cmd.Context(), logs.TailQuery{Offset: -1, Limit: lines})
	if err != nil {
		return err
	}
	for _, line := range resp.Lines {
		fmt.Fprintln(out, line)
	}
	if !follow {
		return nil
	}

	offset := resp.Offset
	for {
		resp, err := client.Fetch(cmd.Context(), logs.TailQuery{Offset: offset, Limit: 200, Follow: true})
		if err != nil {
			if cmd.Context().Err() != nil {
				return nil
			}
			return err
		}
		for _, line := range resp.Lines {
			fmt.Fprintln(out, line)
		}
		offset = resp.Offset
	}
}

func tailViaIPC(ctx context.Context, cmd *cobra.Command, client *ipc.Client, follow bool, lines int) error {
	out := cmd.OutOrStdout()
	resp, err := client.LogTail(ipc.LogTailRequest{Offset: -1, Limit: lines})
	if err != nil {
		return err
	}
	for _, line := range resp.Lines {
		fmt.Fprintln(out, line)
	}
	if !follow {
		return nil
	}

	offset := resp.Offset
	for {
		if ctx.Err() != nil {
			return nil
		}
		resp, err := client.LogTail(ipc.LogTailRequest{
			Offset:     offset,
			Limit:      200,
			Follow:     true,
			WaitMillis: logFollowWaitMillis,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		for _, line := range resp.Lines {
			fmt.Fprintln(out, line)
		}
		offset = resp.Offset
	}
}
