package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"instastudio/internal/api"
	"instastudio/internal/daemonctl"
	"instastudio/internal/daemonrun"
	"instastudio/internal/ipc"
)

const (
	daemonStartTimeout = 10 * time.Second
	daemonStopGrace    = 8 * time.Second
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the background processing daemon",
	}

	daemonCmd.AddCommand(newDaemonStartCommand(ctx))
	daemonCmd.AddCommand(newDaemonStopCommand(ctx))
	daemonCmd.AddCommand(newDaemonRestartCommand(ctx))
	daemonCmd.AddCommand(newDaemonStatusCommand(ctx))
	daemonCmd.AddCommand(newDaemonRunCommand(ctx))

	return daemonCmd
}

func newDaemonStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the daemon, launching the background process if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}
			result, err := daemonctl.EnsureStarted(ctx.socketPath(), exe, daemonLaunchOptions(ctx), daemonStartTimeout)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch result.State {
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(out, "Daemon already running")
			case daemonctl.StartStateStarted:
				fmt.Fprintln(out, "Daemon started")
			default:
				if result.Message != "" {
					fmt.Fprintln(out, result.Message)
				} else {
					fmt.Fprintln(out, "Start request sent")
				}
			}
			return nil
		},
	}
}

func newDaemonStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon and terminate the background process",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := daemonctl.StopAndTerminate(ctx.socketPath(), ctx.configValue(), daemonStopGrace)
			if err != nil {
				if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
					fmt.Fprintln(cmd.OutOrStdout(), "Daemon is not running")
					return nil
				}
				return err
			}
			if result.ForcedKill {
				fmt.Fprintf(cmd.OutOrStdout(), "Daemon did not exit cleanly; terminated process %d\n", result.PID)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Daemon stopped")
			return nil
		},
	}
}

func newDaemonRestartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}
			result, err := daemonctl.Restart(ctx.socketPath(), ctx.configValue(), exe, daemonLaunchOptions(ctx), daemonStopGrace, daemonStartTimeout)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !result.WasRunning {
				fmt.Fprintln(out, "Daemon was not running; started")
				return nil
			}
			fmt.Fprintln(out, "Daemon restarted")
			return nil
		},
	}
}

func newDaemonStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, dependency, and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			snapshot, err := daemonctl.BuildStatusSnapshot(cmd.Context(), ctx.socketPath(), cfg)
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, snapshot)
			}
			renderStatusSnapshot(cmd, snapshot)
			return nil
		},
	}
}

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:    "run",
		Short:  "Run the daemon in the foreground",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:   logLevel,
				SocketPath: ctx.socketPath(),
			})
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	return cmd
}

func renderStatusSnapshot(cmd *cobra.Command, snapshot *daemonctl.StatusSnapshot) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	printSection := func(title string, lines []string) {
		for _, header := range renderSectionHeader(title, colorize) {
			fmt.Fprintln(out, header)
		}
		for _, line := range lines {
			fmt.Fprintln(out, line)
		}
		fmt.Fprintln(out)
	}

	printSection("System Status", statusLineStrings(snapshot.SystemChecks, colorize))
	printSection("Dependencies", dependencyLines(snapshot.Dependencies, snapshot.DependencySummary, colorize))
	printSection("Media Paths", statusLineStrings(snapshot.MediaPaths, colorize))

	if stages := stageLines(snapshot.StageHealth, colorize); len(stages) > 0 {
		printSection("Stages", stages)
	}

	for _, header := range renderSectionHeader("Queue", colorize) {
		fmt.Fprintln(out, header)
	}
	if snapshot.QueueCounts.Total == 0 {
		fmt.Fprintln(out, statusIndent+"Queue is empty")
	} else {
		fmt.Fprintln(out, renderTable([]string{"Status", "Count"}, buildQueueHealthRows(snapshot.QueueCounts), []columnAlignment{alignLeft, alignRight}))
	}
	if snapshot.LastError != "" {
		fmt.Fprintln(out, renderStatusLine("Last error", statusWarn, snapshot.LastError, colorize))
	}
}

func statusLineStrings(lines []api.StatusLine, colorize bool) []string {
	rendered := make([]string, 0, len(lines))
	for _, line := range lines {
		rendered = append(rendered, renderStatusLine(line.Label, statusKindFromSeverity(line.Severity), line.Detail, colorize))
	}
	return rendered
}

func dependencyLines(deps []ipc.DependencyStatus, summary api.DependencySummary, colorize bool) []string {
	lines := make([]string, 0, len(deps)+1)
	lines = append(lines, renderStatusLine("Summary", statusKindFromSeverity(summary.Severity), summary.Detail, colorize))
	for _, dep := range deps {
		detail := dep.Detail
		if detail == "" {
			if dep.Available {
				detail = "Available"
			} else if dep.Optional {
				detail = "Not found (optional)"
			} else {
				detail = "Not found"
			}
		}
		lines = append(lines, renderStatusLine(dep.Name, statusKindFromSeverity(dep.Severity), detail, colorize))
	}
	return lines
}

func stageLines(stages []ipc.StageHealth, colorize bool) []string {
	lines := make([]string, 0, len(stages))
	for _, stage := range stages {
		kind := statusOK
		detail := stage.Detail
		if !stage.Ready {
			kind = statusWarn
			if detail == "" {
				detail = "Not ready"
			}
		} else if detail == "" {
			detail = "Ready"
		}
		lines = append(lines, renderStatusLine(stage.Name, kind, detail, colorize))
	}
	return lines
}

func daemonLaunchOptions(ctx *commandContext) daemonctl.LaunchOptions {
	opts := daemonctl.LaunchOptions{SocketPath: ctx.socketPath()}
	if ctx.configFlag != nil {
		opts.ConfigPath = *ctx.configFlag
	}
	return opts
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}
