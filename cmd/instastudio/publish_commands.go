package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"instastudio/internal/api"
	"instastudio/internal/queue"
)

var scheduleLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

func newPublishCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <itemID>",
		Short: "Mark a queue item for publishing",
		Long: `Publish flags an existing queue item so the publishing stage picks it up.
A completed item with a rendered output is returned to the rendered state
and published on the daemon's next pass.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				item, err := store.GetByID(cmd.Context(), ids[0])
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("queue item %d not found", ids[0])
				}
				item.NeedsPublish = true
				if item.Status == queue.StatusCompleted && item.OutputPath != "" {
					item.Status = queue.StatusRendered
				}
				if err := store.Update(cmd.Context(), item); err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, api.QueueItemResponse{Item: api.FromQueueItem(item)})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %d marked for publishing\n", item.ID)
				return nil
			})
		},
	}
}

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <itemID> <time>",
		Short: "Schedule a queue item to publish at a later time",
		Example: `  instastudio schedule 12 "2026-09-05 18:00"
  instastudio schedule 12 2026-09-05T18:00:00Z`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args[:1])
			if err != nil {
				return err
			}
			when, err := parseScheduleArg(args[1])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				item, err := store.GetByID(cmd.Context(), ids[0])
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("queue item %d not found", ids[0])
				}
				item.NeedsPublish = true
				item.ScheduledAt = &when
				if item.Status == queue.StatusCompleted && item.OutputPath != "" {
					item.Status = queue.StatusRendered
				}
				if err := store.Update(cmd.Context(), item); err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, api.QueueItemResponse{Item: api.FromQueueItem(item)})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %d scheduled for %s\n",
					item.ID, when.Local().Format("2006-01-02 15:04"))
				return nil
			})
		},
	}
}

func parseScheduleArg(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range scheduleLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid schedule %q (use RFC3339 or YYYY-MM-DD HH:MM)", trimmed)
}
