package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"instastudio/internal/assembly"
	"instastudio/internal/logging"
	"instastudio/internal/notifications"
	"instastudio/internal/publishing"
	"instastudio/internal/queue"
	"instastudio/internal/stageexec"
	"instastudio/internal/translation"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "process <itemID>",
		Short: "Run a queue item through its remaining stages in the foreground",
		Long: `Process executes a single queue item synchronously, without the daemon.
The item is stepped through translation, assembly, and publishing until it
completes or a stage fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger := logging.NewNop()
			if !quiet {
				logger, err = logging.NewWriterLogger(cmd.ErrOrStderr(), cfg.Logging.Level, "console")
				if err != nil {
					return err
				}
			}

			translator := translation.New(cfg, logger)
			assembler, err := assembly.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("configure assembler: %w", err)
			}
			publisher := publishing.New(cfg, logger)
			notifier := notifications.NewService(cfg)

			return ctx.withStore(func(store *queue.Store) error {
				item, err := store.GetByID(cmd.Context(), ids[0])
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("queue item %d not found", ids[0])
				}

				for !item.IsTerminal() {
					var opts stageexec.Options
					switch item.Status {
					case queue.StatusPending:
						opts = stageexec.Options{
							Handler:    translator,
							StageName:  "translator",
							Processing: queue.StatusTranslating,
							Done:       queue.StatusTranslated,
						}
					case queue.StatusTranslated:
						opts = stageexec.Options{
							Handler:    assembler,
							StageName:  "assembler",
							Processing: queue.StatusAssembling,
							Done:       queue.StatusRendered,
						}
					case queue.StatusRendered:
						opts = stageexec.Options{
							Handler:    publisher,
							StageName:  "publisher",
							Processing: queue.StatusPublishing,
							Done:       queue.StatusCompleted,
						}
					default:
						return fmt.Errorf("item %d is %s; reset it with `instastudio queue retry %d` first",
							item.ID, item.Status, item.ID)
					}

					opts.Logger = logger
					opts.Store = store
					opts.Notifier = notifier
					opts.Item = item
					if err := stageexec.Run(cmd.Context(), opts); err != nil {
						return err
					}
				}

				if item.Status == queue.StatusCompleted {
					fmt.Fprintf(cmd.OutOrStdout(), "Item %d completed", item.ID)
					if item.OutputPath != "" {
						fmt.Fprintf(cmd.OutOrStdout(), " (%s)", item.OutputPath)
					}
					fmt.Fprintln(cmd.OutOrStdout())
					return nil
				}
				return fmt.Errorf("item %d finished in state %s: %s", item.ID, item.Status, item.ErrorMessage)
			})
		},
	}

	cmd.Flags().BoolVar(&quiet, "quiet", false, "Suppress stage logs")
	return cmd
}
