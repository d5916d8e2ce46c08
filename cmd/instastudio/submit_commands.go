package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"instastudio/internal/api"
	"instastudio/internal/queue"
	"instastudio/internal/repurpose"
)

type submitFlags struct {
	contentType string
	caption     string
	publish     bool
	schedule    string
}

func (f *submitFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.contentType, "type", "t", "", "Content type for the output (reel, story, post)")
	cmd.Flags().StringVar(&f.caption, "caption", "", "Caption to publish with the output")
	cmd.Flags().BoolVar(&f.publish, "publish", false, "Publish the output after rendering")
	cmd.Flags().StringVar(&f.schedule, "schedule", "", "Publish schedule (RFC3339 or YYYY-MM-DD HH:MM)")
}

func newEditCommand(ctx *commandContext) *cobra.Command {
	var flags submitFlags

	cmd := &cobra.Command{
		Use:   "edit <source> <command...>",
		Short: "Queue a natural-language edit of a local video",
		Example: `  instastudio edit clip.mp4 "trim the first 5 seconds and add upbeat music"
  instastudio edit talk.mov "speed up 2x" --type reel --publish`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.EditRequest{
				SourcePath:  args[0],
				Command:     strings.Join(args[1:], " "),
				ContentType: flags.contentType,
				Caption:     flags.caption,
				Publish:     flags.publish,
				Schedule:    flags.schedule,
			}
			return ctx.withSubmit(func(svc *api.SubmitService) error {
				item, err := svc.SubmitEdit(cmd.Context(), req)
				if err != nil {
					return err
				}
				return printSubmitted(cmd, ctx, "edit", item)
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func newRepurposeCommand(ctx *commandContext) *cobra.Command {
	var (
		flags       submitFlags
		postsPath   string
		planPath    string
		planCommand string
		seed        int64
	)

	cmd := &cobra.Command{
		Use:   "repurpose",
		Short: "Queue a repurpose job over existing posts",
		Long: `Repurpose builds a new piece of content from previously published posts.
Provide the source posts as a JSON file and either a prepared content plan
or a planning command for the language model to work from.`,
		Example: `  instastudio repurpose --posts top.json --command "make a 30s highlight reel"
  instastudio repurpose --posts top.json --plan plan.json --type reel --publish`,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := loadSourcePosts(postsPath)
			if err != nil {
				return err
			}
			planJSON, err := loadPlanFile(planPath)
			if err != nil {
				return err
			}
			req := api.RepurposeRequest{
				Command:     planCommand,
				Posts:       posts,
				PlanJSON:    planJSON,
				ContentType: flags.contentType,
				Caption:     flags.caption,
				Publish:     flags.publish,
				Schedule:    flags.schedule,
				Seed:        seed,
			}
			return ctx.withSubmit(func(svc *api.SubmitService) error {
				item, err := svc.SubmitRepurpose(cmd.Context(), req)
				if err != nil {
					return err
				}
				return printSubmitted(cmd, ctx, "repurpose", item)
			})
		},
	}

	cmd.Flags().StringVar(&postsPath, "posts", "", "JSON file with the source posts (required)")
	cmd.Flags().StringVar(&planPath, "plan", "", "JSON file with a prepared content plan")
	cmd.Flags().StringVar(&planCommand, "command", "", "Planning command for the language model")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for deterministic clip selection")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("posts")
	return cmd
}

func newCompilationCommand(ctx *commandContext) *cobra.Command {
	var (
		flags       submitFlags
		postsPath   string
		planPath    string
		planCommand string
		title       string
		seed        int64
	)

	cmd := &cobra.Command{
		Use:   "compilation",
		Short: "Queue a compilation stitched from multiple posts",
		Example: `  instastudio compilation --posts month.json --command "best moments of August" --title "August Rewind"
  instastudio compilation --posts month.json --plan plan.json --type reel`,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := loadSourcePosts(postsPath)
			if err != nil {
				return err
			}
			planJSON, err := loadPlanFile(planPath)
			if err != nil {
				return err
			}
			req := api.CompilationRequest{
				Command:     planCommand,
				Title:       title,
				Posts:       posts,
				PlanJSON:    planJSON,
				ContentType: flags.contentType,
				Caption:     flags.caption,
				Publish:     flags.publish,
				Schedule:    flags.schedule,
				Seed:        seed,
			}
			return ctx.withSubmit(func(svc *api.SubmitService) error {
				item, err := svc.SubmitCompilation(cmd.Context(), req)
				if err != nil {
					return err
				}
				return printSubmitted(cmd, ctx, "compilation", item)
			})
		},
	}

	cmd.Flags().StringVar(&postsPath, "posts", "", "JSON file with the source posts (required)")
	cmd.Flags().StringVar(&planPath, "plan", "", "JSON file with a prepared content plan")
	cmd.Flags().StringVar(&planCommand, "command", "", "Planning command for the language model")
	cmd.Flags().StringVar(&title, "title", "", "Title for the compilation")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for deterministic clip selection")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("posts")
	return cmd
}

func printSubmitted(cmd *cobra.Command, ctx *commandContext, jobType string, item *queue.Item) error {
	if ctx.jsonMode() {
		return writeJSON(cmd, api.SubmitResponse{Item: api.FromQueueItem(item)})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Queued %s job as item #%d\n", jobType, item.ID)
	if item.ScheduledAt != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Scheduled for %s\n", item.ScheduledAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func loadSourcePosts(path string) ([]repurpose.SourcePost, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("a posts file is required (--posts)")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read posts file: %w", err)
	}
	var posts []repurpose.SourcePost
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, fmt.Errorf("parse posts file %s: %w", path, err)
	}
	return posts, nil
}

func loadPlanFile(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read plan file: %w", err)
	}
	return string(raw), nil
}
