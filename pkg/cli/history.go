package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/imasuvo/prompt-studio/pkg/model"
	"github.com/imasuvo/prompt-studio/pkg/repository"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Browse previously generated artifacts",
		Commands: []*cli.Command{
			historyListCommand(),
			historyShowCommand(),
		},
	}
}

func historyListCommand() *cli.Command {
	var (
		cfg  config
		kind string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "kind",
			Aliases:     []string{"k"},
			Usage:       "Filter by kind (image, storyboard, gif)",
			Destination: &kind,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "list",
		Usage: "List history records, newest first",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.apply(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			var items []model.Item
			if kind == "" {
				items = repo.List(ctx)
			} else {
				items = repo.FilterByKind(ctx, model.Kind(kind))
			}

			if len(items) == 0 {
				fmt.Fprintf(c.Root().Writer, "No history records found\n")
				return nil
			}

			for _, item := range items {
				fmt.Fprintf(c.Root().Writer, "%s\t%-10s\t%s\t%s\n",
					item.ItemID(),
					item.ItemKind(),
					time.UnixMilli(item.ItemTimestamp()).Format("2006-01-02 15:04:05"),
					truncate(itemTitle(item), 60),
				)
			}

			return nil
		},
	}
}

func historyShowCommand() *cli.Command {
	var (
		cfg    config
		output string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "File or directory to export the record's images",
			Destination: &output,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "show",
		Usage:     "Show one history record in full",
		ArgsUsage: "<id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.apply(ctx)

			id := c.Args().First()
			if id == "" {
				return goerr.New("record id is required")
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			item := findItem(ctx, repo, id)
			if item == nil {
				return goerr.New("history record not found", goerr.V("id", id))
			}

			printItem(c, item)

			if output != "" {
				return exportItem(output, item)
			}
			return nil
		},
	}
}

func findItem(ctx context.Context, repo repository.Repository, id string) model.Item {
	for _, item := range repo.List(ctx) {
		if item.ItemID() == id {
			return item
		}
	}
	return nil
}

func printItem(c *cli.Command, item model.Item) {
	w := c.Root().Writer
	created := time.UnixMilli(item.ItemTimestamp()).Format("2006-01-02 15:04:05")

	switch x := item.(type) {
	case *model.ImageItem:
		fmt.Fprintf(w, "Image %s (%s)\n", x.ID, created)
		fmt.Fprintf(w, "Prompt: %s\n", x.Prompt)
		fmt.Fprintf(w, "Payload: %d bytes\n", len(x.ImageURL))
	case *model.StoryboardItem:
		fmt.Fprintf(w, "Storyboard %s (%s)\n", x.ID, created)
		fmt.Fprintf(w, "Idea: %s\n", x.Idea)
		fmt.Fprintf(w, "Cinematic prompt: %s\n", x.CinematicPrompt)
		for i, keyframe := range x.Images {
			fmt.Fprintf(w, "Keyframe %d: %s\n", i+1, keyframe.Prompt)
		}
	case *model.GIFItem:
		fmt.Fprintf(w, "GIF %s (%s)\n", x.ID, created)
		fmt.Fprintf(w, "Idea: %s\n", x.Idea)
		fmt.Fprintf(w, "Loop script: %s\n", x.GeneratedPrompt)
		for i, keyframe := range x.Images {
			fmt.Fprintf(w, "Keyframe %d: %s\n", i+1, keyframe.Prompt)
		}
	}
}

func exportItem(output string, item model.Item) error {
	switch x := item.(type) {
	case *model.ImageItem:
		return saveImage(resolveImagePath(output, x.Prompt), x.ImageURL)
	case *model.StoryboardItem:
		return saveKeyframes(output, x.Images)
	case *model.GIFItem:
		return saveKeyframes(output, x.Images)
	default:
		return goerr.New("unknown history record kind")
	}
}

func itemTitle(item model.Item) string {
	switch x := item.(type) {
	case *model.ImageItem:
		return x.Prompt
	case *model.StoryboardItem:
		return x.Idea
	case *model.GIFItem:
		return x.Idea
	default:
		return ""
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
