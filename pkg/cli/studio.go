package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/imasuvo/prompt-studio/pkg/model"
	"github.com/imasuvo/prompt-studio/pkg/repository"
	"github.com/imasuvo/prompt-studio/pkg/usecase/generate"
	"github.com/urfave/cli/v3"
)

func studioCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "studio",
		Usage: "Interactive shell for all generators",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.apply(ctx)

			uc, repo, err := cfg.newUseCase(ctx, newProgress())
			if err != nil {
				return err
			}

			rl, err := readline.New("studio> ")
			if err != nil {
				return err
			}
			defer rl.Close()

			w := c.Root().Writer
			fmt.Fprintf(w, "Prompt Studio. Commands: image, storyboard, gif, history, exit.\n")

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					continue
				}
				if err != nil { // io.EOF
					break
				}

				verb, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
				switch verb {
				case "":
					continue
				case "exit", "quit":
					return nil
				case "help":
					fmt.Fprintf(w, "  image <prompt>       generate a single image\n")
					fmt.Fprintf(w, "  storyboard <idea>    generate storyboard keyframes\n")
					fmt.Fprintf(w, "  gif <idea>           generate looping GIF keyframes\n")
					fmt.Fprintf(w, "  history              list generated artifacts\n")
					fmt.Fprintf(w, "  exit                 leave the studio\n")
				case "image", "storyboard", "gif":
					runStudioGeneration(ctx, w, uc, verb, rest)
				case "history":
					printStudioHistory(ctx, w, repo)
				default:
					fmt.Fprintf(w, "Unknown command %q, try 'help'\n", verb)
				}
			}

			return nil
		},
	}
}

// runStudioGeneration runs one pipeline and renders its outcome as a
// single inline message, keeping the shell alive on failure.
func runStudioGeneration(ctx context.Context, w io.Writer, uc *generate.UseCase, verb, input string) {
	switch verb {
	case "image":
		item, err := uc.Image(ctx, input, model.AspectSquare)
		if err != nil {
			fmt.Fprintf(w, "Error: %s\n", err.Error())
			return
		}
		fmt.Fprintf(w, "Image generated: %s\n", item.ID)
	case "storyboard":
		item, err := uc.Storyboard(ctx, input)
		if err != nil {
			fmt.Fprintf(w, "Error: %s\n", err.Error())
			return
		}
		fmt.Fprintf(w, "Storyboard generated: %s (%d keyframes)\n", item.ID, len(item.Images))
	case "gif":
		item, err := uc.GIF(ctx, input)
		if err != nil {
			fmt.Fprintf(w, "Error: %s\n", err.Error())
			return
		}
		fmt.Fprintf(w, "GIF keyframes generated: %s (%d keyframes)\n", item.ID, len(item.Images))
	}
}

func printStudioHistory(ctx context.Context, w io.Writer, repo repository.Repository) {
	items := repo.List(ctx)
	if len(items) == 0 {
		fmt.Fprintf(w, "No history records found\n")
		return
	}

	for _, item := range items {
		fmt.Fprintf(w, "%s\t%-10s\t%s\t%s\n",
			item.ItemID(),
			item.ItemKind(),
			time.UnixMilli(item.ItemTimestamp()).Format("2006-01-02 15:04:05"),
			truncate(itemTitle(item), 60),
		)
	}
}
