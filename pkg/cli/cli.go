package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "prompt-studio",
		Usage: "Turn short ideas into enriched prompts and generated media",
		Commands: []*cli.Command{
			imageCommand(),
			storyboardCommand(),
			gifCommand(),
			historyCommand(),
			studioCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
