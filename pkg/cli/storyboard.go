package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

func storyboardCommand() *cli.Command {
	var (
		cfg    config
		output string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Directory to save the keyframe JPEGs",
			Destination: &output,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "storyboard",
		Usage:     "Expand an idea into a cinematic prompt and render its storyboard keyframes",
		ArgsUsage: "<idea>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.apply(ctx)

			uc, _, err := cfg.newUseCase(ctx, newProgress())
			if err != nil {
				return err
			}

			item, err := uc.Storyboard(ctx, strings.Join(c.Args().Slice(), " "))
			if err != nil {
				return err
			}

			w := c.Root().Writer
			fmt.Fprintf(w, "Storyboard generated: %s\n\n", item.ID)
			fmt.Fprintf(w, "Cinematic prompt:\n%s\n\n", item.CinematicPrompt)
			for i, keyframe := range item.Images {
				fmt.Fprintf(w, "Keyframe %d: %s\n", i+1, keyframe.Prompt)
			}

			if output != "" {
				if err := saveKeyframes(output, item.Images); err != nil {
					return err
				}
				fmt.Fprintf(w, "\nSaved %d keyframes to %s\n", len(item.Images), output)
			}

			return nil
		},
	}
}
