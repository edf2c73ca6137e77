package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/imasuvo/prompt-studio/pkg/model"
	"github.com/urfave/cli/v3"
)

func imageCommand() *cli.Command {
	var (
		cfg    config
		aspect string
		output string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "aspect",
			Aliases:     []string{"a"},
			Usage:       "Aspect ratio (1:1, 9:16, 16:9, 4:3, 3:4)",
			Value:       "1:1",
			Sources:     cli.EnvVars("PROMPT_STUDIO_ASPECT"),
			Destination: &aspect,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "File or directory to save the generated JPEG",
			Destination: &output,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "image",
		Usage:     "Generate a single image from a prompt",
		ArgsUsage: "<prompt>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.apply(ctx)

			ratio, err := model.ParseAspectRatio(aspect)
			if err != nil {
				return err
			}

			uc, _, err := cfg.newUseCase(ctx, newProgress())
			if err != nil {
				return err
			}

			item, err := uc.Image(ctx, strings.Join(c.Args().Slice(), " "), ratio)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Image generated: %s\n", item.ID)
			if output != "" {
				path := resolveImagePath(output, item.Prompt)
				if err := saveImage(path, item.ImageURL); err != nil {
					return err
				}
				fmt.Fprintf(c.Root().Writer, "Saved to %s\n", path)
			}

			return nil
		},
	}
}
