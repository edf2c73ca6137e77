package generate

import (
	"context"
	"strings"

	"github.com/imasuvo/prompt-studio/pkg/model"
	"github.com/imasuvo/prompt-studio/pkg/prompt"
	"github.com/imasuvo/prompt-studio/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Image runs the single-shot pipeline: enrich the raw prompt with the
// quality prefix, synthesize one image and record the result. The stored
// prompt is the enriched prompt actually sent.
func (u *UseCase) Image(ctx context.Context, rawPrompt string, ratio model.AspectRatio) (*model.ImageItem, error) {
	defer u.report("")

	if strings.TrimSpace(rawPrompt) == "" {
		return nil, goerr.Wrap(ErrEmptyInput, "please enter a prompt for your image")
	}

	u.report("Generating your image...")
	enriched := prompt.Enrich(prompt.ImageStylePrefix, rawPrompt)
	url, err := u.gw.GenerateImage(ctx, enriched, ratio)
	if err != nil {
		return nil, err
	}

	item := model.NewImageItem(enriched, url)
	if err := u.repo.Append(ctx, item); err != nil {
		return nil, goerr.Wrap(err, "failed to record generated image")
	}

	logging.From(ctx).Info("image generated", "id", item.ID, "aspect", ratio)
	return item, nil
}
