package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/imasuvo/prompt-studio/pkg/model"
	"github.com/imasuvo/prompt-studio/pkg/prompt"
	"github.com/imasuvo/prompt-studio/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Storyboard runs the cinematic pipeline: expand the idea into a
// cinematic paragraph, decompose it into keyframe prompts, then render
// each keyframe in order. Keyframes are rendered sequentially to keep
// progress labels deterministic and to stay gentle on the provider's
// rate limiter. Any keyframe failure aborts the run; nothing partial is
// recorded.
func (u *UseCase) Storyboard(ctx context.Context, idea string) (*model.StoryboardItem, error) {
	defer u.report("")

	if strings.TrimSpace(idea) == "" {
		return nil, goerr.Wrap(ErrEmptyInput, "please enter an idea for your video")
	}

	u.report("Crafting cinematic prompt...")
	cinematic, err := u.gw.CompleteText(ctx, prompt.CinematicSystem, idea)
	if err != nil {
		return nil, err
	}

	u.report("Breaking prompt into storyboard keyframes...")
	keyframePrompts, err := u.gw.CompleteStructured(ctx, prompt.StoryboardSchema, prompt.StoryboardSystem, cinematic)
	if err != nil {
		return nil, err
	}
	if len(keyframePrompts) == 0 {
		return nil, goerr.Wrap(ErrEmptyKeyframes, "could not generate storyboard keyframes")
	}

	images := make([]model.Keyframe, 0, len(keyframePrompts))
	for i, keyframePrompt := range keyframePrompts {
		u.report(fmt.Sprintf("Generating keyframe %d of %d...", i+1, len(keyframePrompts)))
		url, err := u.gw.GenerateImage(ctx, prompt.Enrich(prompt.StoryboardStylePrefix, keyframePrompt), model.AspectLandscape)
		if err != nil {
			return nil, err
		}
		images = append(images, model.Keyframe{URL: url, Prompt: keyframePrompt})
	}

	item := model.NewStoryboardItem(idea, cinematic, images)
	if err := u.repo.Append(ctx, item); err != nil {
		return nil, goerr.Wrap(err, "failed to record storyboard")
	}

	logging.From(ctx).Info("storyboard generated", "id", item.ID, "keyframes", len(images))
	return item, nil
}
