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

// GIF runs the looping-animation pipeline. Structurally the storyboard
// path with the GIF script and keyframe policies; keyframes are always
// square.
func (u *UseCase) GIF(ctx context.Context, idea string) (*model.GIFItem, error) {
	defer u.report("")

	if strings.TrimSpace(idea) == "" {
		return nil, goerr.Wrap(ErrEmptyInput, "please enter an idea for your GIF")
	}

	u.report("Crafting GIF script...")
	script, err := u.gw.CompleteText(ctx, prompt.GIFScriptSystem, idea)
	if err != nil {
		return nil, err
	}

	u.report("Breaking script into keyframes...")
	keyframePrompts, err := u.gw.CompleteStructured(ctx, prompt.GIFKeyframesSchema, prompt.GIFKeyframesSystem, script)
	if err != nil {
		return nil, err
	}
	if len(keyframePrompts) == 0 {
		return nil, goerr.Wrap(ErrEmptyKeyframes, "could not generate GIF keyframes")
	}

	images := make([]model.Keyframe, 0, len(keyframePrompts))
	for i, keyframePrompt := range keyframePrompts {
		u.report(fmt.Sprintf("Generating keyframe %d of %d...", i+1, len(keyframePrompts)))
		url, err := u.gw.GenerateImage(ctx, prompt.Enrich(prompt.GIFStylePrefix, keyframePrompt), model.AspectSquare)
		if err != nil {
			return nil, err
		}
		images = append(images, model.Keyframe{URL: url, Prompt: keyframePrompt})
	}

	item := model.NewGIFItem(idea, script, images)
	if err := u.repo.Append(ctx, item); err != nil {
		return nil, goerr.Wrap(err, "failed to record GIF keyframes")
	}

	logging.From(ctx).Info("gif keyframes generated", "id", item.ID, "keyframes", len(images))
	return item, nil
}
