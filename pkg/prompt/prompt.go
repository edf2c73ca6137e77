// Package prompt holds the static enrichment policies consumed by the
// generation pipeline: system instructions, decomposition schemas and the
// style prefixes applied to image prompts.
package prompt

import (
	_ "embed"

	"github.com/imasuvo/prompt-studio/pkg/gateway"
)

//go:embed templates/cinematic.md
var CinematicSystem string

//go:embed templates/storyboard_breakdown.md
var StoryboardSystem string

//go:embed templates/gif_script.md
var GIFScriptSystem string

//go:embed templates/gif_keyframes.md
var GIFKeyframesSystem string

// Style prefixes prepended to image prompts before synthesis. The stored
// keyframe prompt stays unprefixed.
const (
	ImageStylePrefix      = "cinematic, photorealistic, 8k, masterpiece, "
	StoryboardStylePrefix = "cinematic film still, consistent lighting and composition, "
	GIFStylePrefix        = "vibrant colors, clean lines, "
)

// Enrich applies a style prefix to a raw prompt.
func Enrich(prefix, raw string) string {
	return prefix + raw
}

// StoryboardSchema constrains the storyboard decomposition output.
var StoryboardSchema = gateway.SchemaDescriptor{
	Collection:            "storyboard_prompts",
	CollectionDescription: "An array of 3 to 4 image prompts for the storyboard.",
	Prompt:                "keyframe_prompt",
	PromptDescription:     "A concise, descriptive prompt for a single keyframe image.",
}

// GIFKeyframesSchema constrains the GIF loop decomposition output.
var GIFKeyframesSchema = gateway.SchemaDescriptor{
	Collection:            "gif_keyframes",
	CollectionDescription: "An array of 3 to 4 image prompts for the GIF animation keyframes.",
	Prompt:                "keyframe_prompt",
	PromptDescription:     "A concise, descriptive prompt for a single animation keyframe image.",
}
