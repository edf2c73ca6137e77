package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/imasuvo/prompt-studio/pkg/model"
	"github.com/imasuvo/prompt-studio/pkg/utils/datauri"
	"github.com/m-mizutani/goerr/v2"
)

// imageFileName derives an export file name from a prompt: first 40
// characters, non-alphanumerics replaced by underscores, lowercased.
func imageFileName(prompt string) string {
	name := strings.ToLower(prompt)
	if len(name) > 40 {
		name = name[:40]
	}

	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	out := b.String()
	if strings.Trim(out, "_") == "" {
		out = "generated-image"
	}
	return out + ".jpeg"
}

// saveImage decodes an image payload reference and writes it to path.
func saveImage(path, url string) error {
	data, _, err := datauri.Decode(url)
	if err != nil {
		return goerr.Wrap(err, "failed to decode image payload")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write image file", goerr.V("path", path))
	}
	return nil
}

// resolveImagePath treats an existing directory as a target directory
// and derives the file name from the prompt.
func resolveImagePath(output, prompt string) string {
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, imageFileName(prompt))
	}
	return output
}

// saveKeyframes writes every keyframe of a storyboard or GIF set into
// dir, numbered in sequence order.
func saveKeyframes(dir string, images []model.Keyframe) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create output directory", goerr.V("dir", dir))
	}

	for i, keyframe := range images {
		path := filepath.Join(dir, fmt.Sprintf("keyframe_%d.jpeg", i+1))
		if err := saveImage(path, keyframe.URL); err != nil {
			return err
		}
	}
	return nil
}
