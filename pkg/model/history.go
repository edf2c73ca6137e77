package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// Kind discriminates the history record variants.
type Kind string

const (
	KindImage      Kind = "image"
	KindStoryboard Kind = "storyboard"
	KindGIF        Kind = "gif"
)

// Keyframe is one generated still of a storyboard or GIF loop.
// Prompt is the decomposition output as returned by the model,
// without the style prefix used for the actual image request.
type Keyframe struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
}

// Item is one persisted artifact of a pipeline run. Items are immutable
// once created.
type Item interface {
	ItemID() string
	ItemKind() Kind
	ItemTimestamp() int64
}

// ImageItem is a single generated image.
type ImageItem struct {
	ID        string `json:"id"`
	Kind      Kind   `json:"kind"`
	Timestamp int64  `json:"timestamp"`
	Prompt    string `json:"prompt"`
	ImageURL  string `json:"imageUrl"`
}

// StoryboardItem is an ordered keyframe sequence for a cinematic scene.
type StoryboardItem struct {
	ID              string     `json:"id"`
	Kind            Kind       `json:"kind"`
	Timestamp       int64      `json:"timestamp"`
	Idea            string     `json:"idea"`
	CinematicPrompt string     `json:"cinematicPrompt"`
	Images          []Keyframe `json:"images"`
}

// GIFItem is an ordered keyframe sequence for a looping animation.
type GIFItem struct {
	ID              string     `json:"id"`
	Kind            Kind       `json:"kind"`
	Timestamp       int64      `json:"timestamp"`
	Idea            string     `json:"idea"`
	GeneratedPrompt string     `json:"generatedPrompt"`
	Images          []Keyframe `json:"images"`
}

func newID() string { return uuid.New().String() }

func nowMilli() int64 { return time.Now().UnixMilli() }

// NewImageItem assembles a single-image record.
func NewImageItem(prompt, imageURL string) *ImageItem {
	return &ImageItem{
		ID:        newID(),
		Kind:      KindImage,
		Timestamp: nowMilli(),
		Prompt:    prompt,
		ImageURL:  imageURL,
	}
}

// NewStoryboardItem assembles a storyboard record. Keyframe order is
// storyboard chronology.
func NewStoryboardItem(idea, cinematicPrompt string, images []Keyframe) *StoryboardItem {
	return &StoryboardItem{
		ID:              newID(),
		Kind:            KindStoryboard,
		Timestamp:       nowMilli(),
		Idea:            idea,
		CinematicPrompt: cinematicPrompt,
		Images:          images,
	}
}

// NewGIFItem assembles a GIF keyframe record. Keyframe order is loop order.
func NewGIFItem(idea, generatedPrompt string, images []Keyframe) *GIFItem {
	return &GIFItem{
		ID:              newID(),
		Kind:            KindGIF,
		Timestamp:       nowMilli(),
		Idea:            idea,
		GeneratedPrompt: generatedPrompt,
		Images:          images,
	}
}

func (x *ImageItem) ItemID() string { return x.ID }
func (x *ImageItem) ItemKind() Kind { return x.Kind }
func (x *ImageItem) ItemTimestamp() int64 { return x.Timestamp }

func (x *StoryboardItem) ItemID() string { return x.ID }
func (x *StoryboardItem) ItemKind() Kind { return x.Kind }
func (x *StoryboardItem) ItemTimestamp() int64 { return x.Timestamp }

func (x *GIFItem) ItemID() string { return x.ID }
func (x *GIFItem) ItemKind() Kind { return x.Kind }
func (x *GIFItem) ItemTimestamp() int64 { return x.Timestamp }

// UnmarshalItem decodes one serialized history record by its kind tag.
func UnmarshalItem(data []byte) (Item, error) {
	var probe struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, goerr.Wrap(err, "failed to probe history record kind")
	}

	switch probe.Kind {
	case KindImage:
		var item ImageItem
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal image record")
		}
		return &item, nil
	case KindStoryboard:
		var item StoryboardItem
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal storyboard record")
		}
		return &item, nil
	case KindGIF:
		var item GIFItem
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal gif record")
		}
		return &item, nil
	default:
		return nil, goerr.New("unknown history record kind", goerr.V("kind", probe.Kind))
	}
}
