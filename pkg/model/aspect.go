package model

import "github.com/m-mizutani/goerr/v2"

// AspectRatio is the fixed set of ratios the image model accepts.
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectPortrait  AspectRatio = "9:16"
	AspectLandscape AspectRatio = "16:9"
	AspectClassic   AspectRatio = "4:3"
	AspectVertical  AspectRatio = "3:4"
)

// AspectRatios lists all accepted ratios in display order.
func AspectRatios() []AspectRatio {
	return []AspectRatio{AspectSquare, AspectPortrait, AspectLandscape, AspectClassic, AspectVertical}
}

// ParseAspectRatio validates a user-supplied ratio string.
func ParseAspectRatio(s string) (AspectRatio, error) {
	for _, r := range AspectRatios() {
		if s == string(r) {
			return r, nil
		}
	}
	return "", goerr.New("unsupported aspect ratio", goerr.V("ratio", s))
}
