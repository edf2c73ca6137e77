// Package generate drives the prompt-to-media pipeline: optional text
// enrichment, optional keyframe decomposition, sequential image synthesis
// and assembly of one history record per successful run.
package generate

import (
	"github.com/imasuvo/prompt-studio/pkg/gateway"
	"github.com/imasuvo/prompt-studio/pkg/repository"
	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrEmptyInput rejects blank input before any model call is made.
	ErrEmptyInput = goerr.New("input is empty")

	// ErrEmptyKeyframes fires when decomposition yields zero keyframe
	// prompts; no image requests are issued in that case.
	ErrEmptyKeyframes = goerr.New("could not generate keyframes")
)

// ProgressFunc receives a human-readable label before each pipeline step.
// Only the most recent label is meaningful; an empty label clears it.
type ProgressFunc func(label string)

type UseCase struct {
	gw       gateway.Gateway
	repo     repository.Repository
	progress ProgressFunc
}

type Option func(*UseCase)

// WithProgress installs a step label consumer.
func WithProgress(fn ProgressFunc) Option {
	return func(u *UseCase) {
		u.progress = fn
	}
}

func New(gw gateway.Gateway, repo repository.Repository, opts ...Option) *UseCase {
	u := &UseCase{
		gw:       gw,
		repo:     repo,
		progress: func(string) {},
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

func (u *UseCase) report(label string) {
	u.progress(label)
}
