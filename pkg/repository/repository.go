package repository

import (
	"context"

	"github.com/imasuvo/prompt-studio/pkg/model"
)

// Repository is the bounded, newest-first history log of generated
// artifacts.
type Repository interface {
	// Append prepends an item and persists the snapshot. Persistence
	// failures do not undo the in-memory mutation.
	Append(ctx context.Context, item model.Item) error

	// List returns all items, newest first.
	List(ctx context.Context) []model.Item

	// FilterByKind returns the items of one kind, preserving order.
	FilterByKind(ctx context.Context, kind model.Kind) []model.Item
}
