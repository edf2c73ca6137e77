package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/imasuvo/prompt-studio/pkg/model"
	"github.com/imasuvo/prompt-studio/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// maxSnapshotBytes is the hard ceiling for the serialized history
// snapshot. The oldest items are evicted until the snapshot fits.
const maxSnapshotBytes = 4.5 * 1024 * 1024

const snapshotVersion = 1

type snapshot struct {
	Version int               `json:"version"`
	Items   []json.RawMessage `json:"items"`
}

// Local is a file-backed Repository. The in-memory sequence is the source
// of truth for the session; the snapshot file is rewritten in full on
// every append.
type Local struct {
	mu    sync.Mutex
	path  string
	items []model.Item
}

// NewLocal opens the history store at path, loading the existing snapshot
// if any. An absent or corrupt snapshot is logged and treated as empty.
func NewLocal(ctx context.Context, path string) (*Local, error) {
	if path == "" {
		return nil, goerr.New("history path is required")
	}

	s := &Local{path: path}
	s.items = load(ctx, path)
	return s, nil
}

func load(ctx context.Context, path string) []model.Item {
	logger := logging.From(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("failed to read history snapshot, starting empty", "path", path, "error", err)
		}
		return nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logger.Warn("history snapshot is corrupt, starting empty", "path", path, "error", err)
		return nil
	}
	if snap.Version != snapshotVersion {
		logger.Warn("history snapshot has unknown version, starting empty", "path", path, "version", snap.Version)
		return nil
	}

	items := make([]model.Item, 0, len(snap.Items))
	for _, raw := range snap.Items {
		item, err := model.UnmarshalItem(raw)
		if err != nil {
			logger.Warn("skipping unreadable history record", "error", err)
			continue
		}
		items = append(items, item)
	}

	return items
}

func (s *Local) Append(ctx context.Context, item model.Item) error {
	if item == nil {
		return goerr.New("history item is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append([]model.Item{item}, s.items...)
	s.persist(ctx)
	return nil
}

// persist serializes the log and enforces the size ceiling, dropping the
// oldest items one at a time. The newest item always survives, even when
// it alone exceeds the ceiling. Write failures are logged only; the
// in-memory log stands.
func (s *Local) persist(ctx context.Context) {
	logger := logging.From(ctx)

	data, err := s.serialize()
	if err != nil {
		logger.Error("failed to serialize history snapshot", "error", err)
		return
	}

	for len(data) > maxSnapshotBytes && len(s.items) > 1 {
		s.items = s.items[:len(s.items)-1]
		if data, err = s.serialize(); err != nil {
			logger.Error("failed to serialize history snapshot", "error", err)
			return
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		logger.Error("failed to create history directory", "path", s.path, "error", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		logger.Error("failed to write history snapshot", "path", s.path, "error", err)
	}
}

func (s *Local) serialize() ([]byte, error) {
	snap := snapshot{
		Version: snapshotVersion,
		Items:   make([]json.RawMessage, 0, len(s.items)),
	}
	for _, item := range s.items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to marshal history record", goerr.V("id", item.ItemID()))
		}
		snap.Items = append(snap.Items, raw)
	}
	return json.Marshal(snap)
}

func (s *Local) List(ctx context.Context) []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.Item, len(s.items))
	copy(items, s.items)
	return items
}

func (s *Local) FilterByKind(ctx context.Context, kind model.Kind) []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []model.Item
	for _, item := range s.items {
		if item.ItemKind() == kind {
			items = append(items, item)
		}
	}
	return items
}
