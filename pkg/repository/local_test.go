package repository_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/imasuvo/prompt-studio/pkg/model"
	"github.com/imasuvo/prompt-studio/pkg/repository"
	"github.com/m-mizutani/gt"
)

func tempStore(t *testing.T) (*repository.Local, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.json")
	store, err := repository.NewLocal(context.Background(), path)
	gt.NoError(t, err)
	return store, path
}

func TestAppendPrependsNewest(t *testing.T) {
	ctx := context.Background()
	store, _ := tempStore(t)

	first := model.NewImageItem("first", "data:image/jpeg;base64,AAAA")
	second := model.NewImageItem("second", "data:image/jpeg;base64,BBBB")
	gt.NoError(t, store.Append(ctx, first))
	gt.NoError(t, store.Append(ctx, second))

	items := store.List(ctx)
	gt.A(t, items).Length(2)
	gt.Equal(t, items[0].ItemID(), second.ID)
	gt.Equal(t, items[1].ItemID(), first.ID)
}

func TestPersistAndReload(t *testing.T) {
	ctx := context.Background()
	store, path := tempStore(t)

	item := model.NewGIFItem("a sleepy cat", "loop script", []model.Keyframe{
		{URL: "data:image/jpeg;base64,AAAA", Prompt: "cat yawns"},
	})
	gt.NoError(t, store.Append(ctx, item))

	reloaded, err := repository.NewLocal(ctx, path)
	gt.NoError(t, err)

	items := reloaded.List(ctx)
	gt.A(t, items).Length(1)
	gt.V(t, items[0]).Equal(model.Item(item))
}

func TestCorruptSnapshotLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.json")
	gt.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := repository.NewLocal(ctx, path)
	gt.NoError(t, err)
	gt.A(t, store.List(ctx)).Length(0)
}

func TestUnknownVersionLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.json")
	gt.NoError(t, os.WriteFile(path, []byte(`{"version":99,"items":[]}`), 0o600))

	store, err := repository.NewLocal(ctx, path)
	gt.NoError(t, err)
	gt.A(t, store.List(ctx)).Length(0)
}

func TestEvictionDropsOldestUntilFit(t *testing.T) {
	ctx := context.Background()
	store, path := tempStore(t)

	// ~1 MiB per item, so the 4.5 MiB ceiling holds at most four.
	payload := "data:image/jpeg;base64," + strings.Repeat("A", 1<<20)
	var ids []string
	for range 6 {
		item := model.NewImageItem("big", payload)
		ids = append(ids, item.ID)
		gt.NoError(t, store.Append(ctx, item))
	}

	items := store.List(ctx)
	gt.True(t, len(items) < 6)

	// Newest first, relative order preserved.
	for i, item := range items {
		gt.Equal(t, item.ItemID(), ids[len(ids)-1-i])
	}

	data, err := os.ReadFile(path)
	gt.NoError(t, err)
	gt.True(t, len(data) <= 4718592)
}

func TestOversizedSingleItemSurvives(t *testing.T) {
	ctx := context.Background()
	store, _ := tempStore(t)

	payload := "data:image/jpeg;base64," + strings.Repeat("A", 5<<20)
	item := model.NewImageItem("giant", payload)
	gt.NoError(t, store.Append(ctx, item))

	items := store.List(ctx)
	gt.A(t, items).Length(1)
	gt.Equal(t, items[0].ItemID(), item.ID)
}

func TestPersistFailureKeepsInMemoryLog(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "history.json")
	store, err := repository.NewLocal(ctx, path)
	gt.NoError(t, err)

	// Make the snapshot path unwritable.
	gt.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	item := model.NewImageItem("unwritable", "data:image/jpeg;base64,AAAA")
	gt.NoError(t, store.Append(ctx, item))
	gt.A(t, store.List(ctx)).Length(1)
}

func TestFilterByKindIsStablePartition(t *testing.T) {
	ctx := context.Background()
	store, _ := tempStore(t)

	kinds := []model.Kind{
		model.KindImage, model.KindGIF, model.KindStoryboard,
		model.KindImage, model.KindStoryboard, model.KindImage,
	}
	for _, kind := range kinds {
		var item model.Item
		switch kind {
		case model.KindImage:
			item = model.NewImageItem("p", "data:image/jpeg;base64,AAAA")
		case model.KindStoryboard:
			item = model.NewStoryboardItem("i", "c", []model.Keyframe{{URL: "u", Prompt: "p"}})
		case model.KindGIF:
			item = model.NewGIFItem("i", "g", []model.Keyframe{{URL: "u", Prompt: "p"}})
		}
		gt.NoError(t, store.Append(ctx, item))
	}

	all := store.List(ctx)
	var merged []model.Item
	seen := map[string]bool{}
	for _, kind := range []model.Kind{model.KindImage, model.KindGIF, model.KindStoryboard} {
		for _, item := range store.FilterByKind(ctx, kind) {
			gt.Equal(t, item.ItemKind(), kind)
			gt.False(t, seen[item.ItemID()])
			seen[item.ItemID()] = true
			merged = append(merged, item)
		}
	}
	gt.Equal(t, len(merged), len(all))

	// Within each kind the relative order matches the full log.
	for _, kind := range []model.Kind{model.KindImage, model.KindGIF, model.KindStoryboard} {
		filtered := store.FilterByKind(ctx, kind)
		idx := 0
		for _, item := range all {
			if item.ItemKind() == kind {
				gt.Equal(t, filtered[idx].ItemID(), item.ItemID())
				idx++
			}
		}
		gt.Equal(t, idx, len(filtered))
	}
}

func TestSnapshotEnvelope(t *testing.T) {
	ctx := context.Background()
	store, path := tempStore(t)
	gt.NoError(t, store.Append(ctx, model.NewImageItem("p", "data:image/jpeg;base64,AAAA")))

	data, err := os.ReadFile(path)
	gt.NoError(t, err)

	var snap struct {
		Version int               `json:"version"`
		Items   []json.RawMessage `json:"items"`
	}
	gt.NoError(t, json.Unmarshal(data, &snap))
	gt.Equal(t, snap.Version, 1)
	gt.A(t, snap.Items).Length(1)
}
