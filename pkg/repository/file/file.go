// Package file persists the rolling memory state as a single JSON document
// on local disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/utils/logging"
	"github.com/secmon-lab/stormfront/pkg/utils/safe"
)

// DefaultPath is the state file used when none is configured
const DefaultPath = "storm_memory.json"

// Repository reads and writes the whole state file on every call. It does
// not lock the file; concurrent processes sharing one path are unsupported.
type Repository struct {
	path string
}

var _ interfaces.MemoryStateRepository = &Repository{}

func New(path string) *Repository {
	if path == "" {
		path = DefaultPath
	}
	return &Repository{path: path}
}

// Path returns the state file path
func (r *Repository) Path() string {
	return r.path
}

// Load returns the stored state. A missing, empty or corrupt file is an
// empty state.
func (r *Repository) Load(ctx context.Context) (*model.MemoryState, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.NewMemoryState(), nil
		}
		return nil, goerr.Wrap(err, "failed to read memory file", goerr.V("path", r.path))
	}

	var state model.MemoryState
	if err := json.Unmarshal(raw, &state); err != nil {
		logging.From(ctx).Warn("memory file is corrupt, starting empty",
			"path", r.path,
			"error", err)
		return model.NewMemoryState(), nil
	}
	if state.RecentHistory == nil {
		state.RecentHistory = []string{}
	}
	return &state, nil
}

// Save writes state to a temporary file in the same directory and renames it
// over the state file, so a crash never leaves a truncated file behind.
func (r *Repository) Save(ctx context.Context, state *model.MemoryState) error {
	if state == nil {
		state = model.NewMemoryState()
	}
	if state.RecentHistory == nil {
		state = state.Copy()
	}

	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal memory state")
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return goerr.Wrap(err, "failed to create memory dir", goerr.V("dir", dir))
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp file", goerr.V("dir", dir))
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		safe.Close(ctx, tmp)
		safe.Remove(ctx, tmpPath)
		return goerr.Wrap(err, "failed to write temp file", goerr.V("path", tmpPath))
	}
	if err := tmp.Sync(); err != nil {
		safe.Close(ctx, tmp)
		safe.Remove(ctx, tmpPath)
		return goerr.Wrap(err, "failed to sync temp file", goerr.V("path", tmpPath))
	}
	if err := tmp.Close(); err != nil {
		safe.Remove(ctx, tmpPath)
		return goerr.Wrap(err, "failed to close temp file", goerr.V("path", tmpPath))
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		safe.Remove(ctx, tmpPath)
		return goerr.Wrap(err, "failed to replace memory file", goerr.V("path", r.path))
	}
	return nil
}

func (r *Repository) Close() error {
	return nil
}
