package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
)

// LocalStore keeps artifacts in a directory
type LocalStore struct {
	dir string
}

var _ interfaces.ArtifactStore = (*LocalStore)(nil)

// NewLocalStore creates a store rooted at dir
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// Put writes the artifact, replacing any previous one for the same run
func (s *LocalStore) Put(ctx context.Context, a *model.ResultArtifact) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return goerr.Wrap(err, "failed to create artifact dir", goerr.V("dir", s.dir))
	}

	raw, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal artifact")
	}

	path := filepath.Join(s.dir, FileName(a.Meta.RunID))
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return goerr.Wrap(err, "failed to write artifact", goerr.V("path", path))
	}
	return nil
}

// Get reads the artifact of runID
func (s *LocalStore) Get(ctx context.Context, runID model.RunID) (*model.ResultArtifact, error) {
	if !validRunID(runID) {
		return nil, goerr.Wrap(ErrNotFound, "invalid run ID", goerr.V("run_id", runID))
	}
	path := filepath.Join(s.dir, FileName(runID))
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(ErrNotFound, "no artifact for run", goerr.V("run_id", runID))
		}
		return nil, goerr.Wrap(err, "failed to read artifact", goerr.V("path", path))
	}

	var a model.ResultArtifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, goerr.Wrap(err, "failed to decode artifact", goerr.V("path", path))
	}
	return &a, nil
}

// List returns stored run IDs in lexical order
func (s *LocalStore) List(ctx context.Context) ([]model.RunID, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to list artifact dir", goerr.V("dir", s.dir))
	}

	var ids []model.RunID
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id, ok := parseFileName(e.Name()); ok {
			ids = append(ids, id)
		}
	}
	return sortRunIDs(ids), nil
}
