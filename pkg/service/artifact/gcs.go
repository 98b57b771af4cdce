package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/utils/safe"
	"google.golang.org/api/iterator"
)

// GCSStore keeps artifacts as objects under gs://bucket/prefix/
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.ArtifactStore = (*GCSStore)(nil)

// NewGCSStore creates a store. The client is owned by the caller.
func NewGCSStore(client *storage.Client, bucket, prefix string) *GCSStore {
	return &GCSStore{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (s *GCSStore) objectName(runID model.RunID) string {
	if s.prefix == "" {
		return FileName(runID)
	}
	return path.Join(s.prefix, FileName(runID))
}

// Put uploads the artifact
func (s *GCSStore) Put(ctx context.Context, a *model.ResultArtifact) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal artifact")
	}

	name := s.objectName(a.Meta.RunID)
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(raw); err != nil {
		safe.Close(ctx, w)
		return goerr.Wrap(err, "failed to upload artifact", goerr.V("bucket", s.bucket), goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize artifact upload", goerr.V("bucket", s.bucket), goerr.V("object", name))
	}
	return nil
}

// Get downloads the artifact of runID
func (s *GCSStore) Get(ctx context.Context, runID model.RunID) (*model.ResultArtifact, error) {
	if !validRunID(runID) {
		return nil, goerr.Wrap(ErrNotFound, "invalid run ID", goerr.V("run_id", runID))
	}
	name := s.objectName(runID)
	r, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(ErrNotFound, "no artifact for run", goerr.V("run_id", runID))
		}
		return nil, goerr.Wrap(err, "failed to open artifact", goerr.V("bucket", s.bucket), goerr.V("object", name))
	}
	defer safe.Close(ctx, r)

	var a model.ResultArtifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, goerr.Wrap(err, "failed to decode artifact", goerr.V("object", name))
	}
	return &a, nil
}

// List returns stored run IDs in lexical order
func (s *GCSStore) List(ctx context.Context) ([]model.RunID, error) {
	query := &storage.Query{}
	if s.prefix != "" {
		query.Prefix = s.prefix + "/"
	}

	var ids []model.RunID
	it := s.client.Bucket(s.bucket).Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list artifacts", goerr.V("bucket", s.bucket))
		}
		if id, ok := parseFileName(path.Base(attrs.Name)); ok {
			ids = append(ids, id)
		}
	}
	return sortRunIDs(ids), nil
}
