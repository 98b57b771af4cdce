package artifact_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/service/artifact"
)

func newArtifact(text string) *model.ResultArtifact {
	idx := 0
	result := &model.RunResult{
		ID:            model.NewRunID(),
		Timestamp:     time.Now().UTC(),
		Model:         "llama3:8b",
		Prompt:        "What is 2+2?",
		SelectedIndex: &idx,
		Text:          text,
		Trajectories:  []model.Trajectory{{Index: 0, Text: text}},
	}
	return model.NewResultArtifact(result)
}

func runArtifactStoreTest(t *testing.T, store interfaces.ArtifactStore) {
	ctx := context.Background()

	a1 := newArtifact("4")
	a2 := newArtifact("four")
	gt.NoError(t, store.Put(ctx, a1)).Required()
	gt.NoError(t, store.Put(ctx, a2)).Required()

	got, err := store.Get(ctx, a1.Meta.RunID)
	gt.NoError(t, err).Required()
	gt.Value(t, got.FinalOutput).Equal("4")
	gt.Value(t, got.Meta.RunID).Equal(a1.Meta.RunID)
	gt.Value(t, *got.Meta.SelectedIndex).Equal(0)

	ids, err := store.List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, ids).Has(a1.Meta.RunID).Has(a2.Meta.RunID)

	_, err = store.Get(ctx, model.NewRunID())
	gt.Error(t, err).Is(artifact.ErrNotFound)
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	store := artifact.NewLocalStore(filepath.Join(dir, "results"))

	ids, err := store.List(context.Background())
	gt.NoError(t, err).Required()
	gt.Array(t, ids).Length(0)

	runArtifactStoreTest(t, store)

	// unrelated files are ignored
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "results", "notes.txt"), []byte("x"), 0644)).Required()
	ids, err = store.List(context.Background())
	gt.NoError(t, err).Required()
	gt.Array(t, ids).Length(2)

	_, err = store.Get(context.Background(), "../results/x")
	gt.Error(t, err).Is(artifact.ErrNotFound)
}

func TestFileName(t *testing.T) {
	gt.Value(t, artifact.FileName("abc")).Equal("storm_result_abc.json")
}

func TestGCSStore(t *testing.T) {
	bucket := os.Getenv("TEST_GCS_BUCKET")
	if bucket == "" {
		t.Skip("TEST_GCS_BUCKET not set")
	}

	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	gt.NoError(t, err).Required()
	t.Cleanup(func() { _ = client.Close() })

	prefix := fmt.Sprintf("test/%d", time.Now().UnixNano())
	runArtifactStoreTest(t, artifact.NewGCSStore(client, bucket, prefix))
}
