package config

import (
	"context"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/service/artifact"
	"github.com/secmon-lab/stormfront/pkg/utils/logging"
)

const gcsScheme = "gs://"

// ParseGCSLocation splits "gs://bucket/prefix". ok is false for other
// locations.
func ParseGCSLocation(location string) (bucket, prefix string, ok bool) {
	rest, found := strings.CutPrefix(location, gcsScheme)
	if !found {
		return "", "", false
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	return bucket, strings.Trim(prefix, "/"), true
}

// ArtifactStore opens the result store at location. An empty location
// disables artifacts and returns a nil store. The returned function
// releases the store's resources.
func ArtifactStore(ctx context.Context, location string) (interfaces.ArtifactStore, func(), error) {
	noop := func() {}
	if location == "" {
		return nil, noop, nil
	}

	bucket, prefix, ok := ParseGCSLocation(location)
	if !ok {
		return artifact.NewLocalStore(location), noop, nil
	}
	if bucket == "" {
		return nil, noop, goerr.Wrap(ErrInvalidConfig, "bucket is missing", goerr.V(FieldKey, "result_dir"), goerr.V(ValueKey, location))
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, noop, goerr.Wrap(err, "failed to create storage client")
	}
	logging.Default().Info("Using Cloud Storage result artifacts", "bucket", bucket, "prefix", prefix)

	return artifact.NewGCSStore(client, bucket, prefix), func() {
		if err := client.Close(); err != nil {
			logging.Default().Error("failed to close storage client", "error", err)
		}
	}, nil
}
