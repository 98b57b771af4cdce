package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/repository/file"
	"github.com/secmon-lab/stormfront/pkg/repository/firestore"
	"github.com/secmon-lab/stormfront/pkg/repository/memory"
	"github.com/secmon-lab/stormfront/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository holds CLI flags for the memory state backend
type Repository struct {
	backend          string
	path             string
	projectID        string
	databaseID       string
	collectionPrefix string
	documentID       string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	const category = "Memory State"
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "memory-backend",
			Category:    category,
			Usage:       "Memory state backend (file, firestore or memory)",
			Value:       "file",
			Sources:     cli.EnvVars("STORMFRONT_MEMORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "memory-file",
			Category:    category,
			Usage:       "Memory state file for the file backend",
			Value:       file.DefaultPath,
			Sources:     cli.EnvVars("STORMFRONT_MEMORY_FILE"),
			Destination: &r.path,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Category:    category,
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Sources:     cli.EnvVars("STORMFRONT_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Category:    category,
			Usage:       "Firestore Database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("STORMFRONT_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Category:    category,
			Usage:       "Prefix of Firestore collection names",
			Sources:     cli.EnvVars("STORMFRONT_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
		&cli.StringFlag{
			Name:        "firestore-document-id",
			Category:    category,
			Usage:       "Firestore document holding the memory state",
			Sources:     cli.EnvVars("STORMFRONT_FIRESTORE_DOCUMENT_ID"),
			Destination: &r.documentID,
		},
	}
}

// LogValue implements slog.LogValuer
func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("path", r.path),
		slog.String("project_id", r.projectID),
		slog.String("database_id", r.databaseID),
	)
}

// Configure initializes the memory state repository for the configured
// backend. The caller is responsible for calling Close().
func (r *Repository) Configure(ctx context.Context) (interfaces.MemoryStateRepository, error) {
	switch r.backend {
	case "file", "":
		logging.Default().Debug("Using file memory state", "path", r.path)
		return file.New(r.path), nil

	case "firestore":
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrInvalidConfig, "firestore-project-id is required when using firestore backend")
		}
		var opts []firestore.Option
		if r.collectionPrefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(r.collectionPrefix))
		}
		if r.documentID != "" {
			opts = append(opts, firestore.WithDocumentID(r.documentID))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore memory state",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case "memory":
		logging.Default().Info("Using in-memory state (lost on exit)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid memory backend", goerr.V(FieldKey, "memory-backend"), goerr.V(ValueKey, r.backend))
	}
}
