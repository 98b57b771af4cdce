package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/utils/logging"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	memoryStatesCollection = "memory_states"
	defaultDocumentID      = "default"
)

type Firestore struct {
	client           *firestore.Client
	collectionPrefix string
	documentID       string
}

var _ interfaces.MemoryStateRepository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes the collection name, e.g. to isolate tests
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

// WithDocumentID selects the memory document. Different IDs hold
// independent memories in the same collection.
func WithDocumentID(id string) Option {
	return func(f *Firestore) {
		if id != "" {
			f.documentID = id
		}
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:     client,
		documentID: defaultDocumentID,
	}
	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

type memoryStateDoc struct {
	Summary       string    `firestore:"summary"`
	RecentHistory []string  `firestore:"recent_history"`
	UpdatedAt     time.Time `firestore:"updated_at"`
}

func (f *Firestore) doc() *firestore.DocumentRef {
	name := memoryStatesCollection
	if f.collectionPrefix != "" {
		name = f.collectionPrefix + "_" + name
	}
	return f.client.Collection(name).Doc(f.documentID)
}

// Load returns the stored state. A missing or undecodable document is an
// empty state.
func (f *Firestore) Load(ctx context.Context) (*model.MemoryState, error) {
	snap, err := f.doc().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return model.NewMemoryState(), nil
		}
		return nil, goerr.Wrap(err, "failed to get memory state from firestore", goerr.V("documentID", f.documentID))
	}

	var doc memoryStateDoc
	if err := snap.DataTo(&doc); err != nil {
		logging.From(ctx).Warn("memory state document is corrupt, starting empty",
			"documentID", f.documentID,
			"error", err)
		return model.NewMemoryState(), nil
	}

	state := &model.MemoryState{
		Summary:       doc.Summary,
		RecentHistory: doc.RecentHistory,
	}
	if state.RecentHistory == nil {
		state.RecentHistory = []string{}
	}
	return state, nil
}

// Save overwrites the whole document
func (f *Firestore) Save(ctx context.Context, state *model.MemoryState) error {
	if state == nil {
		state = model.NewMemoryState()
	}
	history := state.RecentHistory
	if history == nil {
		history = []string{}
	}

	doc := &memoryStateDoc{
		Summary:       state.Summary,
		RecentHistory: history,
		UpdatedAt:     time.Now().UTC(),
	}
	if _, err := f.doc().Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to save memory state to firestore", goerr.V("documentID", f.documentID))
	}
	return nil
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
