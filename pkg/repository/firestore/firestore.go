package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/checkin/pkg/domain/interfaces"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultCollection = "checkin"

// kvDoc is the Firestore document for one key
type kvDoc struct {
	Value     []byte    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

// Firestore stores each key as a document in a single collection
type Firestore struct {
	client           *firestore.Client
	collection       string
	collectionPrefix string
}

var _ interfaces.KVStore = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix isolates keys, e.g. per test run
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

// WithCollection overrides the collection name
func WithCollection(name string) Option {
	return func(f *Firestore) {
		f.collection = name
	}
}

func New(ctx context.Context, projectID, databaseID string, opts []Option, clientOpts ...option.ClientOption) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, clientOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:     client,
		collection: defaultCollection,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Firestore) doc(key string) *firestore.DocumentRef {
	name := f.collection
	if f.collectionPrefix != "" {
		name = f.collectionPrefix + "_" + name
	}
	return f.client.Collection(name).Doc(key)
}

func (f *Firestore) Get(ctx context.Context, key string) ([]byte, error) {
	snap, err := f.doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, interfaces.ErrKeyNotFound
		}
		return nil, goerr.Wrap(err, "failed to get document", goerr.V("key", key))
	}

	var doc kvDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode document", goerr.V("key", key))
	}
	return doc.Value, nil
}

func (f *Firestore) Put(ctx context.Context, key string, value []byte) error {
	doc := &kvDoc{
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := f.doc(key).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to set document", goerr.V("key", key))
	}
	return nil
}

func (f *Firestore) Delete(ctx context.Context, key string) error {
	// Firestore deletes of missing documents succeed
	if _, err := f.doc(key).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete document", goerr.V("key", key))
	}
	return nil
}

func (f *Firestore) Close() error {
	if err := f.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}
