package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// kvDocument is the Firestore representation of a single KV entry
type kvDocument struct {
	Value     []byte    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

// Firestore is a KV keeping each key as a document in a collection
type Firestore struct {
	client     *firestore.Client
	collection string
}

// NewFirestore creates a Firestore client for projectID and databaseID
func NewFirestore(ctx context.Context, projectID, databaseID, collection string, opts ...option.ClientOption) (*Firestore, error) {
	if projectID == "" {
		return nil, goerr.New("project is required")
	}
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	if collection == "" {
		return nil, goerr.New("collection is required")
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID),
			goerr.V("database", databaseID),
		)
	}

	return &Firestore{
		client:     client,
		collection: collection,
	}, nil
}

func (f *Firestore) Close() error {
	return f.client.Close()
}

func (f *Firestore) Get(ctx context.Context, key string) ([]byte, error) {
	snap, err := f.client.Collection(f.collection).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "firestore", goerr.V("collection", f.collection), goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to get document", goerr.V("collection", f.collection), goerr.V("key", key))
	}

	var doc kvDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode document", goerr.V("key", key))
	}
	return doc.Value, nil
}

func (f *Firestore) Set(ctx context.Context, key string, value []byte) error {
	doc := kvDocument{
		Value:     value,
		UpdatedAt: time.Now(),
	}
	if _, err := f.client.Collection(f.collection).Doc(key).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to set document", goerr.V("collection", f.collection), goerr.V("key", key))
	}
	return nil
}

func (f *Firestore) Remove(ctx context.Context, key string) error {
	// Deleting a missing document succeeds in Firestore
	if _, err := f.client.Collection(f.collection).Doc(key).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete document", goerr.V("collection", f.collection), goerr.V("key", key))
	}
	return nil
}
