package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/infection/pkg/graph"
)

// MongoStore keeps one document per snapshot, keyed by the snapshot ID.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// snapshotDoc is the stored document. BSON has no unsigned 64-bit integer,
// so the token is kept as a decimal string.
type snapshotDoc struct {
	ID       string `bson:"_id"`
	Token    string `bson:"token"`
	Snapshot `bson:",inline"`
}

// NewMongoStore connects to uri and uses database.collection.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Save upserts snap.
func (m *MongoStore) Save(ctx context.Context, snap *Snapshot) error {
	doc := snapshotDoc{
		ID:       snap.ID.String(),
		Token:    strconv.FormatUint(uint64(snap.Token), 10),
		Snapshot: *snap,
	}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Get loads a snapshot by ID.
func (m *MongoStore) Get(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	var doc snapshotDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	snap := doc.Snapshot
	snap.ID = id
	token, err := strconv.ParseUint(doc.Token, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s token: %w", id, err)
	}
	snap.Token = graph.Token(token)
	return &snap, nil
}

// Close disconnects the client.
func (m *MongoStore) Close() error {
	return m.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
