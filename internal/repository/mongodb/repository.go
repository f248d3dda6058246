package mongodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/harvest/internal/repository"
)

var _ repository.Store = (*Repository)(nil)

const collectionsName = "collections"

// Repository stores each collection as one document keyed by the collection
// name. The records are kept as the same JSON the file store writes, converted
// to BSON through extended JSON.
type Repository struct {
	client *mongo.Client
	dbName string
	coll   *mongo.Collection
}

// NewRepository connects to MongoDB and verifies the connection.
func NewRepository(ctx context.Context, uri string, dbName string) (*Repository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Repository{
		client: client,
		dbName: dbName,
		coll:   client.Database(dbName).Collection(collectionsName),
	}, nil
}

// Save replaces the stored document for the collection.
func (r *Repository) Save(ctx context.Context, collection string, payload []byte) error {
	doc, err := encode(collection, payload)
	if err != nil {
		return err
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": collection}, doc, opts); err != nil {
		return fmt.Errorf("failed to replace %s: %w", collection, err)
	}
	return nil
}

// Load returns the stored records, or nil when no document exists yet.
func (r *Repository) Load(ctx context.Context, collection string) ([]byte, error) {
	raw, err := r.coll.FindOne(ctx, bson.M{"_id": collection}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", collection, err)
	}
	return decode(collection, raw)
}

// Close closes the MongoDB connection.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func encode(collection string, payload []byte) (bson.D, error) {
	wrapped, err := json.Marshal(struct {
		ID      string          `json:"_id"`
		Records json.RawMessage `json:"records"`
	}{ID: collection, Records: payload})
	if err != nil {
		return nil, fmt.Errorf("wrap %s: %w", collection, err)
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(wrapped, false, &doc); err != nil {
		return nil, fmt.Errorf("convert %s to bson: %w", collection, err)
	}
	return doc, nil
}

func decode(collection string, raw bson.Raw) ([]byte, error) {
	ext, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("convert %s from bson: %w", collection, err)
	}
	var doc struct {
		Records json.RawMessage `json:"records"`
	}
	if err := json.Unmarshal(ext, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	return doc.Records, nil
}
