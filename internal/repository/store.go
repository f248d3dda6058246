package repository

import "context"

// Store persists whole collections as JSON documents. Load returns nil, nil when
// the collection has never been saved.
type Store interface {
	Save(ctx context.Context, collection string, payload []byte) error
	Load(ctx context.Context, collection string) ([]byte, error)
	Close(ctx context.Context) error
}
