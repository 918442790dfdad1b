// Package kv is the persistent key-value store behind the session. Values
// are opaque bytes; callers pick the encoding.
package kv

import (
	"context"
)

// Entry is one key/value pair for batch writes.
type Entry struct {
	Key   string
	Value []byte
}

// Repository is a small durable map. Get returns (nil, nil) when the key
// does not exist. SetMany, DeleteMany and Apply change all keys or none.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, entries ...Entry) error
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys ...string) error
	Apply(ctx context.Context, upserts []Entry, removals []string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
