package cryptox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cofit/cofitcli/internal/client/repositories/kv"
	"github.com/cofit/cofitcli/internal/common"
)

// Reserved keys stored in clear next to the sealed values.
const (
	SaltKey     = "@store:salt"
	VerifierKey = "@store:verifier"

	saltSize = 16
)

var ErrWrongSecret = errors.New("store secret does not match this database")

// SealedRepository encrypts every value written through it and decrypts on
// read. Keys stay in clear so lookups and deletes still work.
type SealedRepository struct {
	inner kv.Repository
	key   []byte
}

// NewSealedRepository derives the sealing key from secret and the salt kept
// in inner, creating the salt on first use. A secret that does not match the
// stored verifier yields ErrWrongSecret.
func NewSealedRepository(ctx context.Context, inner kv.Repository, secret []byte) (*SealedRepository, error) {
	salt, err := inner.Get(ctx, SaltKey)
	if err != nil {
		return nil, err
	}

	fresh := salt == nil
	if fresh {
		salt = common.GenerateRandByteArray(saltSize)
	}

	key := DeriveMasterKey(secret, salt)
	verifier := MakeVerifier(key)

	if fresh {
		err := inner.SetMany(ctx,
			kv.Entry{Key: SaltKey, Value: salt},
			kv.Entry{Key: VerifierKey, Value: verifier},
		)
		if err != nil {
			common.WipeByteArray(key)
			return nil, err
		}
	} else {
		stored, err := inner.Get(ctx, VerifierKey)
		if err != nil {
			common.WipeByteArray(key)
			return nil, err
		}
		if !bytes.Equal(stored, verifier) {
			common.WipeByteArray(key)
			return nil, ErrWrongSecret
		}
	}

	return &SealedRepository{inner: inner, key: key}, nil
}

func isReserved(key string) bool {
	return strings.HasPrefix(key, "@store:")
}

func (r *SealedRepository) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := r.inner.Get(ctx, key)
	if err != nil || sealed == nil {
		return nil, err
	}
	plain, err := Open(r.key, sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to open kv[%s]: %w", key, err)
	}
	return plain, nil
}

func (r *SealedRepository) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := Seal(r.key, value)
	if err != nil {
		return fmt.Errorf("failed to seal kv[%s]: %w", key, err)
	}
	return r.inner.Set(ctx, key, sealed)
}

func (r *SealedRepository) SetMany(ctx context.Context, entries ...kv.Entry) error {
	out, err := r.sealAll(entries)
	if err != nil {
		return err
	}
	return r.inner.SetMany(ctx, out...)
}

func (r *SealedRepository) Apply(ctx context.Context, upserts []kv.Entry, removals []string) error {
	out, err := r.sealAll(upserts)
	if err != nil {
		return err
	}
	return r.inner.Apply(ctx, out, removals)
}

func (r *SealedRepository) sealAll(entries []kv.Entry) ([]kv.Entry, error) {
	out := make([]kv.Entry, 0, len(entries))
	for _, e := range entries {
		sealed, err := Seal(r.key, e.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to seal kv[%s]: %w", e.Key, err)
		}
		out = append(out, kv.Entry{Key: e.Key, Value: sealed})
	}
	return out, nil
}

func (r *SealedRepository) Delete(ctx context.Context, key string) error {
	return r.inner.Delete(ctx, key)
}

func (r *SealedRepository) DeleteMany(ctx context.Context, keys ...string) error {
	return r.inner.DeleteMany(ctx, keys...)
}

// List returns decrypted user values; the reserved salt and verifier are
// hidden.
func (r *SealedRepository) List(ctx context.Context) (map[string][]byte, error) {
	all, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(all))
	for k, v := range all {
		if isReserved(k) {
			continue
		}
		if v == nil {
			out[k] = nil
			continue
		}
		plain, err := Open(r.key, v)
		if err != nil {
			return nil, fmt.Errorf("failed to open kv[%s]: %w", k, err)
		}
		out[k] = plain
	}
	return out, nil
}

// Clear removes user values but keeps the salt and verifier, so the same
// secret keeps working.
func (r *SealedRepository) Clear(ctx context.Context) error {
	all, err := r.inner.List(ctx)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		if !isReserved(k) {
			keys = append(keys, k)
		}
	}
	return r.inner.DeleteMany(ctx, keys...)
}

// Close wipes the derived key from memory.
func (r *SealedRepository) Close() {
	common.WipeByteArray(r.key)
}
