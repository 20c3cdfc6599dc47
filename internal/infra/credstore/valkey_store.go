package credstore

import (
	"context"

	"github.com/valkey-io/valkey-go"

	"github.com/anishxyz/review-digest/internal/domain/credential"
)

// ValkeyStore persists credentials in a Valkey-compatible database so they
// survive service restarts.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "cred"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// Get implements credential.Store.
func (s *ValkeyStore) Get(ctx context.Context, key string) (string, bool, error) {
	cmd := s.client.B().Get().Key(s.storageKey(key)).Build()
	value, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Set implements credential.Store.
func (s *ValkeyStore) Set(ctx context.Context, key, value string) error {
	cmd := s.client.B().Set().Key(s.storageKey(key)).Value(value).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) storageKey(key string) string {
	return s.prefix + ":" + key
}

var _ credential.Store = (*ValkeyStore)(nil)
