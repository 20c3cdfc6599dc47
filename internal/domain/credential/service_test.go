package credential

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/anishxyz/review-digest/pkg/errors"
)

type mapStore struct {
	values map[string]string
	getErr error
}

func (s *mapStore) Get(_ context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *mapStore) Set(_ context.Context, key, value string) error {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReadMissingCredential(t *testing.T) {
	svc, err := NewService(Config{}, &mapStore{}, discardLogger())
	require.NoError(t, err)

	_, err = svc.Read(context.Background())
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "missing_credential"))
}

func TestSaveThenReadPlaintext(t *testing.T) {
	store := &mapStore{}
	svc, err := NewService(Config{}, store, discardLogger())
	require.NoError(t, err)

	require.NoError(t, svc.Save(context.Background(), "  sk-live-abcdef123456  "))
	got, err := svc.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, "sk-live-abcdef123456", got)
}

func TestSaveEncryptsAtRest(t *testing.T) {
	store := &mapStore{}
	svc, err := NewService(Config{EncryptionSecret: "topsecret"}, store, discardLogger())
	require.NoError(t, err)

	require.NoError(t, svc.Save(context.Background(), "sk-live-abcdef123456"))
	require.NotEqual(t, "sk-live-abcdef123456", store.values[StorageKey])

	got, err := svc.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, "sk-live-abcdef123456", got)
}

func TestSaveRejectsEmptyValue(t *testing.T) {
	svc, err := NewService(Config{}, &mapStore{}, discardLogger())
	require.NoError(t, err)

	err = svc.Save(context.Background(), "   ")
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestStatusMasksValue(t *testing.T) {
	store := &mapStore{}
	svc, err := NewService(Config{}, store, discardLogger())
	require.NoError(t, err)

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	require.False(t, status.Configured)

	require.NoError(t, svc.Save(context.Background(), "sk-live-abcdef123456"))
	status, err = svc.Status(context.Background())
	require.NoError(t, err)
	require.True(t, status.Configured)
	require.Equal(t, "sk-l...3456", status.Masked)
}
