package credential

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/anishxyz/review-digest/pkg/errors"
)

// StorageKey is the single fixed key the API credential lives under.
const StorageKey = "openai_api_key"

// Store is the key-value backend holding the credential.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Status describes whether a credential is configured, without exposing it.
type Status struct {
	Configured bool   `json:"configured"`
	Masked     string `json:"masked,omitempty"`
}

// Service owns the API credential lifecycle. Reads go to the store every
// time; the plaintext value is never cached between reads.
type Service interface {
	Read(ctx context.Context) (string, error)
	Save(ctx context.Context, value string) error
	Status(ctx context.Context) (Status, error)
}

// Config controls credential handling.
type Config struct {
	// EncryptionSecret enables AES-GCM encryption at rest when non-empty.
	EncryptionSecret string
}

type service struct {
	store  Store
	sealer *sealer
	logger *slog.Logger
}

// NewService is a wire provider for the credential domain.
func NewService(cfg Config, store Store, logger *slog.Logger) (Service, error) {
	svc := &service{store: store, logger: logger.With("component", "credential.service")}
	if cfg.EncryptionSecret != "" {
		s, err := newSealer(cfg.EncryptionSecret)
		if err != nil {
			return nil, err
		}
		svc.sealer = s
	}
	return svc, nil
}

// Read fetches the credential, failing with missing_credential when none has
// been saved yet.
func (s *service) Read(ctx context.Context) (string, error) {
	stored, ok, err := s.store.Get(ctx, StorageKey)
	if err != nil {
		return "", apperrors.Wrap("credential_store_error", "credential lookup failed", err)
	}
	if !ok || stored == "" {
		return "", apperrors.Wrap("missing_credential", "no API key saved; add one via the credential form", nil)
	}
	if s.sealer == nil {
		return stored, nil
	}
	value, err := s.sealer.open(stored)
	if err != nil {
		return "", apperrors.Wrap("credential_store_error", "stored credential is unreadable", err)
	}
	return value, nil
}

func (s *service) Save(ctx context.Context, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return apperrors.Wrap("invalid_input", "API key cannot be empty", nil)
	}
	stored := value
	if s.sealer != nil {
		sealed, err := s.sealer.seal(value)
		if err != nil {
			return apperrors.Wrap("credential_store_error", "could not encrypt credential", err)
		}
		stored = sealed
	}
	if err := s.store.Set(ctx, StorageKey, stored); err != nil {
		return apperrors.Wrap("credential_store_error", "credential save failed", err)
	}
	s.logger.Info("credential updated")
	return nil
}

func (s *service) Status(ctx context.Context) (Status, error) {
	value, err := s.Read(ctx)
	if err != nil {
		if apperrors.IsCode(err, "missing_credential") {
			return Status{}, nil
		}
		return Status{}, err
	}
	return Status{Configured: true, Masked: mask(value)}, nil
}

func mask(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "..." + value[len(value)-4:]
}
