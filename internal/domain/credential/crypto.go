package credential

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const keyDerivationInfo = "review-digest/credential"

// sealer encrypts stored credentials with AES-GCM. The cipher key is derived
// from an arbitrary-length secret via HKDF so operators are not forced to
// provide exactly 16/24/32 bytes.
type sealer struct {
	key []byte
}

func newSealer(secret string) (*sealer, error) {
	if secret == "" {
		return nil, errors.New("encryption secret cannot be empty")
	}
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyDerivationInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, err
	}
	return &sealer{key: key}, nil
}

func (s *sealer) seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	gcm, err := s.newGCM()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ciphertext := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	payload := append(nonce, ciphertext...)
	return base64.RawURLEncoding.EncodeToString(payload), nil
}

func (s *sealer) open(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	gcm, err := s.newGCM()
	if err != nil {
		return "", err
	}
	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	nonceSize := gcm.NonceSize()
	if len(payload) < nonceSize {
		return "", errors.New("invalid credential payload")
	}
	nonce, ciphertext := payload[:nonceSize], payload[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func (s *sealer) newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
