package api

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const sealedCookieVersion = "v1"

var errCookieTampered = errors.New("cookie value is invalid or was tampered with")

// cookieSealer encrypts cookie values with AES-GCM. Every purpose gets its
// own key derived from the server secret, so a value sealed for one cookie
// never opens as another.
type cookieSealer struct {
	aeads map[string]cipher.AEAD
}

func newCookieSealer(secret []byte, purposes ...string) (*cookieSealer, error) {
	if len(secret) == 0 {
		return nil, errors.New("cookie secret is required")
	}
	if len(purposes) == 0 {
		return nil, errors.New("at least one cookie purpose is required")
	}

	sealer := &cookieSealer{aeads: make(map[string]cipher.AEAD, len(purposes))}
	for _, purpose := range purposes {
		key := make([]byte, 32)
		info := []byte("goodwin-challenge cookie " + purpose)
		if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, info), key); err != nil {
			return nil, fmt.Errorf("derive %s cookie key: %w", purpose, err)
		}
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("%s cookie cipher: %w", purpose, err)
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("%s cookie aead: %w", purpose, err)
		}
		sealer.aeads[purpose] = aead
	}
	return sealer, nil
}

func (sealer *cookieSealer) seal(purpose string, plaintext []byte) (string, error) {
	aead, ok := sealer.aeads[purpose]
	if !ok {
		return "", fmt.Errorf("unknown cookie purpose %q", purpose)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("cookie nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, plaintext, []byte(purpose))
	return sealedCookieVersion + "." + base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (sealer *cookieSealer) open(purpose string, value string) ([]byte, error) {
	aead, ok := sealer.aeads[purpose]
	if !ok {
		return nil, fmt.Errorf("unknown cookie purpose %q", purpose)
	}

	version, encoded, found := strings.Cut(strings.TrimSpace(value), ".")
	if !found || version != sealedCookieVersion {
		return nil, errCookieTampered
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil || len(raw) <= aead.NonceSize() {
		return nil, errCookieTampered
	}
	plaintext, err := aead.Open(nil, raw[:aead.NonceSize()], raw[aead.NonceSize():], []byte(purpose))
	if err != nil {
		return nil, errCookieTampered
	}
	return plaintext, nil
}
