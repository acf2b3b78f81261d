// Package cookiesign produces and verifies signed cookie values.
//
// A signed cookie is the JSON-encoded payload followed by an HMAC-SHA256
// signature, both base64url-encoded and joined with a dot. The payload is
// expected to carry a "key_id" field so the verifying side can select the
// matching key from its own keyring.
package cookiesign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedToken indicates the token is not payload.signature shaped.
	ErrMalformedToken = errors.New("cookiesign: malformed token")
	// ErrBadSignature indicates the signature does not match the payload.
	ErrBadSignature = errors.New("cookiesign: signature mismatch")
)

// Signer is the capability the HTTP client consumes. Implementations own the
// token format; callers only pass the payload and the id of the signing key.
type Signer interface {
	Sign(payload map[string]any, keyID string) (string, error)
}

// KeyringSigner signs payloads with HMAC-SHA256 using a key selected by id.
type KeyringSigner struct {
	keys map[string]string
}

var _ Signer = (*KeyringSigner)(nil)

// New creates a KeyringSigner over a copy of the supplied keyring.
func New(keys map[string]string) *KeyringSigner {
	kr := make(map[string]string, len(keys))
	for id, k := range keys {
		kr[id] = k
	}
	return &KeyringSigner{keys: kr}
}

// Sign encodes the payload and appends its HMAC-SHA256 signature.
// The caller's payload map is not mutated.
func (s *KeyringSigner) Sign(payload map[string]any, keyID string) (string, error) {
	key, ok := s.keys[keyID]
	if !ok {
		return "", fmt.Errorf("cookiesign: unknown key id %q", keyID)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("cookiesign: encode payload: %w", err)
	}

	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(raw)

	return base64.RawURLEncoding.EncodeToString(raw) + "." +
		base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}

// Verify checks a token's signature against the keyring, selecting the key by
// the payload's "key_id" field, and returns the decoded payload.
func (s *KeyringSigner) Verify(token string) (map[string]any, error) {
	payloadPart, sigPart, ok := strings.Cut(token, ".")
	if !ok {
		return nil, ErrMalformedToken
	}

	raw, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return nil, ErrMalformedToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return nil, ErrMalformedToken
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrMalformedToken
	}

	keyID, _ := payload["key_id"].(string)
	key, ok := s.keys[keyID]
	if !ok {
		return nil, fmt.Errorf("cookiesign: unknown key id %q", keyID)
	}

	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(raw)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, ErrBadSignature
	}
	return payload, nil
}
