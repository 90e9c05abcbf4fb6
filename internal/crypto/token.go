package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
)

var ErrInvalidTokenLength = errors.New("invalid token length: must be at least 16 bytes")

// TokenSource produces opaque session tokens. The reader is injectable so
// tests can generate deterministic tokens; production code uses crypto/rand.
type TokenSource struct {
	byteLength int
	reader     io.Reader
}

func NewTokenSource(byteLength int) (*TokenSource, error) {
	return NewTokenSourceWithReader(byteLength, rand.Reader)
}

func NewTokenSourceWithReader(byteLength int, reader io.Reader) (*TokenSource, error) {
	if byteLength < 16 {
		return nil, ErrInvalidTokenLength
	}
	return &TokenSource{byteLength: byteLength, reader: reader}, nil
}

// Issue draws byteLength random bytes and returns the printable raw token
// together with its storage digest. Only the digest is ever persisted.
func (s *TokenSource) Issue() (raw string, digest string, err error) {
	bytes := make([]byte, s.byteLength)
	if _, err := io.ReadFull(s.reader, bytes); err != nil {
		return "", "", err
	}
	raw = base64.URLEncoding.EncodeToString(bytes)
	return raw, HashSessionToken(raw), nil
}

// HashSessionToken is the deterministic digest used as the session lookup
// key. Tokens already carry full entropy, so a fast hash is sufficient;
// this is deliberately not bcrypt, which is salted and non-deterministic.
func HashSessionToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
