// Package crypto hides raw transport identifiers (user ids, media
// references) behind a reversible transform before they reach storage.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keyLen     = 32
	iterations = 100000
)

// ErrDecrypt is returned for values that were not produced by this
// codec (wrong key, truncated or tampered input).
var ErrDecrypt = errors.New("crypto: cannot decrypt value")

// Codec is a deterministic reversible transform. The AES-GCM nonce is
// derived from the plaintext, so equal inputs encrypt to equal outputs
// and uniqueness constraints on stored columns keep working.
type Codec struct {
	aead     cipher.AEAD
	nonceKey []byte
}

func New(secret, salt string) (*Codec, error) {
	if secret == "" || salt == "" {
		return nil, errors.New("crypto: secret and salt are required")
	}
	key := pbkdf2.Key([]byte(secret), []byte(salt), iterations, keyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: new gcm: %w", err)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte("nonce"))
	return &Codec{aead: aead, nonceKey: mac.Sum(nil)}, nil
}

// Encrypt transforms a plaintext identifier into its opaque stored form.
func (c *Codec) Encrypt(plain string) string {
	nonce := c.nonceFor(plain)
	sealed := c.aead.Seal(nil, nonce, []byte(plain), nil)
	return base64.RawURLEncoding.EncodeToString(append(nonce, sealed...))
}

// Decrypt is the inverse of Encrypt.
func (c *Codec) Decrypt(stored string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(stored)
	if err != nil {
		return "", ErrDecrypt
	}
	ns := c.aead.NonceSize()
	if len(raw) <= ns {
		return "", ErrDecrypt
	}
	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

func (c *Codec) nonceFor(plain string) []byte {
	mac := hmac.New(sha256.New, c.nonceKey)
	mac.Write([]byte(plain))
	return mac.Sum(nil)[:c.aead.NonceSize()]
}
