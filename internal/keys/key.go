package keys

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

var keySize = 32 // 32 bytes for AES-256

var ErrMalformed = errors.New("malformed ciphertext")

type Key []byte

func NewKey() (*Key, error) {
	bytes := make([]byte, keySize)
	if _, err := rand.Read(bytes); err != nil {
		return nil, err
	}
	key := Key(bytes)
	return &key, nil
}

func ParseKey(bytes []byte) (*Key, error) {
	switch len(bytes) {
	case 16, 24, 32:
		key := Key(bytes)
		return &key, nil
	default:
		return nil, fmt.Errorf("invalid key size: got %d, need 16, 24 or 32", len(bytes))
	}
}

func (k Key) String() string {
	return base64.URLEncoding.EncodeToString(k)
}

func (k Key) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts and authenticates data. The nonce is prepended to the result.
func (k Key) Seal(data []byte) ([]byte, error) {
	aead, err := k.aead()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(data)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, data, nil), nil
}

func (k Key) Open(ciphertext []byte) ([]byte, error) {
	aead, err := k.aead()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aead.NonceSize() {
		return nil, ErrMalformed
	}
	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrMalformed
	}
	return plaintext, nil
}

// SealString returns a url-safe encoding of the sealed value, suitable for cookies.
func (k Key) SealString(value string) (string, error) {
	sealed, err := k.Seal([]byte(value))
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (k Key) OpenString(value string) (string, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", ErrMalformed
	}
	plaintext, err := k.Open(sealed)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
