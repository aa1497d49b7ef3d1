// Package credential 加密保存创作者的平台凭证
package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const keyInfo = "next-fans platform credential v1"

// ErrInvalidCiphertext 密文损坏或密钥不匹配
var ErrInvalidCiphertext = errors.New("invalid credential ciphertext")

// Cipher XChaCha20-Poly1305 加解密
type Cipher struct {
	key []byte
}

// NewCipher 由配置的密钥派生加密密钥
func NewCipher(secret string) (*Cipher, error) {
	if len(secret) < 16 {
		return nil, errors.New("credential key must be at least 16 characters")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return &Cipher{key: key}, nil
}

// Seal 加密，creatorID 作为附加数据绑定密文
func (c *Cipher) Seal(creatorID, plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), []byte(creatorID))
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open 解密
func (c *Cipher) Open(creatorID, encoded string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) < aead.NonceSize() {
		return "", ErrInvalidCiphertext
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, []byte(creatorID))
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(plain), nil
}
