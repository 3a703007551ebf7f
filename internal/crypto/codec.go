// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// aesCodec is the private implementation of [Codec]. The device key is
// derived once at construction and kept only in memory.
type aesCodec struct {
	key []byte

	// Argon2id tuning parameters. Stored in the struct so they can be
	// adjusted per deployment target (the agent runs on constrained
	// devices, so memory cost matters).
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
	argonKeyLen  uint32
}

// NewCodec constructs a [Codec] whose 256-bit key is derived from the
// device-scoped secret and salt using Argon2id with the parameters
// recommended by OWASP (2024):
//   - time cost:   1 iteration
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
//   - key length:  32 bytes (256 bits)
func NewCodec(deviceSecret string, salt []byte) Codec {
	c := &aesCodec{
		argonTime:    1,
		argonMemory:  64 * 1024, // 64 MiB
		argonThreads: 4,
		argonKeyLen:  32, // 256 bits
	}
	c.key = argon2.IDKey(
		[]byte(deviceSecret),
		salt,
		c.argonTime,
		c.argonMemory,
		c.argonThreads,
		c.argonKeyLen,
	)
	return c
}

// Encrypt implements [Codec]. It seals plaintext with AES-256-GCM under the
// derived device key. The output is a Base64 (standard encoding) string of
// the blob: nonce (12 bytes) || ciphertext. Returns an error if cipher
// creation or the random nonce read fails.
func (c *aesCodec) Encrypt(plaintext []byte) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create gcm: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	// Prepend the nonce so Decrypt can split it out without side-channel.
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	blob := append(nonce, ciphertext...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt implements [Codec]. It Base64-decodes the blob, splits out the
// nonce, and opens the ciphertext with AES-256-GCM. The blob must be at
// least as long as the GCM nonce (12 bytes). Any authentication-tag mismatch
// (wrong key, bit rot, tampering) is reported as [ErrDecryption].
func (c *aesCodec) Decrypt(encryptedB64 string) ([]byte, error) {
	blob, err := base64.StdEncoding.DecodeString(encryptedB64)
	if err != nil {
		return nil, fmt.Errorf("%w: decode base64: %v", ErrDecryption, err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecryption)
	}
	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	return plaintext, nil
}
