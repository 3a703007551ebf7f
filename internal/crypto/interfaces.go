package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/codec_mock.go -package=mock

// Codec protects credential material inside queued operation payloads while
// at rest. It knows nothing about the network, the database, or the queue;
// its only job is symmetric at-rest encryption.
//
// The orchestrator decrypts a blob only immediately before building the
// remote request and never persists the plaintext.
type Codec interface {
	// Encrypt seals plaintext with the device key and returns a base64
	// blob (nonce || ciphertext) safe to persist.
	Encrypt(plaintext []byte) (string, error)

	// Decrypt opens a blob produced by Encrypt. Corrupted or foreign-keyed
	// input fails with [ErrDecryption].
	Decrypt(blob string) ([]byte, error)
}
