package crypto

import "errors"

// ErrDecryption is returned when a ciphertext blob cannot be opened: the
// blob is truncated, corrupted, or was sealed under a different device key.
// The payload is unrecoverable; callers must treat the owning operation as
// terminally failed.
var ErrDecryption = errors.New("decryption failed")
