package backup

import "io"

// Encryptor seals snapshots before they leave the machine.
// Encryption uses the public key only; decryption needs a passphrase to
// unlock the private key.
type Encryptor interface {
	// Setup performs one-time key generation, protecting the private key
	// with passphrase.
	Setup(passphrase string) error

	// Encrypt encrypts data read from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key using the passphrase.
	// Returns an error if the passphrase is incorrect.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured reports whether keys are in place.
	IsConfigured() bool

	// Extension is appended to snapshot names sealed by this encryptor,
	// e.g. ".age". Plain snapshots use "".
	Extension() string
}

// DecryptionContext holds an unlocked private key in memory for one restore.
type DecryptionContext interface {
	// Decrypt decrypts data read from r and writes plaintext to w.
	Decrypt(r io.Reader, w io.Writer) error
}
