package encryption

import (
	"fmt"
	"io"

	"tracker-go/internal/backup"
)

// PlainEncryptor stores snapshots unencrypted. It suits vaults that are
// already private, like a local directory, and tests.
type PlainEncryptor struct{}

var _ backup.Encryptor = PlainEncryptor{}

func (PlainEncryptor) Setup(string) error { return nil }

func (PlainEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	return copyThrough(r, w)
}

func (PlainEncryptor) Unlock(string) (backup.DecryptionContext, error) {
	return plainDecryptionContext{}, nil
}

func (PlainEncryptor) IsConfigured() bool { return true }

func (PlainEncryptor) Extension() string { return "" }

type plainDecryptionContext struct{}

func (plainDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	return copyThrough(r, w)
}

func copyThrough(r io.Reader, w io.Writer) error {
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
