package testutil

import (
	"path/filepath"
	"testing"

	"tracker-go/internal/config"
	"tracker-go/internal/encryption"
	"tracker-go/internal/vault"
)

// NewTestVault creates a new in-memory vault for testing.
func NewTestVault() *vault.MemoryVault {
	return vault.NewMemoryVault("test-vault")
}

// NewSealedEncryptor creates an age encryptor whose key pair lives in a temp
// dir and is protected by passphrase.
func NewSealedEncryptor(t *testing.T, passphrase string) *encryption.AgeEncryptor {
	t.Helper()
	dir := t.TempDir()
	enc := encryption.NewAgeEncryptor(config.EncryptionConfig{
		Type:           "age",
		PublicKeyPath:  filepath.Join(dir, "keys", "tracker.pub"),
		PrivateKeyPath: filepath.Join(dir, "keys", "tracker.key"),
	})
	if err := enc.Setup(passphrase); err != nil {
		t.Fatalf("generating test keys: %v", err)
	}
	return enc
}
