// Package keyring persists the activated license in the OS keyring.
package keyring

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	gokeyring "github.com/zalando/go-keyring"

	"tracker-go/internal/tracker"
)

// DefaultService is the keyring service name licenses are stored under.
const DefaultService = "tracker"

const licenseUser = "license"

// ErrKeyringUnavailable is returned when the OS keyring cannot be reached.
var ErrKeyringUnavailable = errors.New("OS keyring is not available")

// Store keeps the license as a JSON secret in the OS keyring.
type Store struct {
	service string
}

// NewStore creates a Store under service, or DefaultService when empty.
func NewStore(service string) *Store {
	if service == "" {
		service = DefaultService
	}
	return &Store{service: service}
}

// Load returns the stored license or tracker.ErrNoLicense.
func (s *Store) Load() (*tracker.License, error) {
	secret, err := gokeyring.Get(s.service, licenseUser)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return nil, tracker.ErrNoLicense
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}

	var license tracker.License
	if err := json.Unmarshal([]byte(secret), &license); err != nil {
		return nil, fmt.Errorf("decoding stored license: %w", err)
	}
	return &license, nil
}

// Save replaces the stored license.
func (s *Store) Save(license tracker.License) error {
	if license.Key == "" || license.InstanceID == "" {
		return errors.New("license key and instance id cannot be empty")
	}

	secret, err := json.Marshal(license)
	if err != nil {
		return fmt.Errorf("encoding license: %w", err)
	}
	if err := gokeyring.Set(s.service, licenseUser, string(secret)); err != nil {
		return fmt.Errorf("failed to store license in keyring: %w", err)
	}
	return nil
}

// Delete removes the stored license. It returns tracker.ErrNoLicense if there is none.
func (s *Store) Delete() error {
	err := gokeyring.Delete(s.service, licenseUser)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return tracker.ErrNoLicense
	}
	if err != nil {
		return fmt.Errorf("failed to delete license from keyring: %w", err)
	}
	return nil
}

// IsAvailable reports whether the OS keyring answers at all.
func (s *Store) IsAvailable() bool {
	_, err := gokeyring.Get(s.service, "availability-probe")
	return err == nil || errors.Is(err, gokeyring.ErrNotFound)
}

// MemoryStore keeps the license in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	license *tracker.License
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (*tracker.License, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.license == nil {
		return nil, tracker.ErrNoLicense
	}
	l := *m.license
	return &l, nil
}

func (m *MemoryStore) Save(license tracker.License) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.license = &license
	return nil
}

func (m *MemoryStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.license == nil {
		return tracker.ErrNoLicense
	}
	m.license = nil
	return nil
}

// NewLicenseStore builds the store named by kind: "keyring" (default) or "memory".
func NewLicenseStore(kind, service string) (tracker.LicenseStore, error) {
	switch kind {
	case "", "keyring":
		return NewStore(service), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown license store: %s", kind)
	}
}

var (
	_ tracker.LicenseStore = (*Store)(nil)
	_ tracker.LicenseStore = (*MemoryStore)(nil)
)
