package keyring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"tracker-go/internal/tracker"
)

func TestStore_SaveLoadDelete(t *testing.T) {
	gokeyring.MockInit()
	store := NewStore("tracker-test")

	_, err := store.Load()
	assert.ErrorIs(t, err, tracker.ErrNoLicense)

	want := tracker.License{Key: "KEY-123", InstanceID: "inst-1"}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	require.NoError(t, store.Delete())
	_, err = store.Load()
	assert.ErrorIs(t, err, tracker.ErrNoLicense)
	assert.ErrorIs(t, store.Delete(), tracker.ErrNoLicense)
}

func TestStore_SaveRejectsEmpty(t *testing.T) {
	gokeyring.MockInit()
	store := NewStore("")

	assert.Error(t, store.Save(tracker.License{Key: "KEY-123"}))
	assert.Error(t, store.Save(tracker.License{InstanceID: "inst-1"}))
}

func TestStore_CorruptSecret(t *testing.T) {
	gokeyring.MockInit()
	require.NoError(t, gokeyring.Set(DefaultService, licenseUser, "not json"))

	_, err := NewStore("").Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, tracker.ErrNoLicense)
}

func TestStore_IsAvailable(t *testing.T) {
	gokeyring.MockInit()
	assert.True(t, NewStore("").IsAvailable())
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Load()
	assert.ErrorIs(t, err, tracker.ErrNoLicense)

	require.NoError(t, store.Save(tracker.License{Key: "k", InstanceID: "i"}))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "k", got.Key)

	got.Key = "mutated"
	again, _ := store.Load()
	assert.Equal(t, "k", again.Key, "Load must return a copy")

	require.NoError(t, store.Delete())
	assert.ErrorIs(t, store.Delete(), tracker.ErrNoLicense)
}

func TestNewLicenseStore(t *testing.T) {
	s, err := NewLicenseStore("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = NewLicenseStore("", "")
	require.NoError(t, err)
	assert.IsType(t, &Store{}, s)

	_, err = NewLicenseStore("vault", "")
	assert.Error(t, err)
}
