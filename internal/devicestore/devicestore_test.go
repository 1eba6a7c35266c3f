package devicestore

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"com.charlotteservicehub.autotext/internal/boot"
	"com.charlotteservicehub.autotext/internal/model"
)

func newTestStore(t *testing.T) *Store {
	store, err := New(&boot.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newKey(t *testing.T) *ecdsa.PrivateKey {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	return key
}

func TestDevices(t *testing.T) {
	assert := assert.New(t)

	t.Run("register and fetch", func(t *testing.T) {
		store := newTestStore(t)
		key := newKey(t)

		device, token, err := store.Register("kitchen phone", &key.PublicKey)
		assert.NoError(err)
		assert.NotEmpty(device.ID)
		assert.NotEmpty(token)

		loaded, err := store.Get(device.ID)
		assert.NoError(err)
		assert.Equal("kitchen phone", loaded.Name)
	})

	t.Run("public key round-trips", func(t *testing.T) {
		store := newTestStore(t)
		key := newKey(t)

		device, _, err := store.Register("kitchen phone", &key.PublicKey)
		assert.NoError(err)

		publicKey, err := store.PublicKey(device.ID)
		assert.NoError(err)
		assert.True(key.PublicKey.Equal(publicKey))
	})

	t.Run("token verification", func(t *testing.T) {
		store := newTestStore(t)
		key := newKey(t)

		device, token, err := store.Register("kitchen phone", &key.PublicKey)
		assert.NoError(err)

		assert.NoError(store.VerifyToken(device.ID, token))
		err = store.VerifyToken(device.ID, "wrong-token")
		assert.True(errors.Is(err, model.ErrorInvalidToken))
	})

	t.Run("unknown device", func(t *testing.T) {
		store := newTestStore(t)
		_, err := store.Get(model.DeviceID("nobody"))
		assert.True(errors.Is(err, model.ErrorDeviceNotFound))
	})

	t.Run("rotate replaces the key but keeps the device id", func(t *testing.T) {
		store := newTestStore(t)
		key := newKey(t)
		replacement := newKey(t)

		device, token, err := store.Register("kitchen phone", &key.PublicKey)
		assert.NoError(err)

		assert.NoError(store.RotateKey(device.ID, token, &replacement.PublicKey))
		publicKey, err := store.PublicKey(device.ID)
		assert.NoError(err)
		assert.True(replacement.PublicKey.Equal(publicKey))
	})

	t.Run("rotate requires a valid token", func(t *testing.T) {
		store := newTestStore(t)
		key := newKey(t)
		replacement := newKey(t)

		device, _, err := store.Register("kitchen phone", &key.PublicKey)
		assert.NoError(err)

		err = store.RotateKey(device.ID, "wrong-token", &replacement.PublicKey)
		assert.True(errors.Is(err, model.ErrorInvalidToken))
	})

	t.Run("re-registering the same key reissues the token", func(t *testing.T) {
		store := newTestStore(t)
		key := newKey(t)

		first, firstToken, err := store.Register("kitchen phone", &key.PublicKey)
		assert.NoError(err)
		second, secondToken, err := store.Register("kitchen phone v2", &key.PublicKey)
		assert.NoError(err)

		assert.Equal(first.ID, second.ID)
		assert.NotEqual(firstToken, secondToken)
		assert.Error(store.VerifyToken(first.ID, firstToken))
		assert.NoError(store.VerifyToken(first.ID, secondToken))
	})
}
