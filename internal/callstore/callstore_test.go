package callstore

import (
	"errors"
	"testing"
	"time"

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

func TestCallJournal(t *testing.T) {
	assert := assert.New(t)

	deviceID := model.DeviceID("test-device")
	epoch := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	window := 60 * time.Second

	t.Run("resolves the most recent missed call in the window", func(t *testing.T) {
		store := newTestStore(t)
		assert.NoError(store.Append(model.CallEvent{
			DeviceID: deviceID, Number: "5551234567",
			Type: model.CallTypeMissed, OccurredAt: epoch.Add(-30 * time.Second),
		}))
		assert.NoError(store.Append(model.CallEvent{
			DeviceID: deviceID, Number: "5559876543",
			Type: model.CallTypeMissed, OccurredAt: epoch.Add(-10 * time.Second),
		}))

		number, err := store.LastMissedNumber(deviceID, epoch, window)
		assert.NoError(err)
		assert.Equal("5559876543", number)
	})

	t.Run("entries outside the window do not resolve", func(t *testing.T) {
		store := newTestStore(t)
		assert.NoError(store.Append(model.CallEvent{
			DeviceID: deviceID, Number: "5551234567",
			Type: model.CallTypeMissed, OccurredAt: epoch.Add(-2 * time.Minute),
		}))

		_, err := store.LastMissedNumber(deviceID, epoch, window)
		assert.True(errors.Is(err, model.ErrorNoNumberResolved))
	})

	t.Run("only missed calls resolve", func(t *testing.T) {
		store := newTestStore(t)
		assert.NoError(store.Append(model.CallEvent{
			DeviceID: deviceID, Number: "5551234567",
			Type: model.CallTypeIncoming, OccurredAt: epoch.Add(-10 * time.Second),
		}))

		_, err := store.LastMissedNumber(deviceID, epoch, window)
		assert.True(errors.Is(err, model.ErrorNoNumberResolved))
	})

	t.Run("devices are isolated", func(t *testing.T) {
		store := newTestStore(t)
		assert.NoError(store.Append(model.CallEvent{
			DeviceID: "other-device", Number: "5551234567",
			Type: model.CallTypeMissed, OccurredAt: epoch.Add(-10 * time.Second),
		}))

		_, err := store.LastMissedNumber(deviceID, epoch, window)
		assert.True(errors.Is(err, model.ErrorNoNumberResolved))
	})

	t.Run("purge trims old entries", func(t *testing.T) {
		store := newTestStore(t)
		assert.NoError(store.Append(model.CallEvent{
			DeviceID: deviceID, Number: "5551234567",
			Type: model.CallTypeMissed, OccurredAt: epoch.Add(-48 * time.Hour),
		}))
		assert.NoError(store.Append(model.CallEvent{
			DeviceID: deviceID, Number: "5559876543",
			Type: model.CallTypeMissed, OccurredAt: epoch.Add(-10 * time.Second),
		}))

		assert.NoError(store.PurgeOlderThan(24*time.Hour, epoch))

		number, err := store.LastMissedNumber(deviceID, epoch, window)
		assert.NoError(err)
		assert.Equal("5559876543", number)
	})
}
