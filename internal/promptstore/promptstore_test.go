package promptstore

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

func TestPromptQueue(t *testing.T) {
	assert := assert.New(t)

	deviceID := model.DeviceID("test-device")
	epoch := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("pending returns unhandled prompts oldest first", func(t *testing.T) {
		store := newTestStore(t)
		first, err := store.Append(model.ReplyPrompt{
			DeviceID: deviceID, Kind: model.PromptKindReply,
			PhoneNumber: "5551234567", Body: "first", CreatedAt: epoch,
		})
		assert.NoError(err)
		_, err = store.Append(model.ReplyPrompt{
			DeviceID: deviceID, Kind: model.PromptKindGeneric,
			Body: "second", CreatedAt: epoch.Add(time.Minute),
		})
		assert.NoError(err)

		pending, err := store.Pending(deviceID)
		assert.NoError(err)
		assert.Len(pending, 2)
		assert.Equal(first, pending[0].ID)
		assert.Equal("first", pending[0].Body)
		assert.Equal(model.PromptKindReply, pending[0].Kind)
	})

	t.Run("handled prompts drop out of the queue", func(t *testing.T) {
		store := newTestStore(t)
		id, err := store.Append(model.ReplyPrompt{
			DeviceID: deviceID, Kind: model.PromptKindReply,
			PhoneNumber: "5551234567", Body: "reply", CreatedAt: epoch,
		})
		assert.NoError(err)

		assert.NoError(store.MarkHandled(id))
		pending, err := store.Pending(deviceID)
		assert.NoError(err)
		assert.Empty(pending)
	})

	t.Run("marking an unknown prompt fails", func(t *testing.T) {
		store := newTestStore(t)
		err := store.MarkHandled("no-such-prompt")
		assert.True(errors.Is(err, model.ErrorPromptNotFound))
	})

	t.Run("queues are per device", func(t *testing.T) {
		store := newTestStore(t)
		_, err := store.Append(model.ReplyPrompt{
			DeviceID: "other-device", Kind: model.PromptKindGeneric,
			Body: "elsewhere", CreatedAt: epoch,
		})
		assert.NoError(err)

		pending, err := store.Pending(deviceID)
		assert.NoError(err)
		assert.Empty(pending)
	})
}
