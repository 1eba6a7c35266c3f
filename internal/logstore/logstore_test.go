package logstore

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

func testRecord(number string, sentAt time.Time) model.MessageLogRecord {
	return model.MessageLogRecord{
		PhoneNumber: number,
		Body:        "test body",
		SentAt:      sentAt,
		Status:      model.MessageStatusSent,
	}
}

func TestMessageLog(t *testing.T) {
	assert := assert.New(t)

	epoch := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("append and read back", func(t *testing.T) {
		store := newTestStore(t)
		id, err := store.Append(testRecord("5551234567", epoch), nil)
		assert.NoError(err)
		assert.Greater(id, int64(0))

		records, err := store.Recent(10)
		assert.NoError(err)
		assert.Len(records, 1)
		assert.Equal("5551234567", records[0].PhoneNumber)
		assert.Equal(epoch, records[0].SentAt)
		assert.Equal(model.MessageStatusSent, records[0].Status)
	})

	t.Run("recent orders newest first and honors the limit", func(t *testing.T) {
		store := newTestStore(t)
		for i := 0; i < 5; i++ {
			_, err := store.Append(testRecord("5551234567", epoch.Add(time.Duration(i)*time.Minute)), nil)
			assert.NoError(err)
		}

		records, err := store.Recent(3)
		assert.NoError(err)
		assert.Len(records, 3)
		assert.Equal(epoch.Add(4*time.Minute), records[0].SentAt)
		assert.Equal(epoch.Add(2*time.Minute), records[2].SentAt)
	})

	t.Run("for number filters other callers out", func(t *testing.T) {
		store := newTestStore(t)
		_, err := store.Append(testRecord("5551234567", epoch), nil)
		assert.NoError(err)
		_, err = store.Append(testRecord("5559876543", epoch.Add(time.Minute)), nil)
		assert.NoError(err)

		records, err := store.ForNumber("5551234567")
		assert.NoError(err)
		assert.Len(records, 1)

		count, err := store.CountAll()
		assert.NoError(err)
		assert.Equal(2, count)
	})

	t.Run("exists within window", func(t *testing.T) {
		store := newTestStore(t)
		_, err := store.Append(testRecord("5551234567", epoch), nil)
		assert.NoError(err)

		exists, err := store.ExistsWithin("5551234567", 5*time.Minute, epoch.Add(time.Minute))
		assert.NoError(err)
		assert.True(exists)

		exists, err = store.ExistsWithin("5551234567", 5*time.Minute, epoch.Add(10*time.Minute))
		assert.NoError(err)
		assert.False(exists)
	})

	t.Run("update status by id", func(t *testing.T) {
		store := newTestStore(t)
		id, err := store.Append(testRecord("5551234567", epoch), nil)
		assert.NoError(err)

		assert.NoError(store.UpdateStatus(id, model.MessageStatusFailed))
		records, err := store.Recent(1)
		assert.NoError(err)
		assert.Equal(model.MessageStatusFailed, records[0].Status)

		err = store.UpdateStatus(id+100, model.MessageStatusFailed)
		assert.True(errors.Is(err, model.ErrorRecordNotFound))
	})

	t.Run("update status by part id", func(t *testing.T) {
		store := newTestStore(t)
		partIDs := []string{model.CreateID(), model.CreateID()}
		_, err := store.Append(testRecord("5551234567", epoch), partIDs)
		assert.NoError(err)

		assert.NoError(store.UpdateStatusByPartID(partIDs[1], model.MessageStatusDelivered))
		records, err := store.Recent(1)
		assert.NoError(err)
		assert.Equal(model.MessageStatusDelivered, records[0].Status)

		err = store.UpdateStatusByPartID("unknown-part", model.MessageStatusDelivered)
		assert.True(errors.Is(err, model.ErrorRecordNotFound))
	})

	t.Run("purge drops old records and their parts", func(t *testing.T) {
		store := newTestStore(t)
		_, err := store.Append(testRecord("5551234567", epoch.Add(-48*time.Hour)), []string{model.CreateID()})
		assert.NoError(err)
		_, err = store.Append(testRecord("5559876543", epoch), nil)
		assert.NoError(err)

		assert.NoError(store.PurgeOlderThan(24*time.Hour, epoch))
		count, err := store.CountAll()
		assert.NoError(err)
		assert.Equal(1, count)
	})

	t.Run("clear removes everything", func(t *testing.T) {
		store := newTestStore(t)
		_, err := store.Append(testRecord("5551234567", epoch), []string{model.CreateID()})
		assert.NoError(err)

		assert.NoError(store.ClearAll())
		count, err := store.CountAll()
		assert.NoError(err)
		assert.Equal(0, count)
	})
}
