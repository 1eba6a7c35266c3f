package envelope

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"com.charlotteservicehub.autotext/pkg/keys"
)

type notificationPayload struct {
	SourcePackage string    `json:"sourcePackage"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	PostedAt      time.Time `json:"postedAt"`
}

func TestEnvelope(t *testing.T) {
	assert := assert.New(t)

	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	assert.NoError(err)
	deviceID := keys.DeviceIDFromPublicKey(&privateKey.PublicKey)

	keyFn := func(header *Header) (*ecdsa.PublicKey, error) {
		if header.KeyID != deviceID {
			return nil, errors.New("unknown device")
		}
		return &privateKey.PublicKey, nil
	}

	payload := notificationPayload{
		SourcePackage: "com.google.android.dialer",
		Title:         "Missed call",
		Body:          "John Smith",
		PostedAt:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	t.Run("seal and open round-trip", func(t *testing.T) {
		sealed, id, err := Seal(payload, deviceID, EventTypeNotification, privateKey)
		assert.NoError(err)
		assert.NotEmpty(id)
		assert.True(strings.HasSuffix(id, "."+deviceID))

		opened, err := Open([]byte(sealed), keyFn)
		assert.NoError(err)
		assert.Equal(id, opened.ID)
		assert.Equal(deviceID, opened.DeviceID)
		assert.Equal(EventTypeNotification, opened.EventType)

		decoded := notificationPayload{}
		assert.NoError(json.Unmarshal(opened.Payload, &decoded))
		assert.Equal(payload, decoded)
	})

	t.Run("nil payload is rejected", func(t *testing.T) {
		_, _, err := Seal(nil, deviceID, EventTypeNotification, privateKey)
		assert.True(errors.Is(err, ErrorMissingPayload))
	})

	t.Run("tampered payload fails verification", func(t *testing.T) {
		sealed, _, err := Seal(payload, deviceID, EventTypeNotification, privateKey)
		assert.NoError(err)

		segments := strings.Split(sealed, ".")
		segments[1] = encodeSegment([]byte(`{"title":"forged"}`))
		_, err = Open([]byte(strings.Join(segments, ".")), keyFn)
		assert.True(errors.Is(err, ErrorInvalidSignature))
	})

	t.Run("signature from another key fails verification", func(t *testing.T) {
		otherKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		assert.NoError(err)

		sealed, _, err := Seal(payload, deviceID, EventTypeNotification, otherKey)
		assert.NoError(err)

		_, err = Open([]byte(sealed), keyFn)
		assert.True(errors.Is(err, ErrorInvalidSignature))
	})

	t.Run("malformed wire data is rejected", func(t *testing.T) {
		_, err := Open([]byte("not.an"), keyFn)
		assert.True(errors.Is(err, ErrorInvalidEnvelope))
	})

	t.Run("event type is carried in the header", func(t *testing.T) {
		sealed, _, err := Seal(payload, deviceID, EventTypeCall, privateKey)
		assert.NoError(err)

		opened, err := Open([]byte(sealed), keyFn)
		assert.NoError(err)
		assert.Equal(EventTypeCall, opened.EventType)
	})
}
