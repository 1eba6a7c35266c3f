package messenger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"com.charlotteservicehub.autotext/internal/boot"
)

func TestSegmentCount(t *testing.T) {
	assert := assert.New(t)

	t.Run("short message is one segment", func(t *testing.T) {
		assert.Equal(1, SegmentCount(strings.Repeat("a", 100)))
	})

	t.Run("boundary counts the next segment", func(t *testing.T) {
		assert.Equal(1, SegmentCount(strings.Repeat("a", 159)))
		assert.Equal(2, SegmentCount(strings.Repeat("a", 160)))
	})

	t.Run("long message", func(t *testing.T) {
		assert.Equal(3, SegmentCount(strings.Repeat("a", 321)))
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		assert.Equal(1, SegmentCount(strings.Repeat("é", 100)))
	})
}

func TestSplitParts(t *testing.T) {
	assert := assert.New(t)

	t.Run("short body is a single part", func(t *testing.T) {
		parts := SplitParts("hello")
		assert.Equal([]string{"hello"}, parts)
	})

	t.Run("long body splits into concatenation-sized chunks", func(t *testing.T) {
		body := strings.Repeat("a", 321)
		parts := SplitParts(body)
		assert.Len(parts, 3)
		assert.Len(parts[0], 153)
		assert.Len(parts[1], 153)
		assert.Len(parts[2], 15)
		assert.Equal(body, strings.Join(parts, ""))
	})
}

func TestSend(t *testing.T) {
	assert := assert.New(t)

	newService := func(url string) *Service {
		config := &boot.Config{}
		config.Gateway.URL = url
		config.Gateway.APIKey = "test-key"
		config.Gateway.Timeout = 5 * time.Second
		return New(config)
	}

	t.Run("posts parts with correlation ids", func(t *testing.T) {
		var received gatewayRequest
		var auth string
		gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			assert.NoError(json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer gateway.Close()

		service := newService(gateway.URL)
		partIDs, err := service.Send("+15551234567", strings.Repeat("a", 321))
		assert.NoError(err)
		assert.Len(partIDs, 3)
		assert.Equal("Bearer test-key", auth)
		assert.Equal("+15551234567", received.To)
		assert.Len(received.Parts, 3)
		for i, part := range received.Parts {
			assert.Equal(partIDs[i], part.ID)
		}
	})

	t.Run("non-2xx status is an error", func(t *testing.T) {
		gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer gateway.Close()

		service := newService(gateway.URL)
		_, err := service.Send("+15551234567", "hello")
		assert.Error(err)
	})

	t.Run("missing gateway configuration is an error", func(t *testing.T) {
		service := newService("")
		_, err := service.Send("+15551234567", "hello")
		assert.Error(err)
	})
}
