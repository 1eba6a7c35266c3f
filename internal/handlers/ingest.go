package handlers

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"com.charlotteservicehub.autotext/internal/model"
	"com.charlotteservicehub.autotext/pkg/envelope"
)

type Dispatcher interface {
	HandleNotification(event model.NotificationEvent) error
}

type CallJournal interface {
	Append(event model.CallEvent) error
}

type DeviceKeys interface {
	PublicKey(deviceID model.DeviceID) (*ecdsa.PublicKey, error)
}

// Ingest accepts sealed device events: notification events feed the
// dispatch policy, call events feed the call journal. The envelope
// signature is verified against the sending device's registered key before
// anything is processed.
func Ingest(devices DeviceKeys, dispatcher Dispatcher, journal CallJournal) echo.HandlerFunc {
	return func(c echo.Context) error {
		body := c.Request().Body
		defer body.Close()

		raw, err := io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("reading request body: %w", err)
		}

		event, err := envelope.Open(raw, func(header *envelope.Header) (*ecdsa.PublicKey, error) {
			return devices.PublicKey(model.DeviceID(header.KeyID))
		})
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "envelope verification failed")
		}

		deviceID := model.DeviceID(event.DeviceID)

		switch event.EventType {
		case envelope.EventTypeNotification:
			notification := model.NotificationEvent{}
			if err := json.Unmarshal(event.Payload, &notification); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "malformed notification event")
			}
			notification.DeviceID = deviceID

			// Dispatch failures degrade silently; the device gets its ack
			// either way.
			if err := dispatcher.HandleNotification(notification); err != nil {
				log.Errorf("dispatching notification: %v", err)
			}

		case envelope.EventTypeCall:
			call := model.CallEvent{}
			if err := json.Unmarshal(event.Payload, &call); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "malformed call event")
			}
			call.DeviceID = deviceID

			if err := journal.Append(call); err != nil {
				log.Errorf("recording call event: %v", err)
			}

		default:
			return echo.NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("unknown event type: %s", event.EventType))
		}

		return c.JSON(http.StatusAccepted, map[string]string{"id": event.ID})
	}
}
