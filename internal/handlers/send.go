package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"com.charlotteservicehub.autotext/internal/model"
)

const testMessageBody = "[TEST] This is a test message from AutoText Hub. " +
	"If you received this, the service is working correctly."

type Messenger interface {
	Send(number, body string) ([]string, error)
}

type TestSendLog interface {
	Append(record model.MessageLogRecord, partIDs []string) (int64, error)
}

type testSendParams struct {
	Number string `json:"number"`
}

// TestSend sends the canned verification message and records it with the
// TEST status.
func TestSend(messenger Messenger, logs TestSendLog) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &testSendParams{}
		if err := c.Bind(params); err != nil {
			return err
		}
		if params.Number == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "number is required")
		}

		partIDs, err := messenger.Send(params.Number, testMessageBody)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}

		record := model.MessageLogRecord{
			PhoneNumber: params.Number,
			Body:        testMessageBody,
			SentAt:      time.Now().UTC(),
			Status:      model.MessageStatusTest,
		}
		id, err := logs.Append(record, partIDs)
		if err != nil {
			log.Errorf("recording test message: %v", err)
		}

		return c.JSON(http.StatusOK, map[string]interface{}{"id": id, "segments": len(partIDs)})
	}
}
