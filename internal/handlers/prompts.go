package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"com.charlotteservicehub.autotext/internal/model"
)

type PromptStore interface {
	Pending(deviceID model.DeviceID) ([]model.ReplyPrompt, error)
	MarkHandled(promptID string) error
}

// PendingPrompts returns the unhandled prompt queue for a device, oldest
// first.
func PendingPrompts(prompts PromptStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		deviceID := model.DeviceID(c.Param("deviceID"))

		pending, err := prompts.Pending(deviceID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, pending)
	}
}

func MarkPromptHandled(prompts PromptStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		promptID := c.Param("promptID")

		err := prompts.MarkHandled(promptID)
		if err != nil {
			if errors.Is(err, model.ErrorPromptNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, err.Error())
			}
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}
