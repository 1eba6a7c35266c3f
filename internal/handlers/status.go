package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type StatusCounter interface {
	CountAll() (int, error)
}

type statusResponse struct {
	ServiceEnabled bool   `json:"serviceEnabled"`
	Mode           string `json:"mode"`
	CooldownMins   int    `json:"cooldownMinutes"`
	MessageCount   int    `json:"messageCount"`
}

// Status summarizes the service state for the admin dashboard.
func Status(prefs PreferenceStore, logs StatusCounter, mode string) echo.HandlerFunc {
	return func(c echo.Context) error {
		current, err := prefs.Get()
		if err != nil {
			return err
		}
		count, err := logs.CountAll()
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, statusResponse{
			ServiceEnabled: current.ServiceEnabled,
			Mode:           mode,
			CooldownMins:   current.CooldownMinutes,
			MessageCount:   count,
		})
	}
}
