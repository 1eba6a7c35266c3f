package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"com.charlotteservicehub.autotext/internal/model"
)

type PreferenceStore interface {
	Get() (*model.Preferences, error)
	Put(prefs *model.Preferences) error
	ResetToDefaults() error
	ResetTemplates() error
	AddBlockedNumber(number string) error
	RemoveBlockedNumber(number string) error
}

func GetPreferences(prefs PreferenceStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		current, err := prefs.Get()
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, current)
	}
}

// PutPreferences replaces the stored preferences. The cooldown is clamped
// into [1,60] by the store.
func PutPreferences(prefs PreferenceStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		updated := &model.Preferences{}
		if err := c.Bind(updated); err != nil {
			return err
		}
		if err := prefs.Put(updated); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, updated)
	}
}

// ResetPreferences restores defaults for everything except the message
// templates.
func ResetPreferences(prefs PreferenceStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := prefs.ResetToDefaults(); err != nil {
			return err
		}
		current, err := prefs.Get()
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, current)
	}
}

// ResetTemplates restores only the default message templates.
func ResetTemplates(prefs PreferenceStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := prefs.ResetTemplates(); err != nil {
			return err
		}
		current, err := prefs.Get()
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, current)
	}
}

type blockedNumberParams struct {
	Number string `json:"number"`
}

func AddBlockedNumber(prefs PreferenceStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &blockedNumberParams{}
		if err := c.Bind(params); err != nil {
			return err
		}
		if params.Number == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "number is required")
		}
		if err := prefs.AddBlockedNumber(params.Number); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func RemoveBlockedNumber(prefs PreferenceStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &blockedNumberParams{}
		if err := c.Bind(params); err != nil {
			return err
		}
		if err := prefs.RemoveBlockedNumber(params.Number); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}
