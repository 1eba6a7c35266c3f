package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"com.charlotteservicehub.autotext/internal/model"
)

const defaultLogLimit = 50

type MessageLogStore interface {
	Recent(limit int) ([]model.MessageLogRecord, error)
	ForNumber(number string) ([]model.MessageLogRecord, error)
	CountAll() (int, error)
	PurgeOlderThan(retention time.Duration, now time.Time) error
	ClearAll() error
}

func RecentLogs(logs MessageLogStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := defaultLogLimit
		if raw := c.QueryParam("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
			}
			limit = parsed
		}

		if number := c.QueryParam("number"); number != "" {
			records, err := logs.ForNumber(number)
			if err != nil {
				return err
			}
			return c.JSON(http.StatusOK, records)
		}

		records, err := logs.Recent(limit)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, records)
	}
}

func CountLogs(logs MessageLogStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		count, err := logs.CountAll()
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]int{"count": count})
	}
}

type purgeLogsParams struct {
	OlderThanMs int64 `json:"olderThanMs"`
}

func PurgeLogs(logs MessageLogStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &purgeLogsParams{}
		if err := c.Bind(params); err != nil {
			return err
		}
		if params.OlderThanMs <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "olderThanMs must be positive")
		}

		retention := time.Duration(params.OlderThanMs) * time.Millisecond
		if err := logs.PurgeOlderThan(retention, time.Now().UTC()); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func ClearLogs(logs MessageLogStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := logs.ClearAll(); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}
