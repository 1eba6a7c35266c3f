package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"com.charlotteservicehub.autotext/internal/model"
)

type ReceiptLog interface {
	UpdateStatusByPartID(partID string, status model.MessageStatus) error
}

type deliveryReceiptParams struct {
	PartID      string                `json:"partId"`
	PhoneNumber string                `json:"phoneNumber"`
	Outcome     model.DeliveryOutcome `json:"outcome"`
}

// DeliveryReceipt is the gateway's callback for per-part send and delivery
// outcomes. Outcomes are terminal and observational: a failure marks the
// record FAILED, a delivery marks it DELIVERED, and nothing is ever
// retried.
func DeliveryReceipt(logs ReceiptLog) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &deliveryReceiptParams{}
		if err := c.Bind(params); err != nil {
			return err
		}
		if params.PartID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "partId is required")
		}

		var status model.MessageStatus
		switch {
		case params.Outcome == model.OutcomeDelivered:
			status = model.MessageStatusDelivered
		case params.Outcome.Failed():
			log.Warnf("send to %s failed: %s", params.PhoneNumber, params.Outcome)
			status = model.MessageStatusFailed
		default:
			// Unknown outcomes are observed and dropped.
			log.Warnf("unknown delivery outcome %q for %s", params.Outcome, params.PhoneNumber)
			return c.NoContent(http.StatusAccepted)
		}

		err := logs.UpdateStatusByPartID(params.PartID, status)
		if err != nil {
			if errors.Is(err, model.ErrorRecordNotFound) {
				// Receipts for unknown correlation IDs are logged and dropped.
				log.Warnf("receipt for unknown part %s", params.PartID)
				return c.NoContent(http.StatusAccepted)
			}
			return err
		}

		return c.NoContent(http.StatusAccepted)
	}
}
