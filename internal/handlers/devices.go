package handlers

import (
	"crypto/ecdsa"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"com.charlotteservicehub.autotext/internal/model"
	"com.charlotteservicehub.autotext/pkg/keys"
)

type DeviceService interface {
	Register(name string, publicKey *ecdsa.PublicKey) (*model.Device, string, error)
	PublicKey(deviceID model.DeviceID) (*ecdsa.PublicKey, error)
	RotateKey(deviceID model.DeviceID, token string, publicKey *ecdsa.PublicKey) error
}

type registerDeviceParams struct {
	Name        string `json:"name"`
	PublicKey   string `json:"publicKey"`
	PairingCode string `json:"pairingCode"`
}

type registerDeviceResponse struct {
	Device *model.Device `json:"device"`
	Token  string        `json:"token"`
}

// RegisterDevice pairs a new device. The caller proves possession of the
// pairing code and supplies its public signing key; the response carries the
// one-time auth token.
func RegisterDevice(devices DeviceService, pairingCode string) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &registerDeviceParams{}
		if err := c.Bind(params); err != nil {
			return err
		}

		if subtle.ConstantTimeCompare([]byte(params.PairingCode), []byte(pairingCode)) != 1 {
			return echo.NewHTTPError(http.StatusForbidden, model.ErrorInvalidPairingCode.Error())
		}

		publicKey, err := keys.DecodePublicKey(params.PublicKey)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid public key")
		}

		device, token, err := devices.Register(params.Name, publicKey)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusCreated, registerDeviceResponse{Device: device, Token: token})
	}
}

// GetDeviceKey returns a device's registered public key as a JWK.
func GetDeviceKey(devices DeviceService) echo.HandlerFunc {
	return func(c echo.Context) error {
		deviceID := model.DeviceID(c.Param("deviceID"))

		publicKey, err := devices.PublicKey(deviceID)
		if err != nil {
			if errors.Is(err, model.ErrorDeviceNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, err.Error())
			}
			return err
		}

		rawJWK, err := keys.ToJWK(publicKey, string(deviceID))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, rawJWK)
	}
}

type rotateKeyParams struct {
	Token     string `json:"token"`
	PublicKey string `json:"publicKey"`
}

// RotateDeviceKey replaces a device's signing key after verifying its auth
// token.
func RotateDeviceKey(devices DeviceService) echo.HandlerFunc {
	return func(c echo.Context) error {
		deviceID := model.DeviceID(c.Param("deviceID"))

		params := &rotateKeyParams{}
		if err := c.Bind(params); err != nil {
			return err
		}

		publicKey, err := keys.DecodePublicKey(params.PublicKey)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid public key")
		}

		err = devices.RotateKey(deviceID, params.Token, publicKey)
		if err != nil {
			switch {
			case errors.Is(err, model.ErrorDeviceNotFound):
				return echo.NewHTTPError(http.StatusNotFound, err.Error())
			case errors.Is(err, model.ErrorInvalidToken):
				return echo.NewHTTPError(http.StatusForbidden, err.Error())
			}
			return err
		}

		return c.NoContent(http.StatusNoContent)
	}
}
