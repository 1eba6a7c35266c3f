package keys

import (
	"crypto/ecdsa"
	"encoding/base64"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/cespare/xxhash"
	"github.com/rakutentech/jwk-go/jwk"
)

// DeviceIDFromPublicKey derives the stable device identifier from the
// device's public key.
func DeviceIDFromPublicKey(publicKey *ecdsa.PublicKey) string {
	h := xxhash.New()
	h.Write(publicKey.X.Bytes())
	h.Write(publicKey.Y.Bytes())
	rawID := h.Sum(nil)
	return base58.Encode(rawID[:])
}

// ToJWK renders a device public key as a signing JWK with the device ID as
// the key ID.
func ToJWK(publicKey *ecdsa.PublicKey, keyID string) (*jwk.JWK, error) {
	ks := jwk.NewSpec(publicKey)
	rawJWK, err := ks.ToJWK()
	if err != nil {
		return nil, fmt.Errorf("creating JWK: %w", err)
	}

	rawJWK.Use = "sig"
	rawJWK.Alg = "ES256"
	rawJWK.Kid = keyID

	return rawJWK, nil
}

// EncodePublicKey serializes a public key for storage: base64 over its JWK
// form.
func EncodePublicKey(publicKey *ecdsa.PublicKey, keyID string) (string, error) {
	rawJWK, err := ToJWK(publicKey, keyID)
	if err != nil {
		return "", err
	}

	keyData, err := rawJWK.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("marshalling JWK: %w", err)
	}
	return base64.StdEncoding.EncodeToString(keyData), nil
}

// DecodePublicKey reverses EncodePublicKey.
func DecodePublicKey(publicKey string) (*ecdsa.PublicKey, error) {
	keyData, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil {
		return nil, fmt.Errorf("decoding public key: %w", err)
	}

	keySpec, err := jwk.Parse(string(keyData))
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}

	key, ok := keySpec.Key.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("not an ECDSA public key")
	}
	return key, nil
}
