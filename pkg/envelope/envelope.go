package envelope

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/btcsuite/btcutil/base58"
)

const (
	AlgorithmES256    = "ES256"
	TypeAutotextEvent = "x-autotext-event"

	EventTypeNotification = "notification"
	EventTypeCall         = "call"
)

// Header identifies the sending device and the event type carried in the
// payload. KeyID is the device ID whose registered public key verifies the
// signature.
type Header struct {
	KeyID     string `json:"kid"`
	Algorithm string `json:"alg"`
	Type      string `json:"typ"`
	Version   string `json:"v"`
	Timestamp int64  `json:"ts"`
}

// Envelope is a verified device event: a three-segment, dot-separated
// base64 structure (header.payload.signature) signed with the device key.
type Envelope struct {
	Raw       []string
	ID        string
	Header    Header
	EventType string
	Payload   []byte
	DeviceID  string
}

type PublicKeyFn func(header *Header) (*ecdsa.PublicKey, error)

var (
	ErrorInvalidSignature = errors.New("invalid signature")
	ErrorMissingPayload   = errors.New("missing payload")
	ErrorInvalidEnvelope  = errors.New("invalid envelope")
)

// Seal signs an event payload with the device's private key and returns the
// wire form plus the envelope ID.
func Seal(payload interface{}, deviceID string, eventType string, privateKey *ecdsa.PrivateKey) (string, string, error) {
	if payload == nil {
		return "", "", ErrorMissingPayload
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", "", fmt.Errorf("marshalling payload: %w", err)
	}

	header := &Header{
		KeyID:     deviceID,
		Algorithm: AlgorithmES256,
		Type:      fmt.Sprintf("%s;%s", TypeAutotextEvent, eventType),
		Version:   "1",
		Timestamp: time.Now().UTC().UnixMilli(),
	}

	headerBytes, err := json.Marshal(header)
	if err != nil {
		return "", "", fmt.Errorf("marshalling header: %w", err)
	}

	sb := strings.Builder{}
	sb.WriteString(encodeSegment(headerBytes))
	sb.WriteString(".")
	sb.WriteString(encodeSegment(payloadBytes))

	digest := sha256.Sum256([]byte(sb.String()))
	r, s, err := ecdsa.Sign(rand.Reader, privateKey, digest[:])
	if err != nil {
		return "", "", fmt.Errorf("signing envelope: %w", err)
	}

	signature := make([]byte, 64)
	r.FillBytes(signature[0:32])
	s.FillBytes(signature[32:64])

	sb.WriteString(".")
	sb.WriteString(encodeSegment(signature))

	return sb.String(), envelopeID(signature, deviceID), nil
}

// Open parses and verifies a sealed envelope. The public key for the sending
// device is looked up through publicKeyFn once the header has been decoded.
func Open(data []byte, publicKeyFn PublicKeyFn) (*Envelope, error) {
	e := &Envelope{
		Raw: strings.Split(string(data), "."),
	}

	if len(e.Raw) != 3 {
		return nil, ErrorInvalidEnvelope
	}

	headerBytes, err := decodeSegment(e.Raw[0])
	if err != nil {
		return nil, fmt.Errorf("decoding header: %w", err)
	}
	if err := json.Unmarshal(headerBytes, &e.Header); err != nil {
		return nil, fmt.Errorf("unmarshalling header: %w", err)
	}

	if e.Header.Algorithm != AlgorithmES256 {
		return nil, fmt.Errorf("unsupported algorithm: %s", e.Header.Algorithm)
	}
	if e.Header.Version != "1" {
		return nil, fmt.Errorf("unsupported version: %s", e.Header.Version)
	}

	typeParts := strings.SplitN(e.Header.Type, ";", 2)
	if typeParts[0] != TypeAutotextEvent || len(typeParts) != 2 {
		return nil, fmt.Errorf("unsupported type: %s", e.Header.Type)
	}
	e.EventType = typeParts[1]
	e.DeviceID = e.Header.KeyID

	signature, err := e.verify(publicKeyFn)
	if err != nil {
		return nil, fmt.Errorf("verifying envelope: %w", err)
	}
	e.ID = envelopeID(signature, e.DeviceID)

	e.Payload, err = decodeSegment(e.Raw[1])
	if err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}

	return e, nil
}

func (e *Envelope) verify(publicKeyFn PublicKeyFn) ([]byte, error) {
	signingString := strings.Join(e.Raw[:2], ".")

	signature, err := decodeSegment(e.Raw[2])
	if err != nil {
		return nil, fmt.Errorf("decoding signature: %w", err)
	}
	if len(signature) != 64 {
		return nil, ErrorInvalidSignature
	}

	r := new(big.Int).SetBytes(signature[0:32])
	s := new(big.Int).SetBytes(signature[32:64])

	digest := sha256.Sum256([]byte(signingString))

	publicKey, err := publicKeyFn(&e.Header)
	if err != nil {
		return nil, fmt.Errorf("getting public key: %w", err)
	}
	if !ecdsa.Verify(publicKey, digest[:], r, s) {
		return nil, ErrorInvalidSignature
	}

	return signature, nil
}

func envelopeID(signature []byte, deviceID string) string {
	digest := sha256.Sum256(signature)
	return base58.Encode(digest[:]) + "." + deviceID
}

func encodeSegment(segment []byte) string {
	return base64.RawURLEncoding.EncodeToString(segment)
}

func decodeSegment(segment string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(segment)
}
