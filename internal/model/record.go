package model

import "time"

type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "SENT"
	MessageStatusDelivered MessageStatus = "DELIVERED"
	MessageStatusFailed    MessageStatus = "FAILED"
	MessageStatusTest      MessageStatus = "TEST"
)

// MessageLogRecord is a durable record of an outbound send attempt. Status
// starts at SENT (or TEST) and is only ever mutated by delivery receipts.
type MessageLogRecord struct {
	ID          int64         `json:"id" db:"ID"`
	PhoneNumber string        `json:"phoneNumber" db:"PhoneNumber"`
	Body        string        `json:"body" db:"Body"`
	SentAt      time.Time     `json:"sentAt" db:"SentAt"`
	Status      MessageStatus `json:"status" db:"Status"`
}

// DeliveryOutcome is the terminal result reported by the SMS gateway for a
// single message part. Outcomes are observational only; none trigger a retry.
type DeliveryOutcome string

const (
	OutcomeDelivered      DeliveryOutcome = "delivered"
	OutcomeGenericFailure DeliveryOutcome = "generic_failure"
	OutcomeNoService      DeliveryOutcome = "no_service"
	OutcomeEncodingError  DeliveryOutcome = "encoding_error"
	OutcomeRadioOff       DeliveryOutcome = "radio_off"
	OutcomeUnknown        DeliveryOutcome = "unknown"
)

// Failed reports whether the outcome represents a failed send.
func (o DeliveryOutcome) Failed() bool {
	switch o {
	case OutcomeGenericFailure, OutcomeNoService, OutcomeEncodingError, OutcomeRadioOff:
		return true
	}
	return false
}

type PromptKind int

const (
	PromptKindReply PromptKind = iota + 1
	PromptKindGeneric
	PromptKindInfo
)

// ReplyPrompt is a user-actionable prompt queued for an assisted-mode device.
// Reply prompts carry the resolved number and a pre-filled body; generic
// prompts are raised when no number could be resolved.
type ReplyPrompt struct {
	ID          string     `json:"id" db:"ID"`
	DeviceID    DeviceID   `json:"deviceId" db:"DeviceID"`
	Kind        PromptKind `json:"kind" db:"Kind"`
	PhoneNumber string     `json:"phoneNumber" db:"PhoneNumber"`
	Body        string     `json:"body" db:"Body"`
	CreatedAt   time.Time  `json:"createdAt" db:"CreatedAt"`
	Handled     bool       `json:"handled" db:"Handled"`
}

// Device is a paired event source. The ID is derived from the device's
// public key; TokenHash is a bcrypt hash of the one-time auth token issued
// at registration.
type Device struct {
	ID        DeviceID  `json:"id" db:"ID"`
	Name      string    `json:"name" db:"Name"`
	PublicKey string    `json:"publicKey" db:"PublicKey"`
	TokenHash string    `json:"-" db:"TokenHash"`
	CreatedAt time.Time `json:"createdAt" db:"CreatedAt"`
}
