package model

import "time"

type DeviceID string

type CallType int

const (
	CallTypeIncoming CallType = iota + 1
	CallTypeOutgoing
	CallTypeMissed
)

// NotificationEvent is a raw notification as posted on a paired device and
// relayed to the server. It is consumed once by the dispatch service and
// never stored.
type NotificationEvent struct {
	DeviceID      DeviceID  `json:"deviceId"`
	SourcePackage string    `json:"sourcePackage"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	PostedAt      time.Time `json:"postedAt"`
}

// CallEvent is a call-journal entry relayed by a paired device. Missed
// entries back the call-log number resolution strategy.
type CallEvent struct {
	DeviceID   DeviceID  `json:"deviceId" db:"DeviceID"`
	Number     string    `json:"number" db:"Number"`
	Type       CallType  `json:"type" db:"Type"`
	OccurredAt time.Time `json:"occurredAt" db:"OccurredAt"`
}

type ResolutionMethod int

const (
	ResolutionCallLog ResolutionMethod = iota + 1
	ResolutionTextExtraction
)

// CallerCandidate is a resolved caller number together with how it was
// obtained. Ephemeral, produced by the active dispatch strategy.
type CallerCandidate struct {
	RawNumber string
	Method    ResolutionMethod
}

// MissedCallSignal is the detector's positive classification of a
// notification event.
type MissedCallSignal struct {
	Event   NotificationEvent
	Keyword string
}
