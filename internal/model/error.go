package model

import "errors"

var ErrorDeviceNotFound = errors.New("device not found")
var ErrorInvalidToken = errors.New("invalid device token")
var ErrorInvalidPairingCode = errors.New("invalid pairing code")
var ErrorPromptNotFound = errors.New("prompt not found")
var ErrorRecordNotFound = errors.New("record not found")
var ErrorNoNumberResolved = errors.New("no number resolved")
