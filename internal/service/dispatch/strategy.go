package dispatch

import (
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"com.charlotteservicehub.autotext/internal/model"
	"com.charlotteservicehub.autotext/internal/service/detect"
)

// strategy is the capability mode selected once at startup: auto sends
// through the gateway, assisted queues a tap-to-send prompt.
type strategy interface {
	resolve(event model.NotificationEvent, now time.Time) (model.CallerCandidate, bool)
	act(signal *model.MissedCallSignal, candidate model.CallerCandidate, prefs *model.Preferences, now time.Time) error
	fallback(signal *model.MissedCallSignal, prefs *model.Preferences, now time.Time) error
}

type autoStrategy struct {
	window    time.Duration
	journal   CallJournal
	messenger Messenger
	logs      MessageLog
	prompts   PromptQueue
}

func (a *autoStrategy) resolve(event model.NotificationEvent, now time.Time) (model.CallerCandidate, bool) {
	number, err := a.journal.LastMissedNumber(event.DeviceID, now, a.window)
	if err != nil {
		// Journal failures are treated as "no number resolved", never fatal.
		log.Debugf("call journal lookup: %v", err)
		return model.CallerCandidate{}, false
	}
	return model.CallerCandidate{RawNumber: number, Method: model.ResolutionCallLog}, true
}

func (a *autoStrategy) act(signal *model.MissedCallSignal, candidate model.CallerCandidate,
	prefs *model.Preferences, now time.Time) error {

	partIDs, err := a.messenger.Send(candidate.RawNumber, prefs.MissedCallTemplate)
	if err != nil {
		// Fire-and-forget, at-most-once: no record, no retry.
		log.Errorf("sending auto-reply to %s: %v", candidate.RawNumber, err)
		return nil
	}
	log.Infof("auto-reply sent to %s", candidate.RawNumber)

	if prefs.LoggingEnabled {
		record := model.MessageLogRecord{
			PhoneNumber: candidate.RawNumber,
			Body:        prefs.MissedCallTemplate,
			SentAt:      now,
			Status:      model.MessageStatusSent,
		}
		if _, err := a.logs.Append(record, partIDs); err != nil {
			// A log write failure does not roll back the send.
			log.Errorf("recording auto-reply: %v", err)
		}
	}

	if prefs.NotificationsEnabled {
		_, err := a.prompts.Append(model.ReplyPrompt{
			DeviceID:    signal.Event.DeviceID,
			Kind:        model.PromptKindInfo,
			PhoneNumber: candidate.RawNumber,
			Body:        fmt.Sprintf("Auto-reply sent to %s", candidate.RawNumber),
			CreatedAt:   now,
		})
		if err != nil {
			log.Errorf("queueing sent notification: %v", err)
		}
	}

	return nil
}

func (a *autoStrategy) fallback(signal *model.MissedCallSignal, prefs *model.Preferences, now time.Time) error {
	// Nothing to do without a number; the miss was already logged.
	return nil
}

type assistedStrategy struct {
	prompts PromptQueue
}

func (a *assistedStrategy) resolve(event model.NotificationEvent, now time.Time) (model.CallerCandidate, bool) {
	number, ok := detect.ExtractNumber(event.Title)
	if !ok {
		number, ok = detect.ExtractNumber(event.Body)
	}
	if !ok {
		return model.CallerCandidate{}, false
	}
	return model.CallerCandidate{RawNumber: number, Method: model.ResolutionTextExtraction}, true
}

func (a *assistedStrategy) act(signal *model.MissedCallSignal, candidate model.CallerCandidate,
	prefs *model.Preferences, now time.Time) error {

	_, err := a.prompts.Append(model.ReplyPrompt{
		DeviceID:    signal.Event.DeviceID,
		Kind:        model.PromptKindReply,
		PhoneNumber: candidate.RawNumber,
		Body:        prefs.MissedCallTemplate,
		CreatedAt:   now,
	})
	if err != nil {
		log.Errorf("queueing reply prompt: %v", err)
		return nil
	}
	log.Infof("reply prompt queued for %s", candidate.RawNumber)
	return nil
}

func (a *assistedStrategy) fallback(signal *model.MissedCallSignal, prefs *model.Preferences, now time.Time) error {
	_, err := a.prompts.Append(model.ReplyPrompt{
		DeviceID:  signal.Event.DeviceID,
		Kind:      model.PromptKindGeneric,
		Body:      "Missed call detected. Open Messages to reply.",
		CreatedAt: now,
	})
	if err != nil {
		log.Errorf("queueing generic prompt: %v", err)
	}
	return nil
}
