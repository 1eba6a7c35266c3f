package dispatch

import (
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"com.charlotteservicehub.autotext/internal/boot"
	"com.charlotteservicehub.autotext/internal/model"
	"com.charlotteservicehub.autotext/internal/service/detect"
)

type Preferences interface {
	Get() (*model.Preferences, error)
	IsNumberBlocked(number string) (bool, error)
}

type MessageLog interface {
	Append(record model.MessageLogRecord, partIDs []string) (int64, error)
}

type CallJournal interface {
	LastMissedNumber(deviceID model.DeviceID, now time.Time, window time.Duration) (string, error)
}

type Messenger interface {
	Send(number, body string) ([]string, error)
}

type PromptQueue interface {
	Append(prompt model.ReplyPrompt) (string, error)
}

// Service applies the dispatch policy to incoming notification events:
// detect, resolve the caller, gate on blocklist and cooldown, then either
// send or prompt depending on the strategy chosen at startup.
type Service struct {
	prefs    Preferences
	ledger   *Ledger
	strategy strategy
	now      func() time.Time
}

func New(config *boot.Config, prefs Preferences, journal CallJournal,
	messenger Messenger, logs MessageLog, prompts PromptQueue) (*Service, error) {

	var strat strategy
	switch config.Mode {
	case boot.ModeAuto:
		strat = &autoStrategy{
			window:    config.CallLogWindow,
			journal:   journal,
			messenger: messenger,
			logs:      logs,
			prompts:   prompts,
		}
	case boot.ModeAssisted:
		strat = &assistedStrategy{prompts: prompts}
	default:
		return nil, fmt.Errorf("unknown dispatch mode: %s", config.Mode)
	}

	return &Service{
		prefs:    prefs,
		ledger:   NewLedger(),
		strategy: strat,
		now:      time.Now,
	}, nil
}

// HandleNotification runs one notification event through the policy. Every
// failure path degrades to "nothing observable": errors are surfaced for
// diagnostics but never produce a retry.
func (s *Service) HandleNotification(event model.NotificationEvent) error {
	prefs, err := s.prefs.Get()
	if err != nil {
		return fmt.Errorf("loading preferences: %w", err)
	}
	if !prefs.ServiceEnabled {
		log.Debugf("service disabled, ignoring event from %s", event.SourcePackage)
		return nil
	}

	signal, ok := detect.Detect(event)
	if !ok {
		return nil
	}
	log.Infof("missed call detected on device %s (keyword %q)", event.DeviceID, signal.Keyword)

	now := s.now()
	candidate, ok := s.strategy.resolve(event, now)
	if !ok {
		log.Warnf("could not resolve caller number for device %s", event.DeviceID)
		return s.strategy.fallback(signal, prefs, now)
	}

	blocked, err := s.prefs.IsNumberBlocked(candidate.RawNumber)
	if err != nil {
		return fmt.Errorf("checking blocklist: %w", err)
	}
	if blocked {
		log.Debugf("number %s is blocked, dropping", model.NormalizeNumber(candidate.RawNumber))
		return nil
	}

	// The reservation gates the prompt in assisted mode, not just the send:
	// a dismissed prompt is not re-raised within the window.
	window := time.Duration(prefs.CooldownMinutes) * time.Minute
	if !s.ledger.CheckAndReserve(candidate.RawNumber, now, window) {
		log.Debugf("number %s in cooldown, dropping", model.NormalizeNumber(candidate.RawNumber))
		return nil
	}

	return s.strategy.act(signal, candidate, prefs, now)
}
