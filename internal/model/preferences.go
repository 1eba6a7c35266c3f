package model

const (
	DefaultCooldownMinutes = 5

	DefaultMissedCallTemplate = "Hey! It's Charlotte Service Hub—sorry I missed your call. " +
		"You can text me here with what you need (pics welcome). Reply STOP to opt out."

	DefaultFollowUpTemplate = "Got it—thanks! Want me to send a quick estimate or schedule a visit? " +
		"I have openings tomorrow 9–11 or 2–4."
)

// Preferences is the singleton runtime configuration mutated through the
// admin surface. CooldownMinutes is always clamped to [1,60] on write.
type Preferences struct {
	ServiceEnabled       bool     `json:"serviceEnabled"`
	CooldownMinutes      int      `json:"cooldownMinutes"`
	BlockedNumbers       []string `json:"blockedNumbers"`
	LoggingEnabled       bool     `json:"loggingEnabled"`
	NotificationsEnabled bool     `json:"notificationsEnabled"`
	MissedCallTemplate   string   `json:"missedCallTemplate"`
	FollowUpTemplate     string   `json:"followUpTemplate"`
}

// DefaultPreferences returns the out-of-the-box settings.
func DefaultPreferences() *Preferences {
	return &Preferences{
		ServiceEnabled:       true,
		CooldownMinutes:      DefaultCooldownMinutes,
		BlockedNumbers:       []string{},
		LoggingEnabled:       true,
		NotificationsEnabled: true,
		MissedCallTemplate:   DefaultMissedCallTemplate,
		FollowUpTemplate:     DefaultFollowUpTemplate,
	}
}

// ClampCooldown coerces a requested cooldown into the permitted range.
func ClampCooldown(minutes int) int {
	if minutes < 1 {
		return 1
	}
	if minutes > 60 {
		return 60
	}
	return minutes
}
