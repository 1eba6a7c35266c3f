package detect

import (
	"strings"

	"com.charlotteservicehub.autotext/internal/model"
)

// Dialer and telephony packages known to post missed-call notifications
// across stock Android and vendor ROMs. Matching is case-sensitive and
// exact.
var dialerPackages = map[string]struct{}{
	"com.google.android.dialer":     {},
	"com.android.server.telecom":    {},
	"com.android.phone":             {},
	"com.samsung.android.incallui":  {},
	"com.samsung.android.dialer":    {},
	"com.oneplus.dialer":            {},
	"com.miui.securitycenter":       {},
	"com.huawei.systemmanager":      {},
	"com.asus.contacts":             {},
	"com.sonymobile.android.dialer": {},
}

// Missed-call keywords across the languages the app supports. Matching is
// plain substring over the lowercased title+body, which can false-positive
// on unrelated notifications that happen to contain a phrase; that behavior
// is intentional and kept.
var missedCallKeywords = []string{
	"missed call",          // English
	"llamada perdida",      // Spanish
	"appel manqué",         // French
	"verpasster anruf",     // German
	"chamada perdida",      // Portuguese
	"chiamata persa",       // Italian
	"不在着信",                 // Japanese
	"未接来电",                 // Chinese (Simplified)
	"未接來電",                 // Chinese (Traditional)
	"부재중 전화",               // Korean
	"пропущенный вызов",    // Russian
}

// Detect classifies a notification event as a missed call. It is a pure
// function of the event and the static package/keyword tables.
func Detect(event model.NotificationEvent) (*model.MissedCallSignal, bool) {
	if _, ok := dialerPackages[event.SourcePackage]; !ok {
		return nil, false
	}

	content := strings.ToLower(event.Title + " " + event.Body)
	for _, keyword := range missedCallKeywords {
		if strings.Contains(content, keyword) {
			return &model.MissedCallSignal{Event: event, Keyword: keyword}, true
		}
	}

	return nil, false
}
