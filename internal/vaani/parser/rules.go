package parser

import (
	"strings"

	"github.com/bdobrica/Vaani/internal/vaani/action"
)

// Rule is a keyword fallback: when any of Any occurs in the normalised text,
// the text resolves to Key. Rules are only consulted after no lexicon
// phrase matched, in the order given.
type Rule struct {
	Key action.Key
	Any []string
}

// Matches reports whether any keyword occurs in text.
func (r Rule) Matches(text string) bool {
	for _, kw := range r.Any {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// DefaultRules returns the stock English keyword rules in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{Key: action.Shutdown, Any: []string{"shutdown", "turn off", "power off"}},
		{Key: action.Restart, Any: []string{"restart", "reboot"}},
		{Key: action.Sleep, Any: []string{"sleep", "suspend"}},
		{Key: action.VolumeUp, Any: []string{"volume up", "increase volume"}},
		{Key: action.VolumeDown, Any: []string{"volume down", "decrease volume"}},
		{Key: action.Mute, Any: []string{"mute"}},
		{Key: action.Time, Any: []string{"time", "what time"}},
		{Key: action.Date, Any: []string{"date", "what date", "today"}},
		{Key: action.Battery, Any: []string{"battery", "charge"}},
		{Key: action.SystemStatus, Any: []string{"system status", "pc status", "status check"}},
	}
}

// defaultConnectors are trimmed from the edges of parameter text.
var defaultConnectors = []string{
	// English
	"the", "a", "an", "to", "for", "on", "in", "of", "and", "with", "please", "about", "me", "my", "up",
	// Romanised Hindi
	"ko", "ka", "ki", "ke", "par", "pe", "mein", "me", "se", "aur", "karo", "kar", "do", "na", "zara", "jara", "please",
	// Devanagari
	"को", "का", "की", "के", "पर", "में", "से", "और", "करो", "कर", "दो", "ना", "ज़रा", "जरा",
}

// defaultSearchCues mark leftover text after "open browser" as a search.
var defaultSearchCues = []string{
	"search", "google", "find", "look", "lookup", "dhoondo", "dhundo", "khojo",
	"सर्च", "खोजो", "ढूंढो", "गूगल",
}
