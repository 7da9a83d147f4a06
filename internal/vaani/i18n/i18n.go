// Package i18n holds the bilingual response catalog.
//
// Templates use positional placeholders {0}, {1}, ... A message missing in
// the requested language falls back to English, and an unknown ID renders
// as the ID itself so a gap in the catalog is visible but harmless.
package i18n

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bdobrica/Vaani/internal/vaani/lang"
)

// ID names a catalog message.
type ID string

const (
	ConfirmShutdown      ID = "confirm_shutdown"
	ConfirmRestart       ID = "confirm_restart"
	ConfirmSleep         ID = "confirm_sleep"
	ConfirmDelete        ID = "confirm_delete"
	ConfirmAppClose      ID = "confirm_app_close"
	ConfirmWhatsApp      ID = "confirm_whatsapp"
	ConfirmationPrompt   ID = "confirmation_prompt"
	ConfirmationTimeout  ID = "confirmation_timeout"
	ConfirmationInvalid  ID = "confirmation_invalid"
	ActionCancelled      ID = "action_cancelled"
	ShutdownInitiated    ID = "shutdown_initiated"
	RestartInitiated     ID = "restart_initiated"
	SleepInitiated       ID = "sleep_initiated"
	PowerDisabled        ID = "power_disabled"
	VolumeIncreased      ID = "volume_increased"
	VolumeDecreased      ID = "volume_decreased"
	Muted                ID = "muted"
	TimeIs               ID = "time_is"
	DateIs               ID = "date_is"
	BatteryStatus        ID = "battery_status"
	SystemStatus         ID = "system_status"
	AppOpened            ID = "app_opened"
	AppClosed            ID = "app_closed"
	NoAppSpecified       ID = "no_app_specified"
	WindowMinimized      ID = "window_minimized"
	WindowMaximized      ID = "window_maximized"
	DesktopShown         ID = "desktop_shown"
	SearchingWeb         ID = "searching_web"
	BrowserOpened        ID = "browser_opened"
	TempCleaned          ID = "temp_cleaned"
	MacroStarted         ID = "macro_started"
	MacroNotFound        ID = "macro_not_found"
	MacroNested          ID = "macro_nested"
	AutomationStatus     ID = "automation_status"
	CommandNotUnderstood ID = "command_not_understood"
	HandlerFailed        ID = "handler_failed"
	RateLimited          ID = "rate_limited"
)

var catalog = map[lang.Language]map[ID]string{
	lang.English: {
		ConfirmShutdown:      "Are you sure you want to shutdown the computer?",
		ConfirmRestart:       "Are you sure you want to restart the computer?",
		ConfirmSleep:         "Are you sure you want to put the computer to sleep?",
		ConfirmDelete:        "Are you sure you want to delete this?",
		ConfirmAppClose:      "Are you sure you want to close {0}?",
		ConfirmWhatsApp:      "Send message to {0}?",
		ConfirmationPrompt:   "{0} Reply \"approve {1}\" or \"deny {1}\".",
		ConfirmationTimeout:  "Confirmation timed out. Action cancelled.",
		ConfirmationInvalid:  "That confirmation is unknown, already answered or expired.",
		ActionCancelled:      "Action cancelled.",
		ShutdownInitiated:    "Shutting down the system.",
		RestartInitiated:     "Restarting the system.",
		SleepInitiated:       "Putting the system to sleep.",
		PowerDisabled:        "Power commands are disabled.",
		VolumeIncreased:      "Volume increased.",
		VolumeDecreased:      "Volume decreased.",
		Muted:                "System muted.",
		TimeIs:               "The current time is {0}.",
		DateIs:               "Today is {0}.",
		BatteryStatus:        "Battery is at {0}%.",
		SystemStatus:         "Vaani is running. {0} pending confirmations, {1} enabled tasks, {2} enabled macros.",
		AppOpened:            "Opening {0}.",
		AppClosed:            "Closed {0}.",
		NoAppSpecified:       "No app name specified.",
		WindowMinimized:      "Minimized window.",
		WindowMaximized:      "Maximized window.",
		DesktopShown:         "Showing desktop.",
		SearchingWeb:         "Searching the web for {0}.",
		BrowserOpened:        "Opening the browser.",
		TempCleaned:          "Temporary files cleaned up.",
		MacroStarted:         "Executing macro: {0}",
		MacroNotFound:        "No macro named {0}.",
		MacroNested:          "A macro cannot start another macro.",
		AutomationStatus:     "Scheduler {0}. {1} of {2} tasks enabled, {3} of {4} macros enabled.",
		CommandNotUnderstood: "I'm sorry, I didn't understand that command.",
		HandlerFailed:        "Something went wrong while running {0}.",
		RateLimited:          "Too many requests, please wait a moment.",
	},
	lang.Hindi: {
		ConfirmShutdown:      "क्या आप वाकई कंप्यूटर बंद करना चाहते हैं?",
		ConfirmRestart:       "क्या आप वाकई कंप्यूटर दोबारा शुरू करना चाहते हैं?",
		ConfirmSleep:         "क्या आप वाकई कंप्यूटर को स्लीप मोड में डालना चाहते हैं?",
		ConfirmDelete:        "क्या आप वाकई इसे हटाना चाहते हैं?",
		ConfirmAppClose:      "क्या आप वाकई {0} बंद करना चाहते हैं?",
		ConfirmWhatsApp:      "{0} को संदेश भेजें?",
		ConfirmationPrompt:   "{0} \"haan {1}\" या \"nahi {1}\" लिखें।",
		ConfirmationTimeout:  "पुष्टि का समय समाप्त हो गया। कार्य रद्द कर दिया गया है।",
		ConfirmationInvalid:  "यह पुष्टि अमान्य है, पहले ही तय हो चुकी है या समाप्त हो गई है।",
		ActionCancelled:      "कार्य रद्द कर दिया गया है।",
		ShutdownInitiated:    "सिस्टम बंद हो रहा है।",
		RestartInitiated:     "सिस्टम दोबारा शुरू हो रहा है।",
		SleepInitiated:       "सिस्टम स्लीप मोड में जा रहा है।",
		PowerDisabled:        "पावर कमांड बंद हैं।",
		VolumeIncreased:      "आवाज़ बढ़ा दी गई है।",
		VolumeDecreased:      "आवाज़ कम कर दी गई है।",
		Muted:                "सिस्टम म्यूट कर दिया गया है।",
		TimeIs:               "अभी का समय {0} है।",
		DateIs:               "आज {0} है।",
		BatteryStatus:        "बैटरी {0}% है।",
		SystemStatus:         "वाणी चल रही है। {0} पुष्टि बाकी, {1} टास्क चालू, {2} मैक्रो चालू।",
		AppOpened:            "{0} खोल रहा हूँ।",
		AppClosed:            "{0} बंद कर दिया गया है।",
		NoAppSpecified:       "ऐप का नाम नहीं बताया गया।",
		WindowMinimized:      "विंडो छोटी कर दी गई है।",
		WindowMaximized:      "विंडो बड़ी कर दी गई है।",
		DesktopShown:         "डेस्कटॉप दिखा रहा हूँ।",
		SearchingWeb:         "{0} के लिए वेब पर खोज रहा हूँ।",
		BrowserOpened:        "ब्राउज़र खोल रहा हूँ।",
		TempCleaned:          "अस्थायी फाइलें साफ कर दी गई हैं।",
		MacroStarted:         "मैक्रो शुरू कर रहा हूँ: {0}",
		MacroNotFound:        "{0} नाम का कोई मैक्रो नहीं है।",
		MacroNested:          "एक मैक्रो दूसरा मैक्रो शुरू नहीं कर सकता।",
		AutomationStatus:     "शेड्यूलर {0}। {2} में से {1} टास्क चालू, {4} में से {3} मैक्रो चालू।",
		CommandNotUnderstood: "क्षमा करें, मुझे यह समझ नहीं आया।",
		HandlerFailed:        "{0} चलाते समय कुछ गड़बड़ हो गई।",
		RateLimited:          "बहुत सारे अनुरोध, कृपया थोड़ा रुकें।",
	},
}

// T renders message id in language l with positional arguments.
func T(l lang.Language, id ID, args ...any) string {
	tmpl, ok := catalog[l.Or(lang.English)][id]
	if !ok {
		if tmpl, ok = catalog[lang.English][id]; !ok {
			return string(id)
		}
	}
	if len(args) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, 2*len(args))
	for i, a := range args {
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", fmt.Sprint(a))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// Has reports whether id exists in language l without falling back.
func Has(l lang.Language, id ID) bool {
	_, ok := catalog[l][id]
	return ok
}

// IDs returns every message ID known in English.
func IDs() []ID {
	out := make([]ID, 0, len(catalog[lang.English]))
	for id := range catalog[lang.English] {
		out = append(out, id)
	}
	return out
}
