package fallback

import (
	"fmt"

	"github.com/bdobrica/Vaani/internal/vaani/lang"
)

const systemPromptTmpl = "You are Vaani, a helpful desktop voice assistant. " +
	"Reply naturally and politely in %s, in at most two or three sentences. " +
	"You can control the computer, run macros and search the web through commands; " +
	"if asked for something you cannot do, say so politely. " +
	"Never claim to have performed an action yourself."

// SystemPrompt returns the system message for replies in language.
func SystemPrompt(language lang.Language) string {
	name := "English"
	if language == lang.Hindi {
		name = "Hindi"
	}
	return fmt.Sprintf(systemPromptTmpl, name)
}
