package confirm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrNotADecision is returned when a message is not an approve/deny command.
var ErrNotADecision = errors.New("not a confirmation decision")

// Decision is a parsed approve or deny message.
type Decision struct {
	Approve bool
	ID      string
	// Reason is optional free text following the ID.
	Reason string
}

// English verbs are unambiguous commands and produce usage errors when the
// ID is missing or malformed. The Hindi words also open ordinary sentences
// ("haan chrome kholo"), so they only count as decisions when followed by a
// well-formed confirmation ID.
var (
	strictVerbs = map[string]bool{"approve": true, "deny": true, "reject": true}
	looseVerbs  = map[string]bool{
		"haan": true, "han": true, "हाँ": true, "हां": true,
		"nahi": false, "nahin": false, "नहीं": false, "नही": false,
	}
)

// ParseDecision parses a plain message into a Decision.
//
// Accepted formats (verb is case-insensitive):
//
//	approve <id> [reason]
//	deny <id> [reason]       (also "reject")
//	haan <id>  /  हाँ <id>
//	nahi <id> [reason]  /  नहीं <id> [reason]
//
// Returns ErrNotADecision if the message does not start with a decision verb.
func ParseDecision(text string) (*Decision, error) {
	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) == 0 {
		return nil, ErrNotADecision
	}
	verb := strings.ToLower(parts[0])

	approve, strict := strictVerbs[verb]
	if strict {
		approve = verb == "approve"
	} else {
		var ok bool
		if approve, ok = looseVerbs[verb]; !ok {
			return nil, ErrNotADecision
		}
	}

	if len(parts) < 2 {
		if strict {
			return nil, fmt.Errorf("usage: %s <confirmation-id> [reason]", verb)
		}
		return nil, ErrNotADecision
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		if strict {
			return nil, fmt.Errorf("invalid confirmation id %q: %w", parts[1], err)
		}
		return nil, ErrNotADecision
	}

	return &Decision{
		Approve: approve,
		ID:      id.String(),
		Reason:  parseReason(strings.Join(parts[2:], " ")),
	}, nil
}

// parseReason accepts `reason="<text>"`, `reason=<text>` or plain text.
func parseReason(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "reason=") {
		return strings.Trim(s[len("reason="):], `"'`)
	}
	return s
}
