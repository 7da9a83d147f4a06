package action

import "context"

type senderKey struct{}

// WithSender records who issued the command being handled.
func WithSender(ctx context.Context, sender string) context.Context {
	return context.WithValue(ctx, senderKey{}, sender)
}

// SenderFrom returns the sender recorded by WithSender, or "".
func SenderFrom(ctx context.Context) string {
	s, _ := ctx.Value(senderKey{}).(string)
	return s
}

// SenderAutomation is the sender recorded for commands replayed by
// scheduled tasks and macros.
const SenderAutomation = "automation"
