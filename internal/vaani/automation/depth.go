package automation

import "context"

type depthKey struct{}

// WithDepth marks ctx as running inside n nested macros.
func WithDepth(ctx context.Context, n int) context.Context {
	return context.WithValue(ctx, depthKey{}, n)
}

// Depth returns the macro nesting depth carried by ctx; zero outside any
// macro run.
func Depth(ctx context.Context) int {
	n, _ := ctx.Value(depthKey{}).(int)
	return n
}
