package resolver

import (
	"context"
	"fmt"
)

// Selector picks one of the presented options, returning a 1-based index.
// Anything outside [1, len(options)] aborts the resolution.
type Selector interface {
	Select(ctx context.Context, prompt string, options []string) (int, error)
}

type SelectorFunc func(ctx context.Context, prompt string, options []string) (int, error)

func (f SelectorFunc) Select(ctx context.Context, prompt string, options []string) (int, error) {
	return f(ctx, prompt, options)
}

// Fixed answers each selection with the next pre-supplied index, in order.
func Fixed(indices ...int) Selector {
	next := 0
	return SelectorFunc(func(ctx context.Context, prompt string, options []string) (int, error) {
		if next >= len(indices) {
			return 0, fmt.Errorf("no selection left for %q", prompt)
		}
		idx := indices[next]
		next++
		return idx, nil
	})
}
