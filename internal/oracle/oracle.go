package oracle

import "context"

// Oracle answers a natural-language prompt with free text.
type Oracle interface {
	// Infer sends the prompt and returns the raw completion text.
	Infer(ctx context.Context, prompt string) (string, error)
}

// Func adapts an ordinary function to the Oracle interface.
type Func func(ctx context.Context, prompt string) (string, error)

// Infer calls f.
func (f Func) Infer(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Unavailable is an Oracle that never answers. Cleaning with it runs the
// purely mechanical path.
type Unavailable struct{}

// Infer always returns ErrUnavailable.
func (Unavailable) Infer(context.Context, string) (string, error) {
	return "", ErrUnavailable
}
