// Package generator wraps the external text generation service.
package generator

import "context"

// TextGenerator produces compiled note text from a single prompt.
// Implementations make exactly one attempt; retry policy, if any, belongs
// to the transport layer, not here.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
