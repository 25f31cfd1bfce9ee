package llm

import (
	"context"
)

// Fake is a scripted Client for tests. Responses are returned in order;
// once exhausted, the last response repeats.
type Fake struct {
	Responses []string
	Err       error

	// Prompts records every prompt passed to Generate.
	Prompts []string
	calls   int
}

// Generate returns the next scripted response.
func (f *Fake) Generate(_ context.Context, prompt, _ string) (string, error) {
	f.Prompts = append(f.Prompts, prompt)
	if f.Err != nil {
		return "", f.Err
	}
	if len(f.Responses) == 0 {
		return "", nil
	}
	i := f.calls
	if i >= len(f.Responses) {
		i = len(f.Responses) - 1
	}
	f.calls++
	return f.Responses[i], nil
}
