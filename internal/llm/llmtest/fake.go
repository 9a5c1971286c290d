// Package llmtest provides a deterministic, in-memory llm.Provider for
// tests of the judge and AI rewriter, standing in for the vendor HTTP layer.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/philokalos/promptlens/internal/llm"
)

// Fake is a scriptable llm.Provider. Responses maps a temperature to a
// canned response; Err, if set, is returned unconditionally. Calls records
// every invocation for assertions.
type Fake struct {
	mu        sync.Mutex
	Responses map[float64]string
	Err       error
	ErrAt     map[float64]error
	Calls     []FakeCall
	Delay     func(temperature float64)
}

// FakeCall records one Call invocation.
type FakeCall struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
}

// Call implements llm.Provider.
func (f *Fake) Call(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, FakeCall{systemPrompt, userPrompt, temperature})
	f.mu.Unlock()

	if f.Delay != nil {
		f.Delay(temperature)
	}

	select {
	case <-ctx.Done():
		return "", llm.NewError(llm.ErrTimeout, ctx.Err())
	default:
	}

	if f.Err != nil {
		return "", f.Err
	}
	if f.ErrAt != nil {
		if err, ok := f.ErrAt[temperature]; ok {
			return "", err
		}
	}
	if resp, ok := f.Responses[temperature]; ok {
		return resp, nil
	}
	return "", fmt.Errorf("llmtest: no scripted response for temperature %.2f", temperature)
}

// CallCount returns how many times Call was invoked.
func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}
