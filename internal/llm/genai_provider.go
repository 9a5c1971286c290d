package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/philokalos/promptlens/internal/logging"
)

// GenAIProvider implements Provider against Google's Gemini API.
type GenAIProvider struct {
	client *genai.Client
	model  string
}

// NewGenAIProvider creates a Gemini-backed Provider. Returns an error if
// apiKey is empty; callers (internal/config.HasLLMCredential) should check
// before constructing one.
func NewGenAIProvider(ctx context.Context, apiKey, model string) (*GenAIProvider, error) {
	timer := logging.StartTimer(logging.CategoryAPI, "NewGenAIProvider")
	defer timer.Stop()

	if apiKey == "" {
		return nil, fmt.Errorf("genai: API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		logging.Get(logging.CategoryAPI).Error("failed to create genai client: %v", err)
		return nil, fmt.Errorf("genai: create client: %w", err)
	}

	return &GenAIProvider{client: client, model: model}, nil
}

// Call sends a single generation request at the given temperature. It
// classifies failures into the provider's error taxonomy.
func (p *GenAIProvider) Call(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	timer := logging.StartTimer(logging.CategoryAPI, "GenAIProvider.Call")
	defer timer.Stop()

	temp := float32(temperature)
	contents := []*genai.Content{genai.NewContentFromText(userPrompt, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		Temperature:       &temp,
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", NewError(ErrTimeout, err)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", NewError(ErrTimeout, err)
		}
		logging.Get(logging.CategoryAPI).Warn("genai call failed: %v", err)
		return "", NewError(classifyGenAIErr(err), err)
	}

	text := result.Text()
	if text == "" {
		return "", NewError(ErrMalformed, fmt.Errorf("genai: empty response"))
	}
	return text, nil
}

func classifyGenAIErr(err error) ErrorKind {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401"), strings.Contains(msg, "unauthorized"), strings.Contains(msg, "permission"):
		return ErrUnauthorized
	case strings.Contains(msg, "429"), strings.Contains(msg, "rate limit"), strings.Contains(msg, "quota"):
		return ErrRateLimited
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return ErrTimeout
	default:
		return ErrNetwork
	}
}
