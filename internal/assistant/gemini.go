package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// DefaultModel is used when GEMINI_MODEL is unset.
const DefaultModel = "gemini-2.0-flash"

// Gemini is a Generator backed by the Gemini API.
// The client is created on first use so a missing key never touches the network.
type Gemini struct {
	apiKey string
	model  string

	mu     sync.Mutex
	client *genai.Client
}

// NewGemini returns a Gemini generator. An empty model uses DefaultModel.
func NewGemini(apiKey, model string) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{apiKey: strings.TrimSpace(apiKey), model: model}
}

// Configured reports whether an API key is present.
func (g *Gemini) Configured() bool { return g.apiKey != "" }

func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	if g.apiKey == "" {
		return "", ErrConfigMissing
	}
	c, err := g.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.SystemContext != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemContext, genai.RoleUser)
	}

	resp, err := c.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", classify(err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (g *Gemini) getClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	g.client = c
	return c, nil
}

// classify maps SDK errors onto the package sentinels.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden {
			return fmt.Errorf("%w: %s", ErrAuth, apiErr.Message)
		}
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}
