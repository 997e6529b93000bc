// Package gemini implementa assistant.Model sobre la API de Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"petora-connect/internal/platform/apperr"
	"petora-connect/internal/ports/assistant"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

// generator es lo que usamos de genai.Models (fakeable en tests).
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Model struct {
	gen   generator
	model string
}

// New crea el cliente; sin apiKey devuelve assistant.ErrNotConfigured.
func New(ctx context.Context, apiKey, model string) (*Model, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, assistant.ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newWithGenerator(client.Models, model), nil
}

func newWithGenerator(gen generator, model string) *Model {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Model{gen: gen, model: model}
}

func (m *Model) Generate(ctx context.Context, system, question string) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if strings.TrimSpace(system) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := m.gen.GenerateContent(ctx, m.model, genai.Text(question), cfg)
	if err != nil {
		return "", apperr.Upstream("gemini generate", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", apperr.Upstream("gemini generate", errors.New("empty response"))
	}
	return text, nil
}
