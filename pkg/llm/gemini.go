package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type geminiClient struct {
	client *genai.Client
	model  string
}

func newGeminiClient(ctx context.Context, cfg Config) (*geminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: APIKey is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("gemini: Model is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}
	if cfg.HTTPClient != nil {
		cc.HTTPClient = cfg.HTTPClient
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &geminiClient{
		client: client,
		model:  strings.TrimSpace(cfg.Model),
	}, nil
}

func (g *geminiClient) Complete(ctx context.Context, conv Conversation, opts Options) (string, error) {
	return g.complete(ctx, "complete", conv, opts)
}

func (g *geminiClient) Validate(ctx context.Context) error {
	conv := Conversation{{Role: RoleUser, Content: validateProbeText}}
	_, err := g.complete(ctx, "validate", conv, Options{MaxTokens: validateProbeMaxTokens})
	return err
}

func (g *geminiClient) complete(ctx context.Context, op string, conv Conversation, opts Options) (string, error) {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = g.model
	}

	gc := &genai.GenerateContentConfig{
		CandidateCount: 1,
	}
	if sys := systemText(conv); sys != "" {
		gc.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: sys}}}
	}
	if opts.Temperature > 0 {
		gc.Temperature = genai.Ptr(float32(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(opts.MaxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(userText(conv)), gc)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			msg := apiErr.Message
			if strings.TrimSpace(msg) == "" {
				msg = err.Error()
			}
			return "", newCommunicationError(ProviderGemini, op, apiErr.Code, apiErr.Status, msg, err)
		}
		return "", newCommunicationError(ProviderGemini, op, 0, "", err.Error(), err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", newCommunicationError(ProviderGemini, op, 0, "empty_response", "completion content was empty", nil)
	}
	return text, nil
}
