package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAIClient struct {
	client openai.Client
	model  string
}

func newOpenAIClient(cfg Config) (*openAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai: APIKey is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSpace(cfg.BaseURL)))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	return &openAIClient{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (c *openAIClient) Complete(ctx context.Context, conv Conversation, opts Options) (string, error) {
	return c.complete(ctx, "complete", conv, opts)
}

func (c *openAIClient) Validate(ctx context.Context) error {
	conv := Conversation{{Role: RoleUser, Content: validateProbeText}}
	_, err := c.complete(ctx, "validate", conv, Options{MaxTokens: validateProbeMaxTokens})
	return err
}

func (c *openAIClient) complete(ctx context.Context, op string, conv Conversation, opts Options) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(conv))
	for _, m := range conv {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = c.model
	}

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: messages,
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(opts.MaxTokens)
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			msg := apiErr.Message
			if strings.TrimSpace(msg) == "" {
				msg = err.Error()
			}
			return "", newCommunicationError(ProviderOpenAI, op, apiErr.StatusCode, apiErr.Code, msg, err)
		}
		return "", newCommunicationError(ProviderOpenAI, op, 0, "", err.Error(), err)
	}

	if len(resp.Choices) == 0 {
		return "", newCommunicationError(ProviderOpenAI, op, 0, "empty_response", "completion contained no choices", nil)
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", newCommunicationError(ProviderOpenAI, op, 0, "empty_response", "completion content was empty", nil)
	}
	return content, nil
}
