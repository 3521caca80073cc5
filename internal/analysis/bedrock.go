package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// ErrInvocationFailed wraps transport and service errors from the model
// endpoint.
var ErrInvocationFailed = errors.New("model invocation failed")

const anthropicVersion = "bedrock-2023-05-31"

// BedrockRuntime implements Runtime against AWS Bedrock, using an
// Anthropic model for text and Titan for embeddings.
type BedrockRuntime struct {
	client *bedrockruntime.Client
	cfg    *Config
	logger *slog.Logger
}

// NewBedrockRuntime creates a BedrockRuntime over the given client.
func NewBedrockRuntime(client *bedrockruntime.Client, cfg *Config, logger *slog.Logger) *BedrockRuntime {
	return &BedrockRuntime{
		client: client,
		cfg:    cfg,
		logger: logger.With("system", "bedrock"),
	}
}

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      float64            `json:"temperature"`
	System           string             `json:"system,omitempty"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Invoke sends a single-turn request to the text model and returns the
// raw completion text.
func (b *BedrockRuntime) Invoke(ctx context.Context, system, prompt string, params Params) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        params.MaxTokens,
		Temperature:      params.Temperature,
		System:           system,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal invocation: %w", err)
	}

	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.cfg.ModelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvocationFailed, err)
	}

	var res anthropicResponse
	if err := json.Unmarshal(out.Body, &res); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrInvocationFailed, err)
	}
	if len(res.Content) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrInvocationFailed)
	}

	if res.StopReason == "max_tokens" {
		b.logger.Warn("completion truncated at max tokens", "max_tokens", params.MaxTokens)
	}

	return res.Content[0].Text, nil
}

// Embed returns the embedding vector for text. Input is capped to the
// model's supported length before submission.
func (b *BedrockRuntime) Embed(ctx context.Context, text string) ([]float32, error) {
	if len(text) > EmbedInputCap {
		text = text[:EmbedInputCap]
	}

	body, err := json.Marshal(map[string]string{"inputText": text})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.cfg.EmbedModelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvocationFailed, err)
	}

	var res struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(out.Body, &res); err != nil {
		return nil, fmt.Errorf("%w: decode embedding: %w", ErrInvocationFailed, err)
	}
	if len(res.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", ErrInvocationFailed)
	}

	return res.Embedding, nil
}
