// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package completion sends the analysis prompt to a chat-completion endpoint.
package completion

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"

	"github.com/pdiddy/paper-analysis/internal/httputil"
	"github.com/pdiddy/paper-analysis/internal/prompt"
	"github.com/pdiddy/paper-analysis/pkg/types"
)

// Temperature is the sampling temperature of every request.
const Temperature = 0.3

// Result is the first choice of a completion together with reported usage.
type Result struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Completer abstracts the chat-completion API so tests can supply a fake.
type Completer interface {
	Complete(ctx context.Context, userPrompt string) (Result, error)
}

// OpenAIClient is a Completer backed by the OpenAI chat-completions API or a
// compatible endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient configures a client from cfg. An empty BaseURL keeps the
// public OpenAI endpoint.
func NewOpenAIClient(cfg types.AIConfig) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = httputil.NewClient(cfg.UserAgent)

	return &OpenAIClient{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.Model,
	}
}

// Complete issues one blocking, non-streaming request carrying the persona
// and the prompt. It does not retry; every failure is a remote service error.
func (c *OpenAIClient) Complete(ctx context.Context, userPrompt string) (Result, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.Persona},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: Temperature,
	})
	if err != nil {
		return Result{}, types.Wrap(types.KindRemoteService, "chat completion", err)
	}

	if len(resp.Choices) == 0 {
		return Result{}, types.Wrap(types.KindRemoteService, "chat completion", errors.New("no choices returned"))
	}

	return Result{
		Content:          resp.Choices[0].Message.Content,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}
