package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"genesis/internal/config"
)

type openAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func newOpenAI(cfg *config.Config) (Client, error) {
	key := cfg.APIKey()
	if key == "" {
		return nil, ErrNoAPIKey
	}
	return &openAIClient{
		client:      openai.NewClient(key),
		model:       cfg.GetString("llm.model", "gpt-4-turbo-preview"),
		temperature: float32(cfg.GetFloat("llm.temperature", 0.7)),
		maxTokens:   cfg.GetInt("llm.max_tokens", 4000),
	}, nil
}

func (c *openAIClient) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	var messages []openai.ChatCompletionMessage
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("llm: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response from %s", c.model)
	}
	return resp.Choices[0].Message.Content, nil
}
