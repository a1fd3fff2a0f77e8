package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider summarizes through the OpenAI chat completion API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIProvider{client: openai.NewClient(apiKey), model: model}
}

func (o *OpenAIProvider) Name() string { return "openai" }

func (o *OpenAIProvider) Summarize(ctx context.Context, title, content string) (string, error) {
	prompt := fmt.Sprintf(`You are an editor for a daily voice AI industry digest.

ARTICLE
Title: %s
Content: %s

Write a summary of this article in 2-3 sentences for readers tracking the voice AI industry.
Focus on what happened and why it matters.
Do not open with phrases like "This article discusses" or "The article is about".`,
		title, prepare(content))

	return o.complete(ctx, prompt, 300)
}

func (o *OpenAIProvider) ExecutiveSummary(ctx context.Context, headlines []string) (string, error) {
	prompt := fmt.Sprintf(`You are an analyst covering the voice AI industry.

Today's headlines:
- %s

Write a 3-4 sentence overview of the day's main developments for a digest email.
Plain text only, no headings or bullet points.`,
		strings.Join(headlines, "\n- "))

	return o.complete(ctx, prompt, 400)
}

func (o *OpenAIProvider) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxCompletionTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (o *OpenAIProvider) Close() {}
