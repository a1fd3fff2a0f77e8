package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-1.5-flash"

// GeminiProvider summarizes through the Gemini API.
type GeminiProvider struct {
	client *genai.Client
}

func NewGeminiProvider(apiKey string) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (g *GeminiProvider) Name() string { return "gemini" }

func (g *GeminiProvider) Summarize(ctx context.Context, title, content string) (string, error) {
	model := g.client.GenerativeModel(geminiModel)

	prompt := fmt.Sprintf(`You are an editor for a daily voice AI industry digest.

ARTICLE
Title: %s
Content: %s

Write a summary of this article in 2-3 sentences for readers tracking the voice AI industry.
Focus on what happened and why it matters.
Do not open with phrases like "This article discusses" or "The article is about".`,
		title, prepare(content))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	return strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])), nil
}

func (g *GeminiProvider) ExecutiveSummary(ctx context.Context, headlines []string) (string, error) {
	model := g.client.GenerativeModel(geminiModel)

	prompt := fmt.Sprintf(`You are an analyst covering the voice AI industry.

Today's headlines:
- %s

Write a 3-4 sentence overview of the day's main developments for a digest email.
Plain text only, no headings or bullet points.`,
		strings.Join(headlines, "\n- "))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate overview: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	return strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])), nil
}

func (g *GeminiProvider) Close() {
	if g.client != nil {
		g.client.Close()
	}
}
