package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/voicewatch/voicewatch/internal/logger"
)

const (
	slackAPIBase    = "https://slack.com/api"
	slackMaxRetries = 3
	slackMaxBlocks  = 50
)

// SlackNotifier posts digests to a Slack channel through chat.postMessage.
type SlackNotifier struct {
	token   string
	channel string
	baseURL string
	client  *http.Client
	pause   time.Duration
}

func NewSlackNotifier(token, channel string) *SlackNotifier {
	return &SlackNotifier{
		token:   token,
		channel: channel,
		baseURL: slackAPIBase,
		client:  &http.Client{Timeout: 30 * time.Second},
		pause:   time.Second,
	}
}

// Enabled reports whether a Slack token is configured.
func (s *SlackNotifier) Enabled() bool {
	return s.token != ""
}

type slackText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	TS    string `json:"ts"`
}

// SendDigest posts the digest with retries and exponential backoff.
func (s *SlackNotifier) SendDigest(ctx context.Context, d *Digest) error {
	if !s.Enabled() {
		return nil
	}

	payload := map[string]interface{}{
		"channel": s.channel,
		"text":    fmt.Sprintf("AI Voice News Digest - %s", d.Date),
		"blocks":  digestBlocks(d),
	}

	var lastErr error
	for attempt := 1; attempt <= slackMaxRetries; attempt++ {
		lastErr = s.postMessage(ctx, payload)
		if lastErr == nil {
			logger.Info("✅ slack digest sent", "channel", s.channel, "try", attempt)
			return nil
		}

		logger.Warn("❌ slack send failed", "try", attempt, "of", slackMaxRetries, "error", lastErr)
		if attempt < slackMaxRetries {
			wait := time.Duration(1<<attempt) * s.pause
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}

	return fmt.Errorf("slack digest failed after %d tries: %w", slackMaxRetries, lastErr)
}

func (s *SlackNotifier) postMessage(ctx context.Context, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/chat.postMessage", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack API error: status %d", resp.StatusCode)
	}

	var result slackResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode slack response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("slack API error: %s", result.Error)
	}
	return nil
}

// digestBlocks renders the digest as Block Kit blocks.
func digestBlocks(d *Digest) []slackBlock {
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{
				Type:  "plain_text",
				Text:  fmt.Sprintf("🔊 AI Voice News Digest - %s", d.Date),
				Emoji: true,
			},
		},
		{Type: "divider"},
	}

	if d.Trends != nil && d.Trends.Available {
		elements := []slackText{
			{Type: "mrkdwn", Text: fmt.Sprintf("📊 *Trends* (%d runs): %s", d.Trends.RunsAnalyzed, d.Trends.Summary)},
		}
		for _, insight := range d.Trends.Insights {
			elements = append(elements, slackText{Type: "mrkdwn", Text: insight})
		}
		blocks = append(blocks, slackBlock{Type: "context", Elements: elements})
	}

	blocks = append(blocks, newsBlocks(d)...)
	blocks = append(blocks, reactionBlocks(d)...)

	// Slack rejects messages with more than 50 blocks.
	if len(blocks) > slackMaxBlocks {
		blocks = blocks[:slackMaxBlocks]
	}
	return blocks
}

func newsBlocks(d *Digest) []slackBlock {
	if len(d.NewsItems) == 0 {
		return []slackBlock{mrkdwnSection("*No new AI voice news today*")}
	}

	blocks := []slackBlock{mrkdwnSection("*📰 Latest News*")}
	for _, item := range TopArticles(d.NewsItems, 10) {
		text := fmt.Sprintf("*<%s|%s>*\n%s • %s\n%s",
			item.URL, item.Title, item.Source, datePart(item.Published),
			truncate(item.Summary, 300))
		blocks = append(blocks, mrkdwnSection(text), slackBlock{Type: "divider"})
	}
	return blocks
}

func reactionBlocks(d *Digest) []slackBlock {
	if len(d.Reactions) == 0 {
		return nil
	}

	blocks := []slackBlock{mrkdwnSection("*💬 Community Reactions*")}

	names, grouped := reactionsByPlatform(d.Reactions)
	for _, platform := range names {
		blocks = append(blocks, mrkdwnSection(fmt.Sprintf("*%s*", capitalize(platform))))
		for i, r := range grouped[platform] {
			if i >= 3 {
				break
			}
			text := fmt.Sprintf("<%s|r/%s> • %d points %s\n%s",
				r.URL, r.Subreddit, r.Score, r.SentimentEmoji,
				truncate(reactionBody(r), 150))
			blocks = append(blocks, mrkdwnSection(text))
		}
		blocks = append(blocks, slackBlock{Type: "divider"})
	}
	return blocks
}

func mrkdwnSection(text string) slackBlock {
	return slackBlock{
		Type: "section",
		Text: &slackText{Type: "mrkdwn", Text: text},
	}
}
