// Package chat answers open questions through the OpenAI chat API.
package chat

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	log "log/slog"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const systemPrompt = `
You are Synbi, a voice assistant running on the user's desktop.
Answer questions in two or three short spoken sentences.
No markdown, no lists, no code blocks. Plain speakable text only.
If you don't know, say so briefly.
`

type Client struct {
	api   openai.Client
	model openai.ChatModel
}

// New builds a chat client. An empty model picks a small, fast default; a
// nil httpClient uses the library's own.
func New(apiKey string, model string, httpClient *http.Client) *Client {
	if model == "" {
		model = openai.ChatModelGPT5Nano
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &Client{
		api:   openai.NewClient(opts...),
		model: model,
	}
}

// Ask sends question and returns the spoken answer.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(question),
		},
		Model: c.model,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty message content")
	}

	log.Debug("Answered", "question", question, "chars", len(content))
	return content, nil
}
