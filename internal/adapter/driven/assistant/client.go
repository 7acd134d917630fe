// Package assistant implements the Assistant port against any
// OpenAI-compatible chat completions endpoint.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/wian47/portfolio/internal/domain/model"
	"github.com/wian47/portfolio/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Assistant = (*Client)(nil)

// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// DefaultPersona is the system prompt the widget answers under.
const DefaultPersona = `You are the AI assistant for Wian Schoeman's portfolio website.

Who is Wian?
- Aspiring cyber security professional and web developer.
- Studying Cyber Security at Eduvos, Bedfordview (since Feb 2024).
- Skills: Python, Java, Flutter/Dart, HTML5, CSS3, Linux, Git, TypeScript.
- Interests: network security, ethical hacking, creative CSS design.

Your persona:
- Professional yet enthusiastic tech geek.
- Use emojis like 🛡️, 💻, 🔒, 🚀.
- Keep answers concise, usually under three sentences.

If asked how to get in touch, point visitors to the contact form on the page.`

// errNoChoices is returned when the endpoint answers without a completion.
var errNoChoices = errors.New("no choices returned")

// Client answers chat turns with a single chat completion per message.
type Client struct {
	client  *openai.Client
	model   string
	persona string
}

// NewClient creates a Client. Empty baseURL, model and persona select the defaults.
func NewClient(baseURL, apiKey, model, persona string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if persona == "" {
		persona = DefaultPersona
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	return &Client{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		persona: persona,
	}
}

// Reply sends the persona, the prior turns and message, and returns the
// first completion's text.
func (c *Client) Reply(ctx context.Context, history []model.ChatMessage, message string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    c.buildMessages(history, message),
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *Client) buildMessages(history []model.ChatMessage, message string) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: c.persona})

	for _, m := range history {
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		role := openai.ChatMessageRoleUser
		if m.Role == model.ChatRoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: text})
	}

	return append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})
}
