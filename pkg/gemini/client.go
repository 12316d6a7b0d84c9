// Package gemini proxies chat widget conversations to the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("gemini: not configured")
	// ErrEmptyReply is returned when the model produced no text.
	ErrEmptyReply = errors.New("gemini: empty reply")
)

// Turn is one message of a conversation. FromUser is false for model replies.
type Turn struct {
	FromUser bool
	Text     string
}

// Chatter produces the next assistant reply for a conversation.
type Chatter interface {
	Reply(ctx context.Context, history []Turn) (string, error)
}

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error)

// Client is the genai-backed Chatter.
type Client struct {
	model        string
	systemPrompt string
	generate     generateFunc
}

// NewClient creates a Client for the Gemini API.
func NewClient(ctx context.Context, apiKey, model, systemPrompt string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = DefaultModel
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Client{
		model:        model,
		systemPrompt: systemPrompt,
		generate: func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
			resp, err := gc.Models.GenerateContent(ctx, model, contents, cfg)
			if err != nil {
				return "", err
			}
			return resp.Text(), nil
		},
	}, nil
}

var _ Chatter = (*Client)(nil)

// Contents converts a conversation into genai contents. Blank turns are skipped.
func Contents(history []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		role := genai.Role(genai.RoleModel)
		if t.FromUser {
			role = genai.RoleUser
		}
		contents = append(contents, genai.NewContentFromText(text, role))
	}
	return contents
}

// Reply sends the conversation with the configured system prompt and returns the reply text.
func (c *Client) Reply(ctx context.Context, history []Turn) (string, error) {
	contents := Contents(history)
	if len(contents) == 0 {
		return "", errors.New("gemini: empty conversation")
	}
	var cfg *genai.GenerateContentConfig
	if c.systemPrompt != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(c.systemPrompt, genai.RoleUser),
		}
	}
	text, err := c.generate(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}
