package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/leaddesk/backend/internal/model"
	"github.com/leaddesk/backend/pkg/gemini"
)

// ErrChatUnavailable is returned when no chat backend is configured.
var ErrChatUnavailable = errors.New("chat unavailable")

const (
	maxChatMessages      = 20
	maxChatMessageLength = 2000
)

// ChatService answers chat widget conversations.
type ChatService interface {
	// Reply returns the assistant's next message. The last message must be from the user.
	Reply(ctx context.Context, messages []model.ChatMessage) (string, error)
}

type chatServiceImpl struct {
	chatter gemini.Chatter
}

// NewChatService creates a ChatService. A nil chatter makes every call return ErrChatUnavailable.
func NewChatService(chatter gemini.Chatter) ChatService {
	return &chatServiceImpl{chatter: chatter}
}

func (s *chatServiceImpl) Reply(ctx context.Context, messages []model.ChatMessage) (string, error) {
	if err := validateChat(messages); err != nil {
		return "", err
	}
	if s.chatter == nil {
		return "", ErrChatUnavailable
	}

	turns := make([]gemini.Turn, len(messages))
	for i, m := range messages {
		turns[i] = gemini.Turn{FromUser: m.Role == model.ChatRoleUser, Text: m.Content}
	}
	reply, err := s.chatter.Reply(ctx, turns)
	if err != nil {
		return "", fmt.Errorf("chat reply: %w", err)
	}
	return reply, nil
}

func validateChat(messages []model.ChatMessage) error {
	if len(messages) == 0 || len(messages) > maxChatMessages {
		return model.ErrValidation
	}
	for _, m := range messages {
		if m.Role != model.ChatRoleUser && m.Role != model.ChatRoleAssistant {
			return model.ErrValidation
		}
		if utf8.RuneCountInString(m.Content) > maxChatMessageLength {
			return model.ErrValidation
		}
	}
	last := messages[len(messages)-1]
	if last.Role != model.ChatRoleUser || strings.TrimSpace(last.Content) == "" {
		return model.ErrValidation
	}
	return nil
}
