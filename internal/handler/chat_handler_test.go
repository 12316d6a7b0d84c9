package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leaddesk/backend/internal/model"
	"github.com/leaddesk/backend/internal/service"
)

type mockChatService struct {
	replyFunc func(ctx context.Context, messages []model.ChatMessage) (string, error)
}

func (m *mockChatService) Reply(ctx context.Context, messages []model.ChatMessage) (string, error) {
	if m.replyFunc != nil {
		return m.replyFunc(ctx, messages)
	}
	return "Hello!", nil
}

func postChat(h *ChatHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)
	return rec
}

func TestChatHandler_Chat_Success(t *testing.T) {
	var got []model.ChatMessage
	h := NewChatHandler(&mockChatService{
		replyFunc: func(ctx context.Context, messages []model.ChatMessage) (string, error) {
			got = messages
			return "We build websites.", nil
		},
	})

	rec := postChat(h, `{"messages":[{"role":"user","content":"What do you do?"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(got) != 1 || got[0].Content != "What do you do?" {
		t.Errorf("unexpected messages forwarded: %+v", got)
	}
	body := decodeBody(t, rec)
	msg, _ := body["message"].(map[string]any)
	if msg["role"] != "assistant" || msg["content"] != "We build websites." {
		t.Errorf("unexpected reply: %v", body)
	}
}

func TestChatHandler_Chat_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		body   string
		status int
	}{
		{"invalid json", nil, `{`, http.StatusBadRequest},
		{"validation", model.ErrValidation, `{"messages":[]}`, http.StatusBadRequest},
		{"unavailable", service.ErrChatUnavailable, `{"messages":[{"role":"user","content":"hi"}]}`, http.StatusServiceUnavailable},
		{"upstream", errors.New("quota"), `{"messages":[{"role":"user","content":"hi"}]}`, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewChatHandler(&mockChatService{
				replyFunc: func(ctx context.Context, messages []model.ChatMessage) (string, error) {
					return "", tt.err
				},
			})
			rec := postChat(h, tt.body)
			expectFail(t, rec, tt.status, "")
		})
	}
}
