package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/wian47/portfolio/internal/domain/model"
	"github.com/wian47/portfolio/internal/domain/port/driven"
)

// Canned replies for when the assistant cannot answer.
const (
	AssistantOfflineReply = "I'm currently offline. Please use the contact form to get in touch directly!"
	AssistantErrorReply   = "I hit a firewall rule I couldn't bypass. Try again later."
	AssistantEmptyReply   = "Signal lost. Try again."
)

// maxChatHistory caps how many prior turns are forwarded to the model.
const maxChatHistory = 20

// ErrEmptyMessage is returned when a chat message has no text.
var ErrEmptyMessage = errors.New("message must not be empty")

// AssistantService answers chat widget messages. It is constructed explicitly
// and holds no conversation state; callers pass the history with each turn.
type AssistantService struct {
	assistant driven.Assistant
	logger    *slog.Logger
}

// NewAssistantService creates an AssistantService. assistant may be nil when
// no language model is configured; every message then gets the offline reply.
func NewAssistantService(assistant driven.Assistant, logger *slog.Logger) *AssistantService {
	return &AssistantService{assistant: assistant, logger: logger}
}

// Available reports whether a language model is configured.
func (s *AssistantService) Available() bool {
	return s.assistant != nil
}

// Reply answers message given the prior conversation. Model failures are
// logged and answered with a canned reply rather than returned.
func (s *AssistantService) Reply(ctx context.Context, history []model.ChatMessage, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	if s.assistant == nil {
		return AssistantOfflineReply, nil
	}

	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}

	reply, err := s.assistant.Reply(ctx, history, message)
	if err != nil {
		s.logger.Error("assistant reply failed", "error", err)
		return AssistantErrorReply, nil
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return AssistantEmptyReply, nil
	}
	return reply, nil
}
