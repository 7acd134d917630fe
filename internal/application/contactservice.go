package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/wian47/portfolio/internal/domain/model"
	"github.com/wian47/portfolio/internal/domain/port/driven"
)

const (
	maxContactNameLength    = 200
	maxContactMessageLength = 5000
)

// ValidationError reports an invalid contact form field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrContactFailed is returned when the relay could not deliver a valid message.
var ErrContactFailed = errors.New("failed to send message")

// ContactService validates contact form submissions and hands them to the relay.
type ContactService struct {
	relay  driven.ContactRelay
	logger *slog.Logger
}

// NewContactService creates a ContactService. relay may be nil when no relay
// is configured; Send then returns driven.ErrRelayUnavailable.
func NewContactService(relay driven.ContactRelay, logger *slog.Logger) *ContactService {
	return &ContactService{relay: relay, logger: logger}
}

// Available reports whether a relay is configured.
func (s *ContactService) Available() bool {
	return s.relay != nil
}

// Send validates msg and delivers it. Returns a *ValidationError for bad
// input, driven.ErrRelayUnavailable without a relay, and ErrContactFailed
// when delivery fails.
func (s *ContactService) Send(ctx context.Context, msg model.ContactMessage) error {
	msg, err := ValidateContact(msg)
	if err != nil {
		return err
	}

	if s.relay == nil {
		return driven.ErrRelayUnavailable
	}

	if err := s.relay.Send(ctx, msg); err != nil {
		s.logger.Error("contact relay failed", "error", err)
		return ErrContactFailed
	}

	s.logger.Info("contact message sent", "from", msg.Email)
	return nil
}

// ValidateContact trims every field and checks it. The returned message is
// the trimmed form.
func ValidateContact(msg model.ContactMessage) (model.ContactMessage, error) {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Message = strings.TrimSpace(msg.Message)

	switch {
	case msg.Name == "":
		return msg, &ValidationError{Field: "name", Message: "is required"}
	case utf8.RuneCountInString(msg.Name) > maxContactNameLength:
		return msg, &ValidationError{Field: "name", Message: "is too long"}
	case msg.Email == "":
		return msg, &ValidationError{Field: "email", Message: "is required"}
	case msg.Message == "":
		return msg, &ValidationError{Field: "message", Message: "is required"}
	case utf8.RuneCountInString(msg.Message) > maxContactMessageLength:
		return msg, &ValidationError{Field: "message", Message: "is too long"}
	}

	addr, err := mail.ParseAddress(msg.Email)
	if err != nil || addr.Address != msg.Email {
		return msg, &ValidationError{Field: "email", Message: "is not a valid address"}
	}

	return msg, nil
}
