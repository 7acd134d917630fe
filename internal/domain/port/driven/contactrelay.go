package driven

import (
	"context"
	"errors"

	"github.com/wian47/portfolio/internal/domain/model"
)

// ErrRelayUnavailable indicates no contact relay is configured.
var ErrRelayUnavailable = errors.New("contact relay unavailable")

// ContactRelay defines the driven port for delivering contact form messages.
type ContactRelay interface {
	Send(ctx context.Context, msg model.ContactMessage) error
}
