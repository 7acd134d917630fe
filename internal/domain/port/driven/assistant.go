package driven

import (
	"context"

	"github.com/wian47/portfolio/internal/domain/model"
)

// Assistant defines the driven port for the conversational widget's language model.
type Assistant interface {
	Reply(ctx context.Context, history []model.ChatMessage, message string) (string, error)
}
