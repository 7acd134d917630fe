package driven

import (
	"context"

	"github.com/wian47/portfolio/internal/domain/model"
)

// RepositoryLister defines the driven port for the repository hosting API.
// Implementations return a *model.FetchError for every failure so the catalog
// can distinguish timeouts, HTTP errors and malformed payloads.
type RepositoryLister interface {
	// ListOwnerRepositories returns every public repository owned by account,
	// most recently updated first. No filtering is applied.
	ListOwnerRepositories(ctx context.Context, account string) ([]model.RepositoryRecord, error)

	// FetchProfileReadme returns the raw markdown of the account's profile
	// README. Returns "", nil when the account has none.
	FetchProfileReadme(ctx context.Context, account string) (string, error)
}
