package model

import (
	"strings"
	"time"
)

// RepositoryRecord is a public repository as returned by the hosting API.
// Nullable API fields (description, language) map to empty strings.
type RepositoryRecord struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	Topics      []string  `json:"topics"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	HTMLURL     string    `json:"html_url"`
	Homepage    string    `json:"homepage"`
	Fork        bool      `json:"fork"`
}

// IsProfileRepo reports whether the repository is the account's profile
// README repository, which the hosting platform names after the account.
func (r RepositoryRecord) IsProfileRepo(account string) bool {
	return strings.EqualFold(r.Name, account)
}
