// Package github implements the RepositoryLister port using the go-github library.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/wian47/portfolio/internal/domain/model"
	"github.com/wian47/portfolio/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RepositoryLister = (*Client)(nil)

// maxPerPage is the largest page size the repository listing endpoint accepts.
const maxPerPage = 100

// Client implements the driven.RepositoryLister port using the go-github library.
type Client struct {
	gh *gh.Client
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client, PAT auth when token is non-empty)
//
// Public repositories are readable without a token, at a lower rate limit.
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &Client{gh: client}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// ListOwnerRepositories retrieves every repository owned by account, most
// recently updated first. It follows pagination and maps go-github types to
// domain records. Every error is a *model.FetchError.
func (c *Client) ListOwnerRepositories(ctx context.Context, account string) ([]model.RepositoryRecord, error) {
	opts := &gh.RepositoryListByUserOptions{
		Type:      "owner",
		Sort:      "updated",
		Direction: "desc",
		ListOptions: gh.ListOptions{
			PerPage: maxPerPage,
		},
	}

	var all []model.RepositoryRecord

	for {
		repos, resp, err := c.gh.Repositories.ListByUser(ctx, account, opts)
		if err != nil {
			return nil, classify(ctx, fmt.Errorf("listing repositories for %s (page %d): %w", account, opts.Page, err))
		}

		// A JSON array, even an empty one, decodes to a non-nil slice. A nil
		// page means the body was empty or null.
		if repos == nil {
			return nil, &model.FetchError{
				Kind: model.FailureMalformed,
				Err:  fmt.Errorf("listing repositories for %s (page %d): response body is not a JSON array", account, opts.Page),
			}
		}

		logRateLimit(resp, "users/"+account+"/repos", opts.Page, len(repos))

		for _, r := range repos {
			if r == nil {
				continue
			}
			all = append(all, mapRepository(r))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if all == nil {
		all = []model.RepositoryRecord{}
	}

	return all, nil
}

// FetchProfileReadme returns the decoded README of the {account}/{account}
// repository. Returns "", nil if the repository or its README does not exist.
func (c *Client) FetchProfileReadme(ctx context.Context, account string) (string, error) {
	readme, resp, err := c.gh.Repositories.GetReadme(ctx, account, account, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", classify(ctx, fmt.Errorf("fetching profile README for %s: %w", account, err))
	}

	logRateLimit(resp, "repos/"+account+"/"+account+"/readme", 0, 1)

	content, err := readme.GetContent()
	if err != nil {
		return "", &model.FetchError{Kind: model.FailureMalformed, Err: fmt.Errorf("decoding profile README for %s: %w", account, err)}
	}

	return content, nil
}

// mapRepository converts a go-github Repository to a domain RepositoryRecord.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapRepository(r *gh.Repository) model.RepositoryRecord {
	topics := make([]string, 0, len(r.Topics))
	topics = append(topics, r.Topics...)

	return model.RepositoryRecord{
		ID:          r.GetID(),
		Name:        r.GetName(),
		Description: r.GetDescription(),
		Language:    r.GetLanguage(),
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		Topics:      topics,
		CreatedAt:   r.GetCreatedAt().Time,
		UpdatedAt:   r.GetUpdatedAt().Time,
		HTMLURL:     r.GetHTMLURL(),
		Homepage:    r.GetHomepage(),
		Fork:        r.GetFork(),
	}
}

// classify maps a go-github error to the catalog failure taxonomy.
//   - rate limit and error responses: FailureHTTP with the response status
//   - JSON that does not decode into the expected shape (for example an
//     error object where a list was expected): FailureMalformed
//   - deadline exceeded or network timeouts: FailureTimeout
//   - everything else: FailureNetwork
func classify(ctx context.Context, err error) error {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return model.NewHTTPError(statusOf(rateErr.Response, http.StatusForbidden), err)
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return model.NewHTTPError(statusOf(abuseErr.Response, http.StatusForbidden), err)
	}

	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) {
		return model.NewHTTPError(statusOf(respErr.Response, 0), err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &model.FetchError{Kind: model.FailureMalformed, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &model.FetchError{Kind: model.FailureTimeout, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &model.FetchError{Kind: model.FailureTimeout, Err: err}
	}

	return &model.FetchError{Kind: model.FailureNetwork, Err: err}
}

func statusOf(resp *http.Response, fallback int) int {
	if resp == nil {
		return fallback
	}
	return resp.StatusCode
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 10 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
