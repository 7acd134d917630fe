package model

import "strconv"

// ProjectDisplayRecord is a normalized, render-ready project card.
type ProjectDisplayRecord struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Language    string   `json:"language"`
	Stars       int      `json:"stars"`
	Forks       int      `json:"forks"`
	Topics      []string `json:"topics"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
	SourceURL   string   `json:"source_url"`
	HomepageURL string   `json:"homepage_url,omitempty"`
	ImageRef    string   `json:"image_ref"`

	// ImageCandidates is the full ordered image fallback chain. ImageRef is
	// always its first element and the global fallback its last.
	ImageCandidates []string `json:"image_candidates"`
}

// Stats summarizes an account's public repositories for the counters.
type Stats struct {
	RepoCount  int `json:"repo_count"`
	StarsCount int `json:"stars_count"`

	// CommitsEstimate is a rough multiple of RepoCount. Commit totals are not
	// retrievable without per-repository calls, so this is never a true count.
	CommitsEstimate   int  `json:"commits_estimate"`
	CommitsIsEstimate bool `json:"commits_is_estimate"`
}

// LanguageCount is the number of repositories whose primary language is Name.
type LanguageCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Catalog is everything the rendering layer needs for the projects section.
type Catalog struct {
	Account   string                 `json:"account"`
	Projects  []ProjectDisplayRecord `json:"projects"`
	Stats     Stats                  `json:"stats"`
	Languages []LanguageCount        `json:"languages"`
}

// StatPlaceholder stands in for every counter when stats are unavailable.
const StatPlaceholder = "-"

// StatsDisplay is Stats rendered for the counters.
type StatsDisplay struct {
	Repos             string `json:"repos"`
	Stars             string `json:"stars"`
	Commits           string `json:"commits"`
	CommitsIsEstimate bool   `json:"commits_is_estimate"`
}

// Display renders the counters. Estimated commit counts are prefixed with "~".
func (s Stats) Display() StatsDisplay {
	commits := strconv.Itoa(s.CommitsEstimate)
	if s.CommitsIsEstimate {
		commits = "~" + commits
	}
	return StatsDisplay{
		Repos:             strconv.Itoa(s.RepoCount),
		Stars:             strconv.Itoa(s.StarsCount),
		Commits:           commits,
		CommitsIsEstimate: s.CommitsIsEstimate,
	}
}

// UnavailableStats is the display used when the catalog could not be loaded.
func UnavailableStats() StatsDisplay {
	return StatsDisplay{Repos: StatPlaceholder, Stars: StatPlaceholder, Commits: StatPlaceholder}
}
