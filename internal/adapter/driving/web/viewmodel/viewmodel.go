// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// PageViewModel holds everything the portfolio page renders.
type PageViewModel struct {
	Title   string
	Account string

	Stats StatsViewModel

	// Available is false when the catalog could not be loaded. The page then
	// shows UnavailableMessage in place of the project grid.
	Available          bool
	UnavailableMessage string

	Projects   []ProjectCardViewModel
	Categories []CategoryFilterViewModel
	Languages  []LanguageViewModel
	Query      string

	ReadmeHTML string

	CSRFToken        string
	ContactEnabled   bool
	AssistantEnabled bool
}

// StatsViewModel holds the three counters as display strings.
type StatsViewModel struct {
	Repos        string
	Stars        string
	Commits      string
	CommitsTitle string // tooltip explaining the commit estimate
}

// ProjectCardViewModel holds presentation-ready data for one project card.
type ProjectCardViewModel struct {
	ID          string
	Title       string
	Description string
	Category    string
	Language    string
	Stars       int
	Forks       int
	Topics      []string
	UpdatedAt   string
	SourceURL   string
	HomepageURL string
	ImageRef    string

	// CandidatesJSON is the image fallback chain as a JSON array for the
	// data-candidates attribute read by images.js.
	CandidatesJSON string
}

// CategoryFilterViewModel is one category filter button.
type CategoryFilterViewModel struct {
	Value  string
	Label  string
	Count  int
	Active bool
}

// LanguageViewModel is one entry of the language summary.
type LanguageViewModel struct {
	Name    string
	Count   int
	Percent int
}

// NoticeViewModel is the feedback shown after a contact form submission.
type NoticeViewModel struct {
	Kind    string // success, error
	Message string
	Field   string
}
