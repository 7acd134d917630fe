package application

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/wian47/portfolio/internal/domain/model"
)

// DefaultDateLayout matches the short numeric date most visitors expect.
const DefaultDateLayout = "1/2/2006"

// defaultLanguage is shown for repositories GitHub reports no language for.
const defaultLanguage = "Text"

var titleReplacer = strings.NewReplacer("-", " ", "_", " ")

// Normalizer turns raw repository records into display records.
type Normalizer struct {
	resolver *Resolver
	layout   string
	loc      *time.Location
}

// NewNormalizer creates a Normalizer. An empty layout selects
// DefaultDateLayout and a nil location selects UTC.
func NewNormalizer(resolver *Resolver, layout string, loc *time.Location) *Normalizer {
	if layout == "" {
		layout = DefaultDateLayout
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{resolver: resolver, layout: layout, loc: loc}
}

// Resolver returns the resolver the normalizer assigns categories and images with.
func (n *Normalizer) Resolver() *Resolver {
	return n.resolver
}

// Normalize resolves the category and image chain for raw and builds its display record.
func (n *Normalizer) Normalize(raw model.RepositoryRecord) model.ProjectDisplayRecord {
	facts := FactsOf(raw)
	category := n.resolver.Category(facts)
	return n.Project(raw, category, n.resolver.ImageCandidates(facts, category))
}

// NormalizeAll normalizes every record, preserving order.
func (n *Normalizer) NormalizeAll(raws []model.RepositoryRecord) []model.ProjectDisplayRecord {
	projects := make([]model.ProjectDisplayRecord, 0, len(raws))
	for _, raw := range raws {
		projects = append(projects, n.Normalize(raw))
	}
	return projects
}

// Project builds the display record from raw and already-resolved outputs.
func (n *Normalizer) Project(raw model.RepositoryRecord, category model.Category, candidates []string) model.ProjectDisplayRecord {
	description := strings.TrimSpace(raw.Description)
	if description == "" {
		description = "A " + string(category) + " project."
	}

	language := raw.Language
	if language == "" {
		language = defaultLanguage
	}

	topics := slices.Clone(raw.Topics)
	if topics == nil {
		topics = []string{}
	}

	imageRef := n.resolver.Fallback()
	if len(candidates) > 0 {
		imageRef = candidates[0]
	} else {
		candidates = []string{imageRef}
	}

	return model.ProjectDisplayRecord{
		ID:              strconv.FormatInt(raw.ID, 10),
		Title:           DisplayTitle(raw.Name),
		Description:     description,
		Category:        category,
		Language:        language,
		Stars:           max(raw.Stars, 0),
		Forks:           max(raw.Forks, 0),
		Topics:          topics,
		CreatedAt:       FormatDate(raw.CreatedAt, n.layout, n.loc),
		UpdatedAt:       FormatDate(raw.UpdatedAt, n.layout, n.loc),
		SourceURL:       raw.HTMLURL,
		HomepageURL:     raw.Homepage,
		ImageRef:        imageRef,
		ImageCandidates: candidates,
	}
}

// DisplayTitle replaces each hyphen and underscore in a repository name with a space.
func DisplayTitle(name string) string {
	return titleReplacer.Replace(name)
}

// FormatDate renders t in loc with layout. Zero times render as "".
func FormatDate(t time.Time, layout string, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(layout)
}

// SummarizeLanguages counts repositories per primary language, most used first.
// Repositories without a language are skipped.
func SummarizeLanguages(repos []model.RepositoryRecord) []model.LanguageCount {
	counts := make(map[string]int)
	for _, r := range repos {
		if r.Language != "" {
			counts[r.Language]++
		}
	}

	langs := make([]model.LanguageCount, 0, len(counts))
	for name, count := range counts {
		langs = append(langs, model.LanguageCount{Name: name, Count: count})
	}
	slices.SortFunc(langs, func(a, b model.LanguageCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return langs
}

// FilterProjects returns the projects whose title, description or topics
// contain query (case-insensitive) and whose category matches. An empty
// query matches everything; category "" or "all" matches any category.
func FilterProjects(projects []model.ProjectDisplayRecord, query, category string) []model.ProjectDisplayRecord {
	query = strings.ToLower(strings.TrimSpace(query))
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "all" {
		category = ""
	}

	out := make([]model.ProjectDisplayRecord, 0, len(projects))
	for _, p := range projects {
		if category != "" && string(p.Category) != category {
			continue
		}
		if query != "" && !projectMatches(p, query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func projectMatches(p model.ProjectDisplayRecord, query string) bool {
	if strings.Contains(strings.ToLower(p.Title), query) ||
		strings.Contains(strings.ToLower(p.Description), query) {
		return true
	}
	return slices.ContainsFunc(p.Topics, func(t string) bool {
		return strings.Contains(strings.ToLower(t), query)
	})
}
