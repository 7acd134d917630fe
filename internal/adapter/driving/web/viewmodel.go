package web

import (
	"encoding/json"
	"strings"

	vm "github.com/wian47/portfolio/internal/adapter/driving/web/viewmodel"
	"github.com/wian47/portfolio/internal/application"
	"github.com/wian47/portfolio/internal/domain/model"
)

// unavailableMessage is the only failure text visitors see on the page.
const unavailableMessage = "Projects are unavailable right now. Please try again later."

const commitsEstimateTitle = "Estimated from the number of repositories"

// toStatsViewModel converts display stats into counters.
func toStatsViewModel(s model.StatsDisplay) vm.StatsViewModel {
	stats := vm.StatsViewModel{Repos: s.Repos, Stars: s.Stars, Commits: s.Commits}
	if s.CommitsIsEstimate {
		stats.CommitsTitle = commitsEstimateTitle
	}
	return stats
}

// toProjectCardViewModel converts a display record into a card.
func toProjectCardViewModel(p model.ProjectDisplayRecord) vm.ProjectCardViewModel {
	candidates, err := json.Marshal(p.ImageCandidates)
	if err != nil {
		candidates = []byte("[]")
	}

	topics := p.Topics
	if topics == nil {
		topics = []string{}
	}

	return vm.ProjectCardViewModel{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Category:       string(p.Category),
		Language:       p.Language,
		Stars:          p.Stars,
		Forks:          p.Forks,
		Topics:         topics,
		UpdatedAt:      p.UpdatedAt,
		SourceURL:      p.SourceURL,
		HomepageURL:    p.HomepageURL,
		ImageRef:       p.ImageRef,
		CandidatesJSON: string(candidates),
	}
}

// toCategoryFilters builds the "all" button plus one per category, counting
// the unfiltered catalog so counts do not change while filtering.
func toCategoryFilters(projects []model.ProjectDisplayRecord, active string) []vm.CategoryFilterViewModel {
	active = strings.ToLower(active)
	if active == "" {
		active = "all"
	}

	counts := make(map[model.Category]int, len(model.Categories))
	for _, p := range projects {
		counts[p.Category]++
	}

	filters := make([]vm.CategoryFilterViewModel, 0, len(model.Categories)+1)
	filters = append(filters, vm.CategoryFilterViewModel{
		Value:  "all",
		Label:  "All",
		Count:  len(projects),
		Active: active == "all",
	})
	for _, c := range model.Categories {
		filters = append(filters, vm.CategoryFilterViewModel{
			Value:  string(c),
			Label:  categoryLabel(c),
			Count:  counts[c],
			Active: active == string(c),
		})
	}
	return filters
}

func categoryLabel(c model.Category) string {
	switch c {
	case model.CategoryWeb:
		return "Web"
	case model.CategoryAPI:
		return "API"
	case model.CategoryApp:
		return "Apps"
	default:
		return "Code"
	}
}

// toLanguageViewModels converts language counts, adding each share of the total.
func toLanguageViewModels(langs []model.LanguageCount) []vm.LanguageViewModel {
	total := 0
	for _, l := range langs {
		total += l.Count
	}

	out := make([]vm.LanguageViewModel, 0, len(langs))
	for _, l := range langs {
		pct := 0
		if total > 0 {
			pct = l.Count * 100 / total
		}
		out = append(out, vm.LanguageViewModel{Name: l.Name, Count: l.Count, Percent: pct})
	}
	return out
}

// pageInput is what the handler gathered for one page render.
type pageInput struct {
	account    string
	catalog    model.Catalog
	catalogErr error
	readme     string
	query      string
	category   string
	csrfToken  string
	contact    bool
	assistant  bool
}

// toPageViewModel assembles the page. A catalog error yields the degraded
// state: no cards, the unavailable message and placeholder counters.
func toPageViewModel(in pageInput) vm.PageViewModel {
	page := vm.PageViewModel{
		Title:            in.account + " | Portfolio",
		Account:          in.account,
		Query:            in.query,
		ReadmeHTML:       RenderMarkdown(in.readme),
		CSRFToken:        in.csrfToken,
		ContactEnabled:   in.contact,
		AssistantEnabled: in.assistant,
		Projects:         []vm.ProjectCardViewModel{},
		Languages:        []vm.LanguageViewModel{},
	}

	if in.catalogErr != nil {
		page.Stats = toStatsViewModel(model.UnavailableStats())
		page.UnavailableMessage = unavailableMessage
		page.Categories = toCategoryFilters(nil, in.category)
		return page
	}

	page.Available = true
	page.Stats = toStatsViewModel(in.catalog.Stats.Display())
	page.Categories = toCategoryFilters(in.catalog.Projects, in.category)
	page.Languages = toLanguageViewModels(in.catalog.Languages)

	for _, p := range application.FilterProjects(in.catalog.Projects, in.query, in.category) {
		page.Projects = append(page.Projects, toProjectCardViewModel(p))
	}
	return page
}
