package application

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/wian47/portfolio/internal/domain/model"
)

// RepoFacts is the subset of a repository that category and image
// resolution look at. Resolution is a pure function of these facts.
type RepoFacts struct {
	Name           string
	NormalizedName string
	Description    string
	Language       string
	Topics         []string
}

// FactsOf extracts resolution facts from a raw repository record.
func FactsOf(r model.RepositoryRecord) RepoFacts {
	return RepoFacts{
		Name:           r.Name,
		NormalizedName: NormalizeName(r.Name),
		Description:    r.Description,
		Language:       r.Language,
		Topics:         r.Topics,
	}
}

// NormalizeName produces the lookup key used by every name-keyed table:
// lowercase with hyphens, underscores, whitespace and any other
// non-alphanumeric characters removed. "To-Do_List App" becomes "todolistapp".
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CategoryStrategy proposes a category for a repository, or returns false
// to defer to the next strategy.
type CategoryStrategy func(f RepoFacts) (model.Category, bool)

// ImageStrategy proposes an image asset for a repository, or returns false
// to defer to the next strategy.
type ImageStrategy func(f RepoFacts, category model.Category) (string, bool)

// Resolver assigns a category and an image fallback chain to repositories by
// evaluating ordered strategies. The first strategy to answer wins.
type Resolver struct {
	categories []CategoryStrategy
	images     []ImageStrategy
	fallback   string
}

// NewResolver builds the standard strategy chains from tables. Table keys are
// normalized here so configuration may use display names.
func NewResolver(tables CatalogTables) *Resolver {
	overrides := make(map[string]model.Category, len(tables.CategoryOverrides))
	for name, c := range tables.CategoryOverrides {
		if c.Valid() {
			overrides[NormalizeName(name)] = c
		}
	}

	images := make(map[string]string, len(tables.Images))
	for name, asset := range tables.Images {
		if asset != "" {
			images[NormalizeName(name)] = asset
		}
	}

	fallback := tables.GlobalFallback
	if fallback == "" {
		fallback = DefaultCatalogTables().GlobalFallback
	}

	return &Resolver{
		categories: []CategoryStrategy{
			OverrideCategory(overrides),
			TopicCategory(),
			KeywordCategory(),
		},
		images: []ImageStrategy{
			ExactImage(images),
			KeywordImage(tables.ImageKeywords),
			CategoryDefaultImage(tables.AssetBase),
		},
		fallback: fallback,
	}
}

// NewResolverWithStrategies builds a Resolver from explicit strategy chains.
func NewResolverWithStrategies(categories []CategoryStrategy, images []ImageStrategy, fallback string) *Resolver {
	return &Resolver{categories: categories, images: images, fallback: fallback}
}

// Category returns the first category any strategy proposes, or
// model.CategoryCode when none does.
func (r *Resolver) Category(f RepoFacts) model.Category {
	for _, s := range r.categories {
		if c, ok := s(f); ok && c.Valid() {
			return c
		}
	}
	return model.CategoryCode
}

// ImageCandidates returns every distinct asset the image strategies propose,
// in priority order, always terminated by the global fallback.
func (r *Resolver) ImageCandidates(f RepoFacts, category model.Category) []string {
	candidates := make([]string, 0, len(r.images)+1)
	for _, s := range r.images {
		if asset, ok := s(f, category); ok && asset != "" && !slices.Contains(candidates, asset) {
			candidates = append(candidates, asset)
		}
	}
	if !slices.Contains(candidates, r.fallback) {
		candidates = append(candidates, r.fallback)
	}
	return candidates
}

// ImageRef returns the preferred image for the repository. It is never empty.
func (r *Resolver) ImageRef(f RepoFacts, category model.Category) string {
	return r.ImageCandidates(f, category)[0]
}

// Fallback returns the global fallback asset.
func (r *Resolver) Fallback() string {
	return r.fallback
}

// NextImageCandidate returns the candidate that should replace the one at
// failedIndex after it fails to load. The boolean is false once the chain is
// exhausted; the returned value is then the last candidate (the global
// fallback) so the caller can stop retrying without blanking the image.
func NextImageCandidate(candidates []string, failedIndex int) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	next := failedIndex + 1
	if next < 0 {
		next = 0
	}
	if next >= len(candidates) {
		return candidates[len(candidates)-1], false
	}
	return candidates[next], true
}

// OverrideCategory pins categories for known repositories by normalized name.
func OverrideCategory(table map[string]model.Category) CategoryStrategy {
	return func(f RepoFacts) (model.Category, bool) {
		c, ok := table[f.NormalizedName]
		return c, ok
	}
}

var topicRules = []struct {
	category model.Category
	topics   []string
}{
	{model.CategoryWeb, []string{"web", "website"}},
	{model.CategoryAPI, []string{"api", "rest-api"}},
	{model.CategoryApp, []string{"app", "application", "mobile"}},
}

// TopicCategory maps declared topic tags to a category.
func TopicCategory() CategoryStrategy {
	return func(f RepoFacts) (model.Category, bool) {
		for _, rule := range topicRules {
			for _, topic := range f.Topics {
				if slices.Contains(rule.topics, strings.ToLower(topic)) {
					return rule.category, true
				}
			}
		}
		return "", false
	}
}

var markupLanguages = []string{"html", "css", "scss"}

var keywordRules = []struct {
	category     model.Category
	nameParts    []string
	descriptions []string
}{
	{model.CategoryWeb, []string{"web", "site"}, []string{"web", "website", "site"}},
	{model.CategoryAPI, []string{"api", "service"}, []string{"api"}},
	{model.CategoryApp, []string{"app", "mobile"}, []string{"app", "application", "mobile"}},
}

// KeywordCategory infers a category from name substrings, description words
// and markup primary languages.
func KeywordCategory() CategoryStrategy {
	return func(f RepoFacts) (model.Category, bool) {
		name := strings.ToLower(f.Name)
		words := wordsOf(f.Description)

		for _, rule := range keywordRules {
			if rule.category == model.CategoryWeb && slices.Contains(markupLanguages, strings.ToLower(f.Language)) {
				return rule.category, true
			}
			for _, part := range rule.nameParts {
				if strings.Contains(name, part) {
					return rule.category, true
				}
			}
			for _, w := range rule.descriptions {
				if slices.Contains(words, w) {
					return rule.category, true
				}
			}
		}
		return "", false
	}
}

// wordsOf lowercases s and splits it on anything that is not a letter or digit.
func wordsOf(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ExactImage looks the normalized name up in a static name-to-asset table.
func ExactImage(table map[string]string) ImageStrategy {
	return func(f RepoFacts, _ model.Category) (string, bool) {
		asset, ok := table[f.NormalizedName]
		return asset, ok
	}
}

// KeywordImage matches normalized-name substrings against keyword rules.
// Rules are tried in order and the first rule with any matching keyword wins.
func KeywordImage(rules []KeywordAsset) ImageStrategy {
	return func(f RepoFacts, _ model.Category) (string, bool) {
		for _, rule := range rules {
			for _, kw := range rule.Keywords {
				kw = NormalizeName(kw)
				if kw != "" && strings.Contains(f.NormalizedName, kw) {
					return rule.Asset, rule.Asset != ""
				}
			}
		}
		return "", false
	}
}

// CategoryDefaultImage returns the "default-{category}" asset under base.
func CategoryDefaultImage(base string) ImageStrategy {
	return func(_ RepoFacts, category model.Category) (string, bool) {
		if !category.Valid() {
			return "", false
		}
		return fmt.Sprintf("%sdefault-%s.svg", base, category), true
	}
}
