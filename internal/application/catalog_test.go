package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wian47/portfolio/internal/application"
	"github.com/wian47/portfolio/internal/domain/model"
)

func TestDefaultCatalogTables_ConsistentWithCategories(t *testing.T) {
	tables := application.DefaultCatalogTables()

	for name, c := range tables.CategoryOverrides {
		assert.True(t, c.Valid(), "override %s", name)
		assert.Equal(t, application.NormalizeName(name), name, "default keys are stored normalized")
	}
	for name := range tables.Images {
		assert.Contains(t, tables.CategoryOverrides, name, "pinned image %s has a pinned category", name)
	}
	assert.NotEmpty(t, tables.GlobalFallback)
}

func TestParseCatalogTables_MergesOverDefaults(t *testing.T) {
	data := []byte(`
asset_base: /static/img/
category_overrides:
  Home-Lab: app
images:
  Home Lab: /static/img/homelab.webp
global_fallback: /static/img/none.png
`)

	tables, err := application.ParseCatalogTables(data)
	require.NoError(t, err)

	assert.Equal(t, "/static/img/", tables.AssetBase)
	assert.Equal(t, "/static/img/none.png", tables.GlobalFallback)
	assert.Equal(t, model.CategoryApp, tables.CategoryOverrides["Home-Lab"])
	assert.Equal(t, model.CategoryWeb, tables.CategoryOverrides["todolistapp"], "defaults survive")
	assert.Equal(t, application.DefaultCatalogTables().ImageKeywords, tables.ImageKeywords)

	r := application.NewResolver(tables)
	facts := application.FactsOf(model.RepositoryRecord{Name: "home_lab"})
	category := r.Category(facts)
	assert.Equal(t, model.CategoryApp, category)
	assert.Equal(t, []string{
		"/static/img/homelab.webp",
		"/static/img/default-app.svg",
		"/static/img/none.png",
	}, r.ImageCandidates(facts, category))
}

func TestParseCatalogTables_KeywordsReplaceDefaults(t *testing.T) {
	data := []byte(`
image_keywords:
  - keywords: [game, arcade]
    asset: games.png
`)

	tables, err := application.ParseCatalogTables(data)
	require.NoError(t, err)
	assert.Equal(t, []application.KeywordAsset{{Keywords: []string{"game", "arcade"}, Asset: "games.png"}}, tables.ImageKeywords)
}

func TestParseCatalogTables_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid yaml", "category_overrides: [unclosed"},
		{"unknown category", "category_overrides:\n  foo: games\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := application.ParseCatalogTables([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestParseCatalogTables_Empty(t *testing.T) {
	tables, err := application.ParseCatalogTables(nil)
	require.NoError(t, err)
	assert.Equal(t, application.DefaultCatalogTables(), tables)
}
