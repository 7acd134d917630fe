package application

import (
	"fmt"
	"maps"

	"gopkg.in/yaml.v3"

	"github.com/wian47/portfolio/internal/domain/model"
)

// CatalogTables holds the static lookup data the Resolver is built from.
// Name keys may be written in any form; they are normalized on use.
type CatalogTables struct {
	AssetBase         string                    `yaml:"asset_base"`
	CategoryOverrides map[string]model.Category `yaml:"category_overrides"`
	Images            map[string]string         `yaml:"images"`
	ImageKeywords     []KeywordAsset            `yaml:"image_keywords"`
	GlobalFallback    string                    `yaml:"global_fallback"`
}

// KeywordAsset maps any of Keywords, found in a normalized repository name, to Asset.
type KeywordAsset struct {
	Keywords []string `yaml:"keywords"`
	Asset    string   `yaml:"asset"`
}

const defaultAssetBase = "assets/projects/"

// DefaultCatalogTables returns the built-in tables for the flagship projects.
func DefaultCatalogTables() CatalogTables {
	const (
		passwordChecker = defaultAssetBase + "Password Checker.svg"
		todoList        = defaultAssetBase + "To Do List App.svg"
		portfolio       = defaultAssetBase + "Portfolio.svg"
		purpleEditor    = defaultAssetBase + "Purple Web Editor.svg"
		vulnScanner     = defaultAssetBase + "Web-Application-Vulnerability-Scanner.svg"
	)

	return CatalogTables{
		AssetBase: defaultAssetBase,
		CategoryOverrides: map[string]model.Category{
			"purplewebeditor":                    model.CategoryWeb,
			"todolistapp":                        model.CategoryWeb,
			"portfolio":                          model.CategoryWeb,
			"webapplicationvulnerabilityscanner": model.CategoryApp,
			"passwordchecker":                    model.CategoryWeb,
		},
		Images: map[string]string{
			"purplewebeditor":                    purpleEditor,
			"todolistapp":                        todoList,
			"portfolio":                          portfolio,
			"webapplicationvulnerabilityscanner": vulnScanner,
			"passwordchecker":                    passwordChecker,
		},
		ImageKeywords: []KeywordAsset{
			{Keywords: []string{"password", "checker"}, Asset: passwordChecker},
			{Keywords: []string{"todo", "list"}, Asset: todoList},
			{Keywords: []string{"portfolio"}, Asset: portfolio},
			{Keywords: []string{"editor", "purple"}, Asset: purpleEditor},
			{Keywords: []string{"vulnerability", "scanner"}, Asset: vulnScanner},
		},
		GlobalFallback: defaultAssetBase + "placeholder.svg",
	}
}

// ParseCatalogTables decodes YAML tables and layers them over the defaults.
// Maps are merged key by key; a non-empty keyword list replaces the default one.
func ParseCatalogTables(data []byte) (CatalogTables, error) {
	var override CatalogTables
	if err := yaml.Unmarshal(data, &override); err != nil {
		return CatalogTables{}, fmt.Errorf("parse catalog tables: %w", err)
	}

	for name, c := range override.CategoryOverrides {
		if !c.Valid() {
			return CatalogTables{}, fmt.Errorf("category override %q: invalid category %q", name, c)
		}
	}

	tables := DefaultCatalogTables()
	if override.AssetBase != "" {
		tables.AssetBase = override.AssetBase
	}
	maps.Copy(tables.CategoryOverrides, override.CategoryOverrides)
	maps.Copy(tables.Images, override.Images)
	if len(override.ImageKeywords) > 0 {
		tables.ImageKeywords = override.ImageKeywords
	}
	if override.GlobalFallback != "" {
		tables.GlobalFallback = override.GlobalFallback
	}

	return tables, nil
}
