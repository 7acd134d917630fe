package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wian47/portfolio/internal/app"
	"github.com/wian47/portfolio/internal/application"
	"github.com/wian47/portfolio/internal/config"
	"github.com/wian47/portfolio/internal/domain/model"
	"github.com/wian47/portfolio/internal/logging"
)

func main() {
	root := &cobra.Command{
		Use:           "portfolioctl",
		Short:         "Inspect and maintain the portfolio repository catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(projectsCmd(), statsCmd(), resolveCmd(), cacheCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// withApp loads configuration, wires the services and runs fn with them.
func withApp(fn func(ctx context.Context, cfg *config.Config, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Error("error closing cache", "error", closeErr)
		}
	}()

	return fn(ctx, cfg, a)
}

func projectsCmd() *cobra.Command {
	var refresh, asJSON bool
	var query, category string

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List the normalized project catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, cfg *config.Config, a *app.App) error {
				catalog, err := a.Catalog.LoadCatalog(ctx, cfg.GitHubAccount, refresh)
				if err != nil {
					return err
				}
				projects := application.FilterProjects(catalog.Projects, query, category)
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), projects)
				}
				return printProjects(cmd.OutOrStdout(), projects)
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Re-fetch from GitHub, keeping the cache if the fetch fails")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print display records as JSON")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only projects whose title, description or topics contain this text")
	cmd.Flags().StringVar(&category, "category", "", "Only projects in this category (web, api, app, code)")
	return cmd
}

func statsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show repository, star and commit counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, cfg *config.Config, a *app.App) error {
				stats, err := a.Catalog.GetStats(ctx, cfg.GitHubAccount)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), stats.Display())
				}
				printStats(cmd.OutOrStdout(), stats.Display())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print counters as JSON")
	return cmd
}

func resolveCmd() *cobra.Command {
	var description, language string
	var topics []string

	cmd := &cobra.Command{
		Use:   "resolve [repository name]",
		Short: "Show the category and image chain a repository would get",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			tables, err := cfg.CatalogTables()
			if err != nil {
				return err
			}

			facts := application.FactsOf(model.RepositoryRecord{
				Name:        args[0],
				Description: description,
				Language:    language,
				Topics:      topics,
			})
			printResolution(cmd.OutOrStdout(), application.NewResolver(tables), facts)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Repository description")
	cmd.Flags().StringVar(&language, "language", "", "Primary language")
	cmd.Flags().StringSliceVar(&topics, "topic", nil, "Topic tag (repeatable)")
	return cmd
}

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the repository cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "invalidate",
		Short: "Evict the configured account's repository list and stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, cfg *config.Config, a *app.App) error {
				if err := a.Catalog.Invalidate(ctx, cfg.GitHubAccount); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Invalidated cache for %s\n", cfg.GitHubAccount)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every cached snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, _ *config.Config, a *app.App) error {
				n, err := a.Cache.Clear(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cache entries\n", n)
				return nil
			})
		},
	})
	return cmd
}

func printProjects(w io.Writer, projects []model.ProjectDisplayRecord) error {
	if len(projects) == 0 {
		_, err := fmt.Fprintln(w, "No projects found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tCATEGORY\tLANGUAGE\tSTARS\tUPDATED\tIMAGE")
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", p.Title, p.Category, p.Language, p.Stars, p.UpdatedAt, p.ImageRef)
	}
	return tw.Flush()
}

func printStats(w io.Writer, s model.StatsDisplay) {
	fmt.Fprintf(w, "Repos:   %s\n", s.Repos)
	fmt.Fprintf(w, "Stars:   %s\n", s.Stars)
	fmt.Fprintf(w, "Commits: %s\n", s.Commits)
}

func printResolution(w io.Writer, r *application.Resolver, facts application.RepoFacts) {
	category := r.Category(facts)
	fmt.Fprintf(w, "Name:       %s\n", facts.Name)
	fmt.Fprintf(w, "Normalized: %s\n", facts.NormalizedName)
	fmt.Fprintf(w, "Category:   %s\n", category)
	fmt.Fprintf(w, "Images:     %s\n", strings.Join(r.ImageCandidates(facts, category), "\n            "))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}

