/*
Package cli implements the tulz commands.

Every command that touches the search corpus goes through an app, which
loads configuration, the embedded catalog, optional Markdown articles, the
search index and the history database. History failures never fail a
command; storage degrades to a no-op.
*/
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tulznet/tulz/internal/analytics"
	"github.com/tulznet/tulz/internal/catalog"
	"github.com/tulznet/tulz/internal/config"
	"github.com/tulznet/tulz/internal/content"
	"github.com/tulznet/tulz/internal/filter"
	"github.com/tulznet/tulz/internal/obs"
	"github.com/tulznet/tulz/internal/search"
	"github.com/tulznet/tulz/internal/storage"
)

// ConfigFlag names the persistent flag holding an explicit config path.
const ConfigFlag = "config"

// app bundles the wired components a command needs.
type app struct {
	cfg      *config.Config
	catalog  *catalog.Catalog
	articles []catalog.ArticleRecord
	index    *search.Loader
	store    *storage.SQLiteStorage
	tracker  *analytics.Tracker
	logger   zerolog.Logger
}

// loadConfig reads --config when set, the default file otherwise.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString(ConfigFlag)
	if path == "" {
		return config.LoadDefault()
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// newApp wires everything except the index, which is started by
// loadIndex or loadIndexAsync.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	obs.InitLogger(cfg.Settings.LogLevel)
	logger := obs.Logger("cli")

	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	articles := loadArticles(cfg, logger)

	historyPath, err := cfg.HistoryPath()
	if err != nil {
		return nil, err
	}
	store := storage.NewStorage(historyPath)

	return &app{
		cfg:      cfg,
		catalog:  cat,
		articles: articles,
		index:    search.NewLoader(cfg.SearchConfig()),
		store:    store,
		tracker:  analytics.NewTracker(store),
		logger:   logger,
	}, nil
}

// loadArticles reads the configured articles directory. A missing or
// unreadable directory yields no articles.
func loadArticles(cfg *config.Config, logger zerolog.Logger) []catalog.ArticleRecord {
	dir := cfg.ArticlesPath()
	if dir == "" {
		return nil
	}
	articles, err := content.NewLoader(dir, obs.Logger("content")).Load()
	if err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("articles unavailable")
		return nil
	}
	return articles
}

// source returns the prebuilt artifact when configured, otherwise the
// catalog merged with the loaded articles.
func (a *app) source() search.Source {
	if path := a.cfg.IndexArtifactPath(); path != "" {
		return search.FileSource(path)
	}
	return search.EntriesSource(catalog.BuildEntries(a.catalog, a.articles))
}

func (a *app) loadIndex() {
	a.index.Load(a.source())
}

func (a *app) loadIndexAsync() {
	a.index.LoadAsync(a.source())
}

// close flushes analytics and releases the index and database.
func (a *app) close() {
	a.tracker.Stop()
	if err := a.index.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("failed to close index")
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("failed to close history database")
	}
}

// parseCriteria validates the filter flags shared by search and tools.
// Unlike the URL decoder, bad values are reported to the user.
func parseCriteria(categories, features []string, sortFlag string) ([]catalog.Category, []string, filter.SortOrder, error) {
	cats := make([]catalog.Category, 0, len(categories))
	for _, name := range categories {
		c, ok := catalog.ParseCategory(name)
		if !ok {
			return nil, nil, "", fmt.Errorf("unknown category %q", name)
		}
		cats = append(cats, c)
	}

	order := filter.DefaultSort
	if sortFlag != "" {
		parsed, ok := filter.ParseSortOrder(sortFlag)
		if !ok {
			names := make([]string, len(filter.SortOrders))
			for i, o := range filter.SortOrders {
				names[i] = string(o)
			}
			return nil, nil, "", fmt.Errorf("unknown sort order %q (want one of: %s)", sortFlag, strings.Join(names, ", "))
		}
		order = parsed
	}

	feats := make([]string, 0, len(features))
	for _, f := range features {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			feats = append(feats, f)
		}
	}

	return cats, feats, order, nil
}
