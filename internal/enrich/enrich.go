// Package enrich implements the enrichment pipeline: it resolves a request
// into a working set of keywords, partitions it by country, fetches metrics
// or SERP data from the provider, and reconciles the results against stored
// rows.
package enrich

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hoxtonmix/seo-api/internal/provider/dataforseo"
	"github.com/hoxtonmix/seo-api/internal/seo"
)

// Store is the persistence surface the pipeline needs.
type Store interface {
	GetKeywordsByIDs(ctx context.Context, ids []int64) ([]seo.Keyword, error)
	InsertKeywordMetric(ctx context.Context, m seo.KeywordMetric) error
	ListCompetitors(ctx context.Context) ([]seo.Competitor, error)
	InsertSerpRankings(ctx context.Context, rankings []seo.SerpRanking) error
	InsertCompetitorRankings(ctx context.Context, rankings []seo.CompetitorRanking) error
}

// Provider is the metrics/SERP data source.
type Provider interface {
	SearchVolume(ctx context.Context, keywords []string, locationCode int) ([]dataforseo.MetricsRecord, error)
	SerpResults(ctx context.Context, keyword string, locationCode int) ([]dataforseo.SerpItem, error)
}

// Options carry the per-deployment knobs.
type Options struct {
	PrimaryDomain  string
	DefaultCountry string
	MetricsMax     int
	SerpMax        int
}

// Enricher orchestrates both enrichment variants.
type Enricher struct {
	store    Store
	provider Provider
	opts     Options
	logger   *zap.Logger
}

// New constructs an Enricher.
func New(store Store, provider Provider, opts Options, logger *zap.Logger) *Enricher {
	if opts.DefaultCountry == "" {
		opts.DefaultCountry = seo.DefaultCountry
	}
	return &Enricher{store: store, provider: provider, opts: opts, logger: logger}
}

// InlineKeyword is an ephemeral keyword given directly in the request body.
type InlineKeyword struct {
	Text    string `json:"text"`
	Country string `json:"country"`
}

// entry is one member of the working set. ID zero marks an ephemeral
// keyword that is never persisted.
type entry struct {
	ID      int64
	Text    string
	Country string
}

// resolveWorkingSet turns keyword ids or inline pairs into the working set.
// Unresolved ids are silently dropped; the caller gets a validation error
// when nothing usable remains or the cap is exceeded.
func (e *Enricher) resolveWorkingSet(
	ctx context.Context,
	ids []int64,
	inline []InlineKeyword,
	maxEntries int,
) ([]entry, error) {
	if len(ids) == 0 && len(inline) == 0 {
		return nil, seo.NewValidation("either keyword_ids or keywords must be provided")
	}
	if len(ids) > maxEntries || len(inline) > maxEntries {
		return nil, seo.NewValidation("a maximum of %d keywords is allowed per request", maxEntries)
	}

	var entries []entry
	if len(ids) > 0 {
		stored, err := e.store.GetKeywordsByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, k := range stored {
			entries = append(entries, entry{ID: k.ID, Text: k.Text, Country: k.Country})
		}
	} else {
		for _, k := range inline {
			country := k.Country
			if country == "" {
				country = e.opts.DefaultCountry
			}
			entries = append(entries, entry{Text: k.Text, Country: country})
		}
	}

	if len(entries) == 0 {
		return nil, seo.NewValidation("no keywords resolved from the request")
	}
	return entries, nil
}

// countryGroup is one partition of the working set.
type countryGroup struct {
	Country string
	Entries []entry
}

// partitionByCountry groups entries by country code, preserving the order of
// first occurrence across groups and the original relative order within each
// group.
func partitionByCountry(entries []entry) []countryGroup {
	index := map[string]int{}
	groups := []countryGroup{}
	for _, en := range entries {
		i, ok := index[en.Country]
		if !ok {
			i = len(groups)
			index[en.Country] = i
			groups = append(groups, countryGroup{Country: en.Country})
		}
		groups[i].Entries = append(groups[i].Entries, en)
	}
	return groups
}

// matchEntry finds the first group entry whose text equals the provider
// keyword, case-insensitively. Duplicate texts within a group resolve to the
// first entry.
func matchEntry(entries []entry, keyword string) (entry, bool) {
	for _, en := range entries {
		if strings.EqualFold(en.Text, keyword) {
			return en, true
		}
	}
	return entry{}, false
}
