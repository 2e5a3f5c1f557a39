package enrich

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hoxtonmix/seo-api/internal/seo"
	"github.com/hoxtonmix/seo-api/internal/telemetry"
)

// MetricsRequest selects the keywords to enrich: stored ids or inline pairs,
// never both required, at least one present.
type MetricsRequest struct {
	KeywordIDs []int64         `json:"keyword_ids"`
	Keywords   []InlineKeyword `json:"keywords"`
}

// MetricsResult is one entry of the flat enrichment response. KeywordID is
// zero for ephemeral inline keywords.
type MetricsResult struct {
	KeywordID    int64   `json:"keyword_id,omitempty"`
	Keyword      string  `json:"keyword"`
	Country      string  `json:"country"`
	SearchVolume int     `json:"search_volume"`
	Difficulty   float64 `json:"difficulty"`
	CPC          float64 `json:"cpc"`
	Competition  float64 `json:"competition"`
}

// EnrichMetrics fetches search-volume metrics for the working set, one
// batched provider call per country group. A provider failure fails the
// whole request; a persistence failure is logged and swallowed.
func (e *Enricher) EnrichMetrics(ctx context.Context, req MetricsRequest) ([]MetricsResult, error) {
	entries, err := e.resolveWorkingSet(ctx, req.KeywordIDs, req.Keywords, e.opts.MetricsMax)
	if err != nil {
		return nil, err
	}

	fetchedAt := time.Now().UTC()
	results := []MetricsResult{}
	for _, group := range partitionByCountry(entries) {
		texts := make([]string, len(group.Entries))
		for i, en := range group.Entries {
			texts[i] = en.Text
		}

		records, err := e.provider.SearchVolume(ctx, texts, seo.LocationCode(group.Country))
		if err != nil {
			if seo.AsError(err) != nil {
				return nil, err
			}
			return nil, seo.NewExternal("search volume fetch failed", err)
		}

		for _, rec := range records {
			matched, ok := matchEntry(group.Entries, rec.Keyword)
			if ok && matched.ID != 0 {
				metric := seo.KeywordMetric{
					KeywordID:    matched.ID,
					SearchVolume: rec.SearchVolume,
					Difficulty:   rec.Difficulty,
					CPC:          rec.CPC,
					Competition:  rec.Competition,
					FetchedAt:    fetchedAt,
				}
				if err := e.store.InsertKeywordMetric(ctx, metric); err != nil {
					// Persistence is best-effort; the response still carries
					// the fetched values.
					e.logger.Warn("keyword metric insert failed",
						zap.Int64("keyword_id", matched.ID),
						zap.Error(err),
					)
				}
			}

			result := MetricsResult{
				Keyword:      rec.Keyword,
				Country:      group.Country,
				SearchVolume: rec.SearchVolume,
				Difficulty:   rec.Difficulty,
				CPC:          rec.CPC,
				Competition:  rec.Competition,
			}
			if ok {
				result.KeywordID = matched.ID
			}
			results = append(results, result)
			telemetry.ObserveEnrichment("metrics", "ok")
		}
	}
	return results, nil
}
