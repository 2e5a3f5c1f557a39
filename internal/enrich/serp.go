package enrich

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hoxtonmix/seo-api/internal/seo"
	"github.com/hoxtonmix/seo-api/internal/telemetry"
)

// SerpRequest selects stored keywords for SERP enrichment.
type SerpRequest struct {
	KeywordIDs []int64 `json:"keyword_ids"`
}

// SerpResultItem is one organic result annotated with domain matching.
type SerpResultItem struct {
	Position int    `json:"position"`
	URL      string `json:"url"`
	Domain   string `json:"domain"`
	Title    string `json:"title,omitempty"`
	IsHoxton bool   `json:"is_hoxton"`
}

// SerpSummary is one entry of the flat SERP response. Error is set when the
// provider call for this keyword failed; the rest of the batch is unaffected.
type SerpSummary struct {
	KeywordID         int64            `json:"keyword_id"`
	Keyword           string           `json:"keyword"`
	Country           string           `json:"country"`
	Results           []SerpResultItem `json:"results,omitempty"`
	HoxtonPosition    *int             `json:"hoxton_position,omitempty"`
	CompetitorMatches int              `json:"competitor_matches"`
	Error             string           `json:"error,omitempty"`
}

// EnrichSERP fetches organic rankings keyword by keyword. One keyword's
// provider failure produces an error entry and processing continues.
// Ranking rows accumulate across the request and are persisted in two
// batched writes at the end; write failures are logged and swallowed.
func (e *Enricher) EnrichSERP(ctx context.Context, req SerpRequest) ([]SerpSummary, error) {
	entries, err := e.resolveWorkingSet(ctx, req.KeywordIDs, nil, e.opts.SerpMax)
	if err != nil {
		return nil, err
	}

	competitors, err := e.store.ListCompetitors(ctx)
	if err != nil {
		return nil, err
	}
	competitorsByDomain := make(map[string]seo.Competitor, len(competitors))
	for _, c := range competitors {
		competitorsByDomain[c.Domain] = c
	}

	fetchedAt := time.Now().UTC()
	summaries := []SerpSummary{}
	var serpRows []seo.SerpRanking
	var competitorRows []seo.CompetitorRanking

	for _, en := range entries {
		summary := SerpSummary{KeywordID: en.ID, Keyword: en.Text, Country: en.Country}

		items, err := e.provider.SerpResults(ctx, en.Text, seo.LocationCode(en.Country))
		if err != nil {
			summary.Error = err.Error()
			summaries = append(summaries, summary)
			telemetry.ObserveEnrichment("serp", "error")
			e.logger.Warn("serp fetch failed",
				zap.String("keyword", en.Text),
				zap.String("country", en.Country),
				zap.Error(err),
			)
			continue
		}

		for _, item := range items {
			domain := seo.NormalizeDomain(item.URL)
			isHoxton := seo.IsPrimaryDomain(domain, e.opts.PrimaryDomain)

			resultItem := SerpResultItem{
				Position: item.Position,
				URL:      item.URL,
				Domain:   domain,
				Title:    item.Title,
				IsHoxton: isHoxton,
			}
			summary.Results = append(summary.Results, resultItem)
			if isHoxton && summary.HoxtonPosition == nil {
				pos := item.Position
				summary.HoxtonPosition = &pos
			}

			serpRows = append(serpRows, seo.SerpRanking{
				KeywordID: en.ID,
				Position:  item.Position,
				URL:       item.URL,
				Domain:    domain,
				Title:     item.Title,
				IsHoxton:  isHoxton,
				FetchedAt: fetchedAt,
			})

			if competitor, ok := competitorsByDomain[domain]; ok {
				summary.CompetitorMatches++
				competitorRows = append(competitorRows, seo.CompetitorRanking{
					KeywordID:    en.ID,
					CompetitorID: competitor.ID,
					Position:     item.Position,
					URL:          item.URL,
					FetchedAt:    fetchedAt,
				})
			}
		}

		summaries = append(summaries, summary)
		telemetry.ObserveEnrichment("serp", "ok")
	}

	if err := e.store.InsertSerpRankings(ctx, serpRows); err != nil {
		e.logger.Warn("serp rankings insert failed", zap.Int("rows", len(serpRows)), zap.Error(err))
	}
	if err := e.store.InsertCompetitorRankings(ctx, competitorRows); err != nil {
		e.logger.Warn("competitor rankings insert failed", zap.Int("rows", len(competitorRows)), zap.Error(err))
	}

	return summaries, nil
}
