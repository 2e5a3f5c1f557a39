package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hoxtonmix/seo-api/internal/seo"
)

// InsertKeywordMetric appends one metric snapshot for a stored keyword.
func (s *Store) InsertKeywordMetric(ctx context.Context, m seo.KeywordMetric) error {
	query := `
		INSERT INTO keyword_metrics (keyword_id, search_volume, difficulty, cpc, competition, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.Exec(ctx, query,
		m.KeywordID, m.SearchVolume, m.Difficulty, m.CPC, m.Competition, m.FetchedAt,
	)
	return translateError(err, "keyword metric")
}

// InsertSerpRankings appends all accumulated SERP rows in a single statement.
func (s *Store) InsertSerpRankings(ctx context.Context, rankings []seo.SerpRanking) error {
	if len(rankings) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO serp_rankings (keyword_id, position, url, domain, title, is_hoxton, fetched_at) VALUES `)
	args := make([]any, 0, len(rankings)*7)
	for i, r := range rankings {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 7
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		args = append(args, r.KeywordID, r.Position, r.URL, r.Domain, r.Title, r.IsHoxton, r.FetchedAt)
	}
	_, err := s.db.Exec(ctx, sb.String(), args...)
	return translateError(err, "serp rankings")
}

// InsertCompetitorRankings appends all accumulated competitor rows in a
// single statement.
func (s *Store) InsertCompetitorRankings(ctx context.Context, rankings []seo.CompetitorRanking) error {
	if len(rankings) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO competitor_rankings (keyword_id, competitor_id, position, url, fetched_at) VALUES `)
	args := make([]any, 0, len(rankings)*5)
	for i, r := range rankings {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 5
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5)
		args = append(args, r.KeywordID, r.CompetitorID, r.Position, r.URL, r.FetchedAt)
	}
	_, err := s.db.Exec(ctx, sb.String(), args...)
	return translateError(err, "competitor rankings")
}
