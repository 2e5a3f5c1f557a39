package postgres

import (
	"context"
	"fmt"

	"github.com/hoxtonmix/seo-api/internal/seo"
)

// UpsertKeyword inserts a keyword or updates cluster/page assignment when
// the (text, country) pair already exists. Duplicate pairs in one batch
// collapse onto the same row.
func (s *Store) UpsertKeyword(ctx context.Context, k seo.Keyword) (seo.Keyword, error) {
	query := `
		INSERT INTO keywords (keyword_text, country, cluster, page_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (keyword_text, country) DO UPDATE SET
			cluster = EXCLUDED.cluster,
			page_id = COALESCE(EXCLUDED.page_id, keywords.page_id)
		RETURNING id, keyword_text, country, cluster, page_id`
	var out seo.Keyword
	err := s.db.QueryRow(ctx, query, k.Text, k.Country, k.Cluster, k.PageID).
		Scan(&out.ID, &out.Text, &out.Country, &out.Cluster, &out.PageID)
	if err != nil {
		return seo.Keyword{}, translateError(err, "keyword")
	}
	return out, nil
}

// ListKeywords returns keywords joined with their page summary, filtered by
// country, cluster, and page.
func (s *Store) ListKeywords(
	ctx context.Context,
	country, cluster *string,
	pageID *int64,
	limit, offset int,
) ([]seo.Keyword, error) {
	query := `
		SELECT k.id, k.keyword_text, k.country, k.cluster, k.page_id,
		       COALESCE(p.name, ''), COALESCE(p.url, '')
		FROM keywords k
		LEFT JOIN pages p ON k.page_id = p.id
		WHERE ($1::text IS NULL OR k.country = $1)
		  AND ($2::text IS NULL OR k.cluster = $2)
		  AND ($3::bigint IS NULL OR k.page_id = $3)
		ORDER BY k.id
		LIMIT $4 OFFSET $5`
	rows, err := s.db.Query(ctx, query, country, cluster, pageID, limit, offset)
	if err != nil {
		return nil, translateError(err, "keywords")
	}
	defer rows.Close()

	keywords := []seo.Keyword{}
	for rows.Next() {
		var k seo.Keyword
		err := rows.Scan(&k.ID, &k.Text, &k.Country, &k.Cluster, &k.PageID, &k.PageName, &k.PageURL)
		if err != nil {
			return nil, translateError(fmt.Errorf("scan keyword row: %w", err), "keywords")
		}
		keywords = append(keywords, k)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "keywords")
	}
	return keywords, nil
}

// GetKeywordsByIDs resolves stored keywords by id. Unknown ids are simply
// not returned; callers treat the result as the working set.
func (s *Store) GetKeywordsByIDs(ctx context.Context, ids []int64) ([]seo.Keyword, error) {
	if len(ids) == 0 {
		return []seo.Keyword{}, nil
	}
	query := `
		SELECT id, keyword_text, country, cluster, page_id
		FROM keywords
		WHERE id = ANY($1)
		ORDER BY array_position($1, id)`
	rows, err := s.db.Query(ctx, query, ids)
	if err != nil {
		return nil, translateError(err, "keywords")
	}
	defer rows.Close()

	keywords := []seo.Keyword{}
	for rows.Next() {
		var k seo.Keyword
		if err := rows.Scan(&k.ID, &k.Text, &k.Country, &k.Cluster, &k.PageID); err != nil {
			return nil, translateError(fmt.Errorf("scan keyword row: %w", err), "keywords")
		}
		keywords = append(keywords, k)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "keywords")
	}
	return keywords, nil
}
