package postgres

import (
	"context"
	"fmt"

	"github.com/hoxtonmix/seo-api/internal/seo"
)

// EnsureSchema applies the reference DDL. Idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const pageColumns = `id, name, url, cluster, level, parent_link, sibling_links, cross_cluster_link, content_focus, created_at`

// CreatePage inserts a single page and returns it with its generated fields.
func (s *Store) CreatePage(ctx context.Context, p seo.Page) (seo.Page, error) {
	query := `
		INSERT INTO pages (name, url, cluster, level, parent_link, sibling_links, cross_cluster_link, content_focus)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + pageColumns
	row := s.db.QueryRow(ctx, query,
		p.Name, p.URL, p.Cluster, p.Level,
		p.ParentLink, p.SiblingLinks, p.CrossClusterLink, p.ContentFocus,
	)
	created, err := scanPage(row)
	if err != nil {
		return seo.Page{}, translateError(err, "page")
	}
	return created, nil
}

// UpsertPage inserts a page or, on a url conflict, updates the stored row.
// Used by the bulk import endpoint.
func (s *Store) UpsertPage(ctx context.Context, p seo.Page) (seo.Page, error) {
	query := `
		INSERT INTO pages (name, url, cluster, level, parent_link, sibling_links, cross_cluster_link, content_focus)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (url) DO UPDATE SET
			name = EXCLUDED.name,
			cluster = EXCLUDED.cluster,
			level = EXCLUDED.level,
			parent_link = EXCLUDED.parent_link,
			sibling_links = EXCLUDED.sibling_links,
			cross_cluster_link = EXCLUDED.cross_cluster_link,
			content_focus = EXCLUDED.content_focus
		RETURNING ` + pageColumns
	row := s.db.QueryRow(ctx, query,
		p.Name, p.URL, p.Cluster, p.Level,
		p.ParentLink, p.SiblingLinks, p.CrossClusterLink, p.ContentFocus,
	)
	upserted, err := scanPage(row)
	if err != nil {
		return seo.Page{}, translateError(err, "page")
	}
	return upserted, nil
}

// ListPages returns pages filtered by cluster and/or level, ordered by
// cluster then level.
func (s *Store) ListPages(ctx context.Context, cluster *string, level *int) ([]seo.Page, error) {
	query := `
		SELECT ` + pageColumns + `
		FROM pages
		WHERE ($1::text IS NULL OR cluster = $1)
		  AND ($2::int IS NULL OR level = $2)
		ORDER BY cluster, level, id`
	rows, err := s.db.Query(ctx, query, cluster, level)
	if err != nil {
		return nil, translateError(err, "pages")
	}
	defer rows.Close()

	pages := []seo.Page{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, translateError(err, "pages")
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "pages")
	}
	return pages, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (seo.Page, error) {
	var p seo.Page
	err := row.Scan(
		&p.ID, &p.Name, &p.URL, &p.Cluster, &p.Level,
		&p.ParentLink, &p.SiblingLinks, &p.CrossClusterLink, &p.ContentFocus,
		&p.CreatedAt,
	)
	if err != nil {
		return seo.Page{}, fmt.Errorf("scan page row: %w", err)
	}
	return p, nil
}
