package postgres

import (
	"context"
	"fmt"

	"github.com/hoxtonmix/seo-api/internal/seo"
)

// CreateCompetitor inserts a competitor. The caller normalizes the domain
// before persisting.
func (s *Store) CreateCompetitor(ctx context.Context, c seo.Competitor) (seo.Competitor, error) {
	query := `
		INSERT INTO competitors (domain, name, notes)
		VALUES ($1, $2, $3)
		RETURNING id, domain, name, notes`
	var out seo.Competitor
	err := s.db.QueryRow(ctx, query, c.Domain, c.Name, c.Notes).
		Scan(&out.ID, &out.Domain, &out.Name, &out.Notes)
	if err != nil {
		return seo.Competitor{}, translateError(err, "competitor")
	}
	return out, nil
}

// ListCompetitors returns all tracked competitors ordered by domain.
func (s *Store) ListCompetitors(ctx context.Context) ([]seo.Competitor, error) {
	query := `SELECT id, domain, name, notes FROM competitors ORDER BY domain`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, translateError(err, "competitors")
	}
	defer rows.Close()

	competitors := []seo.Competitor{}
	for rows.Next() {
		var c seo.Competitor
		if err := rows.Scan(&c.ID, &c.Domain, &c.Name, &c.Notes); err != nil {
			return nil, translateError(fmt.Errorf("scan competitor row: %w", err), "competitors")
		}
		competitors = append(competitors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "competitors")
	}
	return competitors, nil
}
