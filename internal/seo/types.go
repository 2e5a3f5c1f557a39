// Package seo defines the domain model shared across the API, the stores,
// and the enrichment pipeline.
package seo

import "time"

// Page is a piece of site content the marketing team tracks. Pages form
// clusters with internal linking metadata between them.
type Page struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	URL              string    `json:"url"`
	Cluster          string    `json:"cluster,omitempty"`
	Level            int       `json:"level"`
	ParentLink       string    `json:"parent_link,omitempty"`
	SiblingLinks     string    `json:"sibling_links,omitempty"`
	CrossClusterLink string    `json:"cross_cluster_link,omitempty"`
	ContentFocus     string    `json:"content_focus,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Keyword is a search term tracked for a specific country, optionally
// assigned to a page. The (text, country) pair is unique.
type Keyword struct {
	ID      int64  `json:"id"`
	Text    string `json:"keyword"`
	Country string `json:"country"`
	Cluster string `json:"cluster,omitempty"`
	PageID  *int64 `json:"page_id,omitempty"`

	// Page summary fields populated by the joined list query.
	PageName string `json:"page_name,omitempty"`
	PageURL  string `json:"page_url,omitempty"`
}

// KeywordMetric is an append-only snapshot of provider metrics for a stored
// keyword. The latest row by FetchedAt is the current value.
type KeywordMetric struct {
	ID           int64     `json:"id"`
	KeywordID    int64     `json:"keyword_id"`
	SearchVolume int       `json:"search_volume"`
	Difficulty   float64   `json:"difficulty"`
	CPC          float64   `json:"cpc"`
	Competition  float64   `json:"competition"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Competitor is a tracked third-party domain. Domain is stored lower-cased
// without scheme or trailing slash.
type Competitor struct {
	ID     int64  `json:"id"`
	Domain string `json:"domain"`
	Name   string `json:"name,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// SerpRanking is one organic result item from a SERP fetch, append-only.
type SerpRanking struct {
	ID        int64     `json:"id"`
	KeywordID int64     `json:"keyword_id"`
	Position  int       `json:"position"`
	URL       string    `json:"url"`
	Domain    string    `json:"domain"`
	Title     string    `json:"title,omitempty"`
	IsHoxton  bool      `json:"is_hoxton"`
	FetchedAt time.Time `json:"fetched_at"`
}

// CompetitorRanking records a SERP result whose domain matched a tracked
// competitor, append-only.
type CompetitorRanking struct {
	ID           int64     `json:"id"`
	KeywordID    int64     `json:"keyword_id"`
	CompetitorID int64     `json:"competitor_id"`
	Position     int       `json:"position"`
	URL          string    `json:"url"`
	FetchedAt    time.Time `json:"fetched_at"`
}
