package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/hoxtonmix/seo-api/internal/enrich"
	"github.com/hoxtonmix/seo-api/internal/seo"
)

const (
	keywordBatchMax    = 1000
	keywordListDefault = 100
	keywordListMax     = 500
)

func (s *Server) listPages(w http.ResponseWriter, r *http.Request) {
	var cluster *string
	if v := r.URL.Query().Get("cluster"); v != "" {
		cluster = &v
	}
	var level *int
	if v := r.URL.Query().Get("level"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeFailure(w, seo.NewValidation("level must be an integer"))
			return
		}
		level = &n
	}

	pages, err := s.store.ListPages(r.Context(), cluster, level)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeList(w, pages, len(pages))
}

func (s *Server) createPage(w http.ResponseWriter, r *http.Request) {
	var page seo.Page
	if err := json.NewDecoder(r.Body).Decode(&page); err != nil {
		s.writeFailure(w, seo.NewValidation("invalid JSON body"))
		return
	}
	if page.Name == "" || page.URL == "" {
		s.writeFailure(w, seo.NewValidation("name and url are required"))
		return
	}

	created, err := s.store.CreatePage(r.Context(), page)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeSuccess(w, http.StatusCreated, created)
}

type importPagesRequest struct {
	Pages []seo.Page `json:"pages"`
}

func (s *Server) importPages(w http.ResponseWriter, r *http.Request) {
	var req importPagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, seo.NewValidation("invalid JSON body"))
		return
	}
	if len(req.Pages) == 0 {
		s.writeFailure(w, seo.NewValidation("pages must not be empty"))
		return
	}
	for i, p := range req.Pages {
		if p.Name == "" || p.URL == "" {
			s.writeFailure(w, seo.NewValidation("pages[%d]: name and url are required", i))
			return
		}
	}

	upserted := make([]seo.Page, 0, len(req.Pages))
	for _, p := range req.Pages {
		page, err := s.store.UpsertPage(r.Context(), p)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		upserted = append(upserted, page)
	}
	s.writeList(w, upserted, len(upserted))
}

func (s *Server) listKeywords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var country, cluster *string
	if v := q.Get("country"); v != "" {
		country = &v
	}
	if v := q.Get("cluster"); v != "" {
		cluster = &v
	}
	var pageID *int64
	if v := q.Get("page_id"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.writeFailure(w, seo.NewValidation("page_id must be an integer"))
			return
		}
		pageID = &n
	}

	limit := keywordListDefault
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeFailure(w, seo.NewValidation("limit must be a positive integer"))
			return
		}
		if n > keywordListMax {
			n = keywordListMax
		}
		limit = n
	}
	offset := 0
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeFailure(w, seo.NewValidation("offset must be a non-negative integer"))
			return
		}
		offset = n
	}

	keywords, err := s.store.ListKeywords(r.Context(), country, cluster, pageID, limit, offset)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeList(w, keywords, len(keywords))
}

type batchKeywordsRequest struct {
	Keywords []string `json:"keywords"`
	Country  string   `json:"country"`
	Cluster  string   `json:"cluster"`
	PageID   *int64   `json:"page_id"`
}

func (s *Server) batchKeywords(w http.ResponseWriter, r *http.Request) {
	var req batchKeywordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, seo.NewValidation("invalid JSON body"))
		return
	}
	if len(req.Keywords) == 0 {
		s.writeFailure(w, seo.NewValidation("keywords must not be empty"))
		return
	}
	if len(req.Keywords) > keywordBatchMax {
		s.writeFailure(w, seo.NewValidation("a maximum of %d keywords is allowed per batch", keywordBatchMax))
		return
	}
	if req.Country == "" {
		s.writeFailure(w, seo.NewValidation("country is required"))
		return
	}

	// Duplicates in the batch collapse onto one row. The dedup key matches
	// the stored uniqueness on (keyword_text, country), which is
	// case-sensitive.
	seen := map[string]bool{}
	upserted := []seo.Keyword{}
	for _, text := range req.Keywords {
		text = strings.TrimSpace(text)
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true

		keyword, err := s.store.UpsertKeyword(r.Context(), seo.Keyword{
			Text:    text,
			Country: req.Country,
			Cluster: req.Cluster,
			PageID:  req.PageID,
		})
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		upserted = append(upserted, keyword)
	}
	if len(upserted) == 0 {
		s.writeFailure(w, seo.NewValidation("keywords must contain at least one non-empty entry"))
		return
	}
	s.writeList(w, upserted, len(upserted))
}

func (s *Server) listCompetitors(w http.ResponseWriter, r *http.Request) {
	competitors, err := s.store.ListCompetitors(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeList(w, competitors, len(competitors))
}

func (s *Server) createCompetitor(w http.ResponseWriter, r *http.Request) {
	var competitor seo.Competitor
	if err := json.NewDecoder(r.Body).Decode(&competitor); err != nil {
		s.writeFailure(w, seo.NewValidation("invalid JSON body"))
		return
	}
	if competitor.Domain == "" {
		s.writeFailure(w, seo.NewValidation("domain is required"))
		return
	}
	competitor.Domain = seo.NormalizeDomain(competitor.Domain)

	created, err := s.store.CreateCompetitor(r.Context(), competitor)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeSuccess(w, http.StatusCreated, created)
}

func (s *Server) enrichKeywords(w http.ResponseWriter, r *http.Request) {
	var req enrich.MetricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, seo.NewValidation("invalid JSON body"))
		return
	}

	results, err := s.enricher.EnrichMetrics(r.Context(), req)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeList(w, results, len(results))
}

func (s *Server) enrichSERP(w http.ResponseWriter, r *http.Request) {
	var req enrich.SerpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, seo.NewValidation("invalid JSON body"))
		return
	}

	summaries, err := s.enricher.EnrichSERP(r.Context(), req)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeList(w, summaries, len(summaries))
}
