package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hoxtonmix/seo-api/internal/provider/dataforseo"
	"github.com/hoxtonmix/seo-api/internal/seo"
)

type fakeStore struct {
	keywords    map[int64]seo.Keyword
	competitors []seo.Competitor

	insertedMetrics    []seo.KeywordMetric
	metricInsertErr    error
	serpRows           []seo.SerpRanking
	serpInsertCalls    int
	serpInsertErr      error
	competitorRows     []seo.CompetitorRanking
	compInsertCalls    int
	competitorsListErr error
}

func (f *fakeStore) GetKeywordsByIDs(_ context.Context, ids []int64) ([]seo.Keyword, error) {
	out := []seo.Keyword{}
	for _, id := range ids {
		if k, ok := f.keywords[id]; ok {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertKeywordMetric(_ context.Context, m seo.KeywordMetric) error {
	if f.metricInsertErr != nil {
		return f.metricInsertErr
	}
	f.insertedMetrics = append(f.insertedMetrics, m)
	return nil
}

func (f *fakeStore) ListCompetitors(_ context.Context) ([]seo.Competitor, error) {
	if f.competitorsListErr != nil {
		return nil, f.competitorsListErr
	}
	return f.competitors, nil
}

func (f *fakeStore) InsertSerpRankings(_ context.Context, rows []seo.SerpRanking) error {
	f.serpInsertCalls++
	if f.serpInsertErr != nil {
		return f.serpInsertErr
	}
	f.serpRows = append(f.serpRows, rows...)
	return nil
}

func (f *fakeStore) InsertCompetitorRankings(_ context.Context, rows []seo.CompetitorRanking) error {
	f.compInsertCalls++
	f.competitorRows = append(f.competitorRows, rows...)
	return nil
}

type volumeCall struct {
	keywords []string
	location int
}

type fakeProvider struct {
	volumeCalls   []volumeCall
	volumeRecords map[int][]dataforseo.MetricsRecord
	volumeErr     error

	serpItems map[string][]dataforseo.SerpItem
	serpErrs  map[string]error
}

func (f *fakeProvider) SearchVolume(_ context.Context, keywords []string, locationCode int) ([]dataforseo.MetricsRecord, error) {
	f.volumeCalls = append(f.volumeCalls, volumeCall{keywords: keywords, location: locationCode})
	if f.volumeErr != nil {
		return nil, f.volumeErr
	}
	return f.volumeRecords[locationCode], nil
}

func (f *fakeProvider) SerpResults(_ context.Context, keyword string, _ int) ([]dataforseo.SerpItem, error) {
	if err, ok := f.serpErrs[keyword]; ok {
		return nil, err
	}
	return f.serpItems[keyword], nil
}

func newEnricher(store *fakeStore, provider *fakeProvider) *Enricher {
	return New(store, provider, Options{
		PrimaryDomain:  "hoxtonmix.com",
		DefaultCountry: "UK",
		MetricsMax:     100,
		SerpMax:        50,
	}, zap.NewNop())
}

func TestEnrichMetricsRequiresInput(t *testing.T) {
	t.Parallel()

	e := newEnricher(&fakeStore{}, &fakeProvider{})
	_, err := e.EnrichMetrics(context.Background(), MetricsRequest{})

	domainErr := seo.AsError(err)
	require.NotNil(t, domainErr)
	require.Equal(t, seo.KindValidation, domainErr.Kind)
}

func TestEnrichMetricsUnresolvedIDsFailValidation(t *testing.T) {
	t.Parallel()

	e := newEnricher(&fakeStore{keywords: map[int64]seo.Keyword{}}, &fakeProvider{})
	_, err := e.EnrichMetrics(context.Background(), MetricsRequest{KeywordIDs: []int64{1, 2, 3}})

	domainErr := seo.AsError(err)
	require.NotNil(t, domainErr)
	require.Equal(t, seo.KindValidation, domainErr.Kind)
	require.Contains(t, domainErr.Message, "no keywords resolved")
}

func TestEnrichMetricsEnforcesCapBeforeProviderCall(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	e := newEnricher(&fakeStore{}, provider)

	ids := make([]int64, 101)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	_, err := e.EnrichMetrics(context.Background(), MetricsRequest{KeywordIDs: ids})

	domainErr := seo.AsError(err)
	require.NotNil(t, domainErr)
	require.Equal(t, seo.KindValidation, domainErr.Kind)
	require.Contains(t, domainErr.Message, "100")
	require.Empty(t, provider.volumeCalls)
}

func TestEnrichMetricsPartitionsByCountry(t *testing.T) {
	t.Parallel()

	store := &fakeStore{keywords: map[int64]seo.Keyword{
		1: {ID: 1, Text: "virtual office london", Country: "UK"},
		2: {ID: 2, Text: "virtual office nyc", Country: "US"},
		3: {ID: 3, Text: "registered office address", Country: "UK"},
	}}
	provider := &fakeProvider{volumeRecords: map[int][]dataforseo.MetricsRecord{
		2826: {
			{Keyword: "virtual office london", SearchVolume: 1900},
			{Keyword: "registered office address", SearchVolume: 880},
		},
		2840: {
			{Keyword: "virtual office nyc", SearchVolume: 720},
		},
	}}
	e := newEnricher(store, provider)

	results, err := e.EnrichMetrics(context.Background(), MetricsRequest{KeywordIDs: []int64{1, 2, 3}})
	require.NoError(t, err)

	// Exactly one provider call per country, UK group order preserved.
	require.Len(t, provider.volumeCalls, 2)
	require.Equal(t, []string{"virtual office london", "registered office address"}, provider.volumeCalls[0].keywords)
	require.Equal(t, 2826, provider.volumeCalls[0].location)
	require.Equal(t, []string{"virtual office nyc"}, provider.volumeCalls[1].keywords)
	require.Equal(t, 2840, provider.volumeCalls[1].location)

	require.Len(t, results, 3)
	require.Equal(t, "UK", results[0].Country)
	require.Equal(t, "US", results[2].Country)
	require.Len(t, store.insertedMetrics, 3)
}

func TestEnrichMetricsInlineKeywordsAreNotPersisted(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	provider := &fakeProvider{volumeRecords: map[int][]dataforseo.MetricsRecord{
		2826: {{Keyword: "Virtual Office London", SearchVolume: 1900}},
	}}
	e := newEnricher(store, provider)

	results, err := e.EnrichMetrics(context.Background(), MetricsRequest{
		Keywords: []InlineKeyword{{Text: "virtual office london"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Case-insensitive match back to the inline entry; country defaulted.
	require.Equal(t, "UK", results[0].Country)
	require.Zero(t, results[0].KeywordID)
	require.Empty(t, store.insertedMetrics)
}

func TestEnrichMetricsProviderFailureIsFatal(t *testing.T) {
	t.Parallel()

	store := &fakeStore{keywords: map[int64]seo.Keyword{
		1: {ID: 1, Text: "virtual office london", Country: "UK"},
	}}
	provider := &fakeProvider{volumeErr: seo.NewExternal("provider returned status 500", nil)}
	e := newEnricher(store, provider)

	_, err := e.EnrichMetrics(context.Background(), MetricsRequest{KeywordIDs: []int64{1}})
	domainErr := seo.AsError(err)
	require.NotNil(t, domainErr)
	require.Equal(t, seo.KindExternal, domainErr.Kind)
}

func TestEnrichMetricsSwallowsPersistenceFailure(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		keywords: map[int64]seo.Keyword{
			1: {ID: 1, Text: "virtual office london", Country: "UK"},
		},
		metricInsertErr: errors.New("connection reset"),
	}
	provider := &fakeProvider{volumeRecords: map[int][]dataforseo.MetricsRecord{
		2826: {{Keyword: "virtual office london", SearchVolume: 1900}},
	}}
	e := newEnricher(store, provider)

	results, err := e.EnrichMetrics(context.Background(), MetricsRequest{KeywordIDs: []int64{1}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 1900, results[0].SearchVolume)
}

func TestEnrichSERPEnforcesCap(t *testing.T) {
	t.Parallel()

	e := newEnricher(&fakeStore{}, &fakeProvider{})
	ids := make([]int64, 51)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	_, err := e.EnrichSERP(context.Background(), SerpRequest{KeywordIDs: ids})

	domainErr := seo.AsError(err)
	require.NotNil(t, domainErr)
	require.Equal(t, seo.KindValidation, domainErr.Kind)
	require.Contains(t, domainErr.Message, "50")
}

func TestEnrichSERPPartialFailureIsScopedToKeyword(t *testing.T) {
	t.Parallel()

	store := &fakeStore{keywords: map[int64]seo.Keyword{
		1: {ID: 1, Text: "kw one", Country: "UK"},
		2: {ID: 2, Text: "kw two", Country: "UK"},
		3: {ID: 3, Text: "kw three", Country: "UK"},
	}}
	provider := &fakeProvider{
		serpItems: map[string][]dataforseo.SerpItem{
			"kw one":   {{Position: 1, URL: "https://example.com/a"}},
			"kw three": {{Position: 1, URL: "https://example.com/b"}},
		},
		serpErrs: map[string]error{
			"kw two": seo.NewExternal("provider returned status 500", nil),
		},
	}
	e := newEnricher(store, provider)

	summaries, err := e.EnrichSERP(context.Background(), SerpRequest{KeywordIDs: []int64{1, 2, 3}})
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	var failed, succeeded int
	for _, s := range summaries {
		if s.Error != "" {
			failed++
		} else {
			succeeded++
		}
	}
	require.Equal(t, 1, failed)
	require.Equal(t, 2, succeeded)
	require.Equal(t, "kw two", summaries[1].Keyword)
	require.NotEmpty(t, summaries[1].Error)
}

func TestEnrichSERPFlagsPrimaryAndCompetitorDomains(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		keywords: map[int64]seo.Keyword{
			1: {ID: 1, Text: "virtual office london", Country: "UK"},
		},
		competitors: []seo.Competitor{
			{ID: 9, Domain: "rival.co.uk", Name: "Rival"},
		},
	}
	provider := &fakeProvider{serpItems: map[string][]dataforseo.SerpItem{
		"virtual office london": {
			{Position: 1, URL: "https://www.Hoxtonmix.com/virtual-office", Title: "Virtual Office"},
			{Position: 2, URL: "https://rival.co.uk/offices", Title: "Rival Offices"},
			{Position: 3, URL: "https://unrelated.com", Title: "Other"},
		},
	}}
	e := newEnricher(store, provider)

	summaries, err := e.EnrichSERP(context.Background(), SerpRequest{KeywordIDs: []int64{1}})
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	require.Len(t, s.Results, 3)
	require.True(t, s.Results[0].IsHoxton)
	require.Equal(t, "hoxtonmix.com", s.Results[0].Domain)
	require.NotNil(t, s.HoxtonPosition)
	require.Equal(t, 1, *s.HoxtonPosition)
	require.Equal(t, 1, s.CompetitorMatches)

	// Batched persistence: one write per table for the whole request.
	require.Equal(t, 1, store.serpInsertCalls)
	require.Equal(t, 1, store.compInsertCalls)
	require.Len(t, store.serpRows, 3)
	require.Len(t, store.competitorRows, 1)
	require.Equal(t, int64(9), store.competitorRows[0].CompetitorID)
}

func TestEnrichSERPSwallowsPersistenceFailure(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		keywords: map[int64]seo.Keyword{
			1: {ID: 1, Text: "kw", Country: "UK"},
		},
		serpInsertErr: errors.New("connection reset"),
	}
	provider := &fakeProvider{serpItems: map[string][]dataforseo.SerpItem{
		"kw": {{Position: 1, URL: "https://example.com"}},
	}}
	e := newEnricher(store, provider)

	summaries, err := e.EnrichSERP(context.Background(), SerpRequest{KeywordIDs: []int64{1}})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Empty(t, summaries[0].Error)
}

func TestPartitionByCountryIsStable(t *testing.T) {
	t.Parallel()

	groups := partitionByCountry([]entry{
		{Text: "a", Country: "UK"},
		{Text: "b", Country: "US"},
		{Text: "c", Country: "UK"},
	})
	require.Len(t, groups, 2)
	require.Equal(t, "UK", groups[0].Country)
	require.Equal(t, "US", groups[1].Country)
	require.Equal(t, "a", groups[0].Entries[0].Text)
	require.Equal(t, "c", groups[0].Entries[1].Text)
}
