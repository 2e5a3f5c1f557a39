package dataforseo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hoxtonmix/seo-api/internal/seo"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{Login: "login", Password: "password", BaseURL: srv.URL}, zap.NewNop())
}

func TestSearchVolumeSendsBatchedTask(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotTasks []map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		login, password, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "login", login)
		require.Equal(t, "password", password)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotTasks))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status_code": 20000,
			"tasks": [{
				"status_code": 20000,
				"result": [
					{"keyword": "virtual office london", "search_volume": 1900, "cpc": 1.8, "competition": 0.64, "keyword_difficulty": 42.5},
					{"keyword": "registered office address", "search_volume": null, "cpc": null}
				]
			}]
		}`))
	})

	records, err := client.SearchVolume(context.Background(),
		[]string{"virtual office london", "registered office address"}, 2826)
	require.NoError(t, err)
	require.Equal(t, "/v3/keywords_data/google_ads/search_volume/live", gotPath)
	require.Len(t, gotTasks, 1)
	require.Equal(t, float64(2826), gotTasks[0]["location_code"])

	require.Len(t, records, 2)
	require.Equal(t, 1900, records[0].SearchVolume)
	require.Equal(t, 42.5, records[0].Difficulty)

	// Missing numerics come back as zero, never null.
	require.Equal(t, 0, records[1].SearchVolume)
	require.Equal(t, 0.0, records[1].CPC)
	require.Equal(t, 0.0, records[1].Competition)
}

func TestSerpResultsFiltersOrganicItems(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status_code": 20000,
			"tasks": [{
				"status_code": 20000,
				"result": [{
					"items": [
						{"type": "paid", "rank_absolute": 1, "url": "https://ads.example.com"},
						{"type": "organic", "rank_absolute": 2, "url": "https://hoxtonmix.com/virtual-office", "title": "Virtual Office"},
						{"type": "organic", "rank_absolute": 3, "url": "https://example.com/office", "title": "Office Space"}
					]
				}]
			}]
		}`))
	})

	items, err := client.SerpResults(context.Background(), "virtual office london", 2826)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, 2, items[0].Position)
	require.Equal(t, "https://hoxtonmix.com/virtual-office", items[0].URL)
}

func TestPostFailsWithoutCredentials(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{BaseURL: "https://api.dataforseo.com"}, zap.NewNop())
	_, err := client.SearchVolume(context.Background(), []string{"kw"}, 2826)

	domainErr := seo.AsError(err)
	require.NotNil(t, domainErr)
	require.Equal(t, seo.KindExternal, domainErr.Kind)
	require.Contains(t, domainErr.Message, "credentials")
}

func TestPostFailsOnHTTPError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.SearchVolume(context.Background(), []string{"kw"}, 2826)
	domainErr := seo.AsError(err)
	require.NotNil(t, domainErr)
	require.Equal(t, seo.KindExternal, domainErr.Kind)
}

func TestPostFailsOnProviderStatus(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status_code": 40101, "status_message": "auth failed", "tasks": []}`))
	})

	_, err := client.SerpResults(context.Background(), "kw", 2826)
	domainErr := seo.AsError(err)
	require.NotNil(t, domainErr)
	require.Equal(t, seo.KindExternal, domainErr.Kind)
	require.Contains(t, domainErr.Message, "40101")
}
