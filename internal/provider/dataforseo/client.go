// Package dataforseo implements the client for the keyword-volume and SERP
// data provider. Calls are batched live requests authenticated with the
// account login/password pair.
package dataforseo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hoxtonmix/seo-api/internal/seo"
	"github.com/hoxtonmix/seo-api/internal/telemetry"
)

const (
	searchVolumePath = "/v3/keywords_data/google_ads/search_volume/live"
	serpPath         = "/v3/serp/google/organic/live/advanced"

	// statusOK is the provider's "task succeeded" code.
	statusOK = 20000
)

// Config carries provider credentials and endpoint.
type Config struct {
	Login    string
	Password string
	BaseURL  string
}

// Client issues live requests against the provider API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient builds a Client. Credentials may be empty; their absence is
// reported on the first call, not here.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// MetricsRecord is one per-keyword search-volume result. Numeric fields are
// zero when the provider omits them.
type MetricsRecord struct {
	Keyword      string
	SearchVolume int
	Difficulty   float64
	CPC          float64
	Competition  float64
}

// SerpItem is one organic result from a live SERP fetch.
type SerpItem struct {
	Position int
	URL      string
	Title    string
}

type envelope struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Tasks         []task `json:"tasks"`
}

type task struct {
	StatusCode    int             `json:"status_code"`
	StatusMessage string          `json:"status_message"`
	Result        json.RawMessage `json:"result"`
}

type volumeResult struct {
	Keyword      string   `json:"keyword"`
	SearchVolume *int     `json:"search_volume"`
	Difficulty   *float64 `json:"keyword_difficulty"`
	CPC          *float64 `json:"cpc"`
	Competition  *float64 `json:"competition"`
}

type serpResult struct {
	Items []serpResultItem `json:"items"`
}

type serpResultItem struct {
	Type     string `json:"type"`
	Position int    `json:"rank_absolute"`
	URL      string `json:"url"`
	Title    string `json:"title"`
}

// SearchVolume fetches metrics for all keywords in one batched task keyed by
// location code.
func (c *Client) SearchVolume(ctx context.Context, keywords []string, locationCode int) ([]MetricsRecord, error) {
	payload := []map[string]any{{
		"keywords":      keywords,
		"location_code": locationCode,
		"language_code": "en",
	}}
	env, err := c.post(ctx, "search_volume", searchVolumePath, payload)
	if err != nil {
		return nil, err
	}

	records := []MetricsRecord{}
	for _, tk := range env.Tasks {
		if tk.StatusCode != statusOK {
			return nil, seo.NewExternal(
				fmt.Sprintf("search volume task failed: %s", tk.StatusMessage), nil)
		}
		var results []volumeResult
		if len(tk.Result) > 0 {
			if err := json.Unmarshal(tk.Result, &results); err != nil {
				return nil, seo.NewExternal("malformed search volume payload", err)
			}
		}
		for _, r := range results {
			records = append(records, MetricsRecord{
				Keyword:      r.Keyword,
				SearchVolume: intOrZero(r.SearchVolume),
				Difficulty:   floatOrZero(r.Difficulty),
				CPC:          floatOrZero(r.CPC),
				Competition:  floatOrZero(r.Competition),
			})
		}
	}
	return records, nil
}

// SerpResults fetches the organic results for a single keyword.
func (c *Client) SerpResults(ctx context.Context, keyword string, locationCode int) ([]SerpItem, error) {
	payload := []map[string]any{{
		"keyword":       keyword,
		"location_code": locationCode,
		"language_code": "en",
		"depth":         20,
	}}
	env, err := c.post(ctx, "serp", serpPath, payload)
	if err != nil {
		return nil, err
	}

	items := []SerpItem{}
	for _, tk := range env.Tasks {
		if tk.StatusCode != statusOK {
			return nil, seo.NewExternal(
				fmt.Sprintf("serp task failed: %s", tk.StatusMessage), nil)
		}
		var results []serpResult
		if len(tk.Result) > 0 {
			if err := json.Unmarshal(tk.Result, &results); err != nil {
				return nil, seo.NewExternal("malformed serp payload", err)
			}
		}
		for _, r := range results {
			for _, item := range r.Items {
				if item.Type != "organic" {
					continue
				}
				items = append(items, SerpItem{
					Position: item.Position,
					URL:      item.URL,
					Title:    item.Title,
				})
			}
		}
	}
	return items, nil
}

func (c *Client) post(ctx context.Context, endpoint, path string, payload any) (*envelope, error) {
	if c.cfg.Login == "" || c.cfg.Password == "" {
		return nil, seo.NewExternal("provider credentials are not configured", nil)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, seo.NewExternal("encode provider request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, seo.NewExternal("build provider request", err)
	}
	req.SetBasicAuth(c.cfg.Login, c.cfg.Password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		telemetry.ObserveProviderRequest(endpoint, "error")
		return nil, seo.NewExternal("provider request failed", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		telemetry.ObserveProviderRequest(endpoint, "error")
		return nil, seo.NewExternal(
			fmt.Sprintf("provider returned status %d", resp.StatusCode), nil)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		telemetry.ObserveProviderRequest(endpoint, "error")
		return nil, seo.NewExternal("decode provider response", err)
	}
	if env.StatusCode != statusOK {
		telemetry.ObserveProviderRequest(endpoint, "error")
		c.logger.Warn("provider rejected request",
			zap.String("endpoint", endpoint),
			zap.Int("status_code", env.StatusCode),
			zap.String("status_message", env.StatusMessage),
		)
		return nil, seo.NewExternal(
			fmt.Sprintf("provider error %d: %s", env.StatusCode, env.StatusMessage), nil)
	}
	telemetry.ObserveProviderRequest(endpoint, "ok")
	return &env, nil
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
