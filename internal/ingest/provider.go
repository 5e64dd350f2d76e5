package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultNewsURL  = "https://newsnow.p.rapidapi.com/newsv2_top_news"
	DefaultNewsHost = "newsnow.p.rapidapi.com"

	defaultFromDate = "01/01/2024"
	defaultToDate   = "12/31/2025"
)

// Item is one story as the provider returns it.
type Item struct {
	Title            string `json:"title"`
	ShortDescription string `json:"short_description"`
	URL              string `json:"url"`
	TopImage         string `json:"top_image"`
	Source           string `json:"source"`
	PublishDate      string `json:"publish_date"`
}

// Params are the caller-facing sync options.
type Params struct {
	Location string `json:"location"`
	Language string `json:"language"`
	Page     int    `json:"page"`
	Query    string `json:"query"`
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
}

// Provider fetches one page of top news.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, p Params) ([]Item, error)
}

// newsRequest is the newsv2_top_news body. time_bounded is only true when the
// caller gave a date; the defaults are always sent.
type newsRequest struct {
	Location    string `json:"location"`
	Language    string `json:"language"`
	Page        int    `json:"page"`
	TimeBounded bool   `json:"time_bounded"`
	FromDate    string `json:"from_date"`
	ToDate      string `json:"to_date"`
	Query       string `json:"query,omitempty"`
}

func buildRequest(p Params) newsRequest {
	req := newsRequest{
		Location:    p.Location,
		Language:    p.Language,
		Page:        p.Page,
		TimeBounded: p.FromDate != "" || p.ToDate != "",
		FromDate:    p.FromDate,
		ToDate:      p.ToDate,
		Query:       p.Query,
	}
	if req.Location == "" {
		req.Location = "us"
	}
	if req.Language == "" {
		req.Language = "en"
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.FromDate == "" {
		req.FromDate = defaultFromDate
	}
	if req.ToDate == "" {
		req.ToDate = defaultToDate
	}
	return req
}

type newsResponse struct {
	News []Item `json:"news"`
}

// RapidAPIProvider calls the newsnow API on RapidAPI.
type RapidAPIProvider struct {
	Client *http.Client
	URL    string
	Host   string
	Key    string
}

func NewRapidAPIProvider(url, host, key string, timeout time.Duration) *RapidAPIProvider {
	if url == "" {
		url = DefaultNewsURL
	}
	if host == "" {
		host = DefaultNewsHost
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RapidAPIProvider{
		Client: &http.Client{Timeout: timeout},
		URL:    url,
		Host:   host,
		Key:    key,
	}
}

func (p *RapidAPIProvider) Name() string { return "newsnow" }

func (p *RapidAPIProvider) Fetch(ctx context.Context, params Params) ([]Item, error) {
	if p.Key == "" {
		return nil, fmt.Errorf("newsnow: api key not configured (set RAPIDAPI_KEY)")
	}

	payload, err := json.Marshal(buildRequest(params))
	if err != nil {
		return nil, fmt.Errorf("newsnow: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("newsnow: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-rapidapi-key", p.Key)
	req.Header.Set("x-rapidapi-host", p.Host)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsnow: request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("newsnow: status %d: %s", resp.StatusCode, string(body))
	}

	var out newsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("newsnow: decode: %w", err)
	}
	if out.News == nil {
		out.News = []Item{}
	}
	return out.News, nil
}
