package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"desiiseb/internal/config"
	"desiiseb/internal/model"
)

const (
	giphyDefaultLimit = 20
	giphyMaxLimit     = 50

	// giphyRating keeps picker results family-friendly.
	giphyRating = "g"
)

// GiphyService proxies GIF and sticker search so the API key never reaches
// clients.
type GiphyService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGiphyService(cfg *config.Config) *GiphyService {
	return &GiphyService{
		apiKey:  cfg.GiphyAPIKey,
		baseURL: cfg.GiphyBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Search queries Giphy for gifs or stickers matching q.
func (s *GiphyService) Search(ctx context.Context, kind, q string, limit int) (*model.GiphyListResponse, error) {
	params := url.Values{}
	params.Set("q", q)
	return s.fetch(ctx, kind, "search", params, limit)
}

// Trending returns the current trending gifs or stickers.
func (s *GiphyService) Trending(ctx context.Context, kind string, limit int) (*model.GiphyListResponse, error) {
	return s.fetch(ctx, kind, "trending", url.Values{}, limit)
}

func (s *GiphyService) fetch(ctx context.Context, kind, endpoint string, params url.Values, limit int) (*model.GiphyListResponse, error) {
	if s.apiKey == "" {
		return nil, model.ErrGiphyDisabled
	}
	if kind != model.GiphyKindGifs && kind != model.GiphyKindStickers {
		return nil, model.ErrInvalidGiphyKind
	}
	if limit <= 0 {
		limit = giphyDefaultLimit
	}
	if limit > giphyMaxLimit {
		limit = giphyMaxLimit
	}

	params.Set("api_key", s.apiKey)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("rating", giphyRating)

	reqURL := fmt.Sprintf("%s/%s/%s?%s", s.baseURL, kind, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build giphy request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("giphy request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("giphy returned status %d", resp.StatusCode)
	}

	// Only the fields the picker needs are decoded; the rest of the upstream
	// payload is ignored.
	var upstream struct {
		Data []struct {
			ID     string `json:"id"`
			Title  string `json:"title"`
			Images struct {
				Original struct {
					URL    string `json:"url"`
					Width  string `json:"width"`
					Height string `json:"height"`
				} `json:"original"`
				FixedWidth struct {
					URL string `json:"url"`
				} `json:"fixed_width"`
			} `json:"images"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&upstream); err != nil {
		return nil, fmt.Errorf("decode giphy response: %w", err)
	}

	items := make([]model.GiphyItem, len(upstream.Data))
	for i, d := range upstream.Data {
		items[i] = model.GiphyItem{
			ID:         d.ID,
			Title:      d.Title,
			URL:        d.Images.Original.URL,
			PreviewURL: d.Images.FixedWidth.URL,
			Width:      d.Images.Original.Width,
			Height:     d.Images.Original.Height,
		}
	}
	return &model.GiphyListResponse{Items: items}, nil
}
