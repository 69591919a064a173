package model

import "errors"

// Giphy media kinds the proxy accepts.
const (
	GiphyKindGifs     = "gifs"
	GiphyKindStickers = "stickers"
)

// GiphyItem is the trimmed-down shape returned to clients: enough to render
// a picker grid and attach the chosen URL as post media.
type GiphyItem struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	PreviewURL string `json:"preview_url"`
	Width      string `json:"width"`
	Height     string `json:"height"`
}

// GiphyListResponse is a page of picker results.
type GiphyListResponse struct {
	Items []GiphyItem `json:"items"`
}

var (
	ErrGiphyDisabled    = errors.New("giphy integration not configured")
	ErrInvalidGiphyKind = errors.New("invalid giphy kind")
)
