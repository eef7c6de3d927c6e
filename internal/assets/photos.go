// Package assets resolves image commands against external photo search and
// image generation services.
package assets

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
)

// Photo is one stock photo search hit.
type Photo struct {
	URL   string `json:"url"`
	Thumb string `json:"thumb,omitempty"`
	Alt   string `json:"alt,omitempty"`
}

// PhotoSearcher looks up stock photos by keyword.
type PhotoSearcher interface {
	Search(ctx context.Context, query string) ([]Photo, error)
}

// ImageGenerator synthesizes an image and returns it base64 encoded.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt, aspectRatio string) (string, error)
}

// ImageStore persists a base64 image and returns its ID.
type ImageStore interface {
	Store(ctx context.Context, payload string) (string, error)
}

// Placeholder is the deterministic fallback photo URL for keyword.
func Placeholder(keyword string) string {
	return "https://picsum.photos/seed/" + url.PathEscape(strings.TrimSpace(keyword)) + "/1600/900"
}

// Photos finds a photo for a keyword and never fails: search errors and empty
// results fall back to Placeholder.
type Photos struct {
	searcher PhotoSearcher
	logger   *slog.Logger
}

// NewPhotos creates a Photos helper. A nil searcher always yields placeholders.
func NewPhotos(searcher PhotoSearcher, logger *slog.Logger) *Photos {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Photos{searcher: searcher, logger: logger}
}

// Find returns the first search hit for query or a placeholder.
func (p *Photos) Find(ctx context.Context, query string) Photo {
	if p.searcher != nil {
		hits, err := p.searcher.Search(ctx, query)
		switch {
		case err != nil:
			p.logger.Warn("photo search failed, using placeholder",
				slog.String("query", query), slog.String("error", err.Error()))
		case len(hits) == 0 || hits[0].URL == "":
			p.logger.Info("photo search empty, using placeholder", slog.String("query", query))
		default:
			hit := hits[0]
			if hit.Alt == "" {
				hit.Alt = query
			}
			return hit
		}
	}
	return Photo{URL: Placeholder(query), Alt: query}
}
