package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/starford/sitewright/internal/assets"
)

// UnsplashClient searches an Unsplash-compatible photo API.
type UnsplashClient struct {
	client
	accessKey string
}

// NewUnsplashClient creates a photo search client. endpoint is the API root,
// e.g. https://api.unsplash.com.
func NewUnsplashClient(endpoint, accessKey string, timeout time.Duration) *UnsplashClient {
	return &UnsplashClient{client: newClient(endpoint, timeout), accessKey: accessKey}
}

type searchResponse struct {
	Results []struct {
		AltDescription string `json:"alt_description"`
		URLs           struct {
			Full  string `json:"full"`
			Small string `json:"small"`
		} `json:"urls"`
	} `json:"results"`
}

// Search returns landscape photos matching query.
func (c *UnsplashClient) Search(ctx context.Context, query string) ([]assets.Photo, error) {
	if c.endpoint == "" || c.accessKey == "" {
		return nil, ErrNotConfigured
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("per_page", "5")
	q.Set("orientation", "landscape")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/search/photos?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("provider: build request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	var out searchResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	photos := make([]assets.Photo, 0, len(out.Results))
	for _, r := range out.Results {
		if r.URLs.Full == "" {
			continue
		}
		photos = append(photos, assets.Photo{URL: r.URLs.Full, Thumb: r.URLs.Small, Alt: r.AltDescription})
	}
	return photos, nil
}
