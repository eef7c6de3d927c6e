package site

import (
	"net/url"
	"strings"
)

// MapEmbedURL builds an embeddable map URL for a free-form address. No
// geocoding happens; the address is only URL-encoded.
func MapEmbedURL(address string) string {
	return "https://maps.google.com/maps?q=" + url.QueryEscape(strings.TrimSpace(address)) + "&t=&z=15&ie=UTF8&iwloc=&output=embed"
}
