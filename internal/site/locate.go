// Package site implements the configuration model operations: element lookup,
// cloning, integrity checks, ID renaming, slugs, sanitization and persistence.
package site

import "github.com/starford/sitewright/internal/models"

// Location is the result of an element lookup. Exactly one of Section or Page
// is set when the element was found.
type Location struct {
	Element *models.Element
	Section *models.Section
	Page    *models.Page
}

// Found reports whether the lookup resolved an element.
func (l Location) Found() bool {
	return l.Element != nil
}

// Locate finds elementID in every section, then in every page. A missing ID
// yields a zero Location; callers treat that as a no-op.
func Locate(cfg *models.Configuration, elementID string) Location {
	if cfg == nil || elementID == "" {
		return Location{}
	}
	for _, sec := range cfg.Sections {
		if sec == nil {
			continue
		}
		if el, ok := sec.Elements[elementID]; ok && el != nil {
			return Location{Element: el, Section: sec}
		}
	}
	for _, page := range cfg.Pages {
		if page == nil {
			continue
		}
		if el, ok := page.Elements[elementID]; ok && el != nil {
			return Location{Element: el, Page: page}
		}
	}
	return Location{}
}

// ElementIDs returns the set of every element ID in sections and pages.
func ElementIDs(cfg *models.Configuration) map[string]struct{} {
	out := make(map[string]struct{})
	for _, sec := range cfg.Sections {
		if sec == nil {
			continue
		}
		for id := range sec.Elements {
			out[id] = struct{}{}
		}
	}
	for _, page := range cfg.Pages {
		if page == nil {
			continue
		}
		for id := range page.Elements {
			out[id] = struct{}{}
		}
	}
	return out
}
