package site

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/sitewright/internal/models"
)

// Clone returns a deep copy of cfg. The copy shares no maps, slices or
// pointers with the original.
func Clone(cfg *models.Configuration) (*models.Configuration, error) {
	if cfg == nil {
		return nil, errors.New("site: clone nil configuration")
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("site: clone marshal: %w", err)
	}
	return Decode(data)
}

// Decode parses a serialized configuration and fills defaults.
func Decode(data []byte) (*models.Configuration, error) {
	var out models.Configuration
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("site: decode: %w", err)
	}
	NormalizeDefaults(&out)
	return &out, nil
}

// NormalizeDefaults initialises nil collections and fills IDs that are
// implied by map keys.
func NormalizeDefaults(cfg *models.Configuration) {
	if cfg.Sections == nil {
		cfg.Sections = make(map[string]*models.Section)
	}
	if cfg.Images == nil {
		cfg.Images = make(map[string]string)
	}
	if cfg.Articles == nil {
		cfg.Articles = []*models.Article{}
	}
	if cfg.SectionOrder == nil {
		cfg.SectionOrder = []string{}
	}
	for id, sec := range cfg.Sections {
		if sec == nil {
			continue
		}
		if sec.ID == "" {
			sec.ID = id
		}
		if sec.Elements == nil {
			sec.Elements = make(map[string]*models.Element)
		}
		fillElementIDs(sec.Elements)
	}
	for id, page := range cfg.Pages {
		if page == nil {
			continue
		}
		if page.ID == "" {
			page.ID = id
		}
		if page.Elements == nil {
			page.Elements = make(map[string]*models.Element)
		}
		fillElementIDs(page.Elements)
	}
}

func fillElementIDs(elements map[string]*models.Element) {
	for id, el := range elements {
		if el != nil && el.ID == "" {
			el.ID = id
		}
	}
}

// PruneSectionOrder drops section order entries that name no section or
// repeat an earlier entry. It reports whether anything was dropped.
func PruneSectionOrder(cfg *models.Configuration) bool {
	seen := make(map[string]struct{}, len(cfg.SectionOrder))
	kept := cfg.SectionOrder[:0]
	for _, id := range cfg.SectionOrder {
		if _, ok := cfg.Sections[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		kept = append(kept, id)
	}
	pruned := len(kept) != len(cfg.SectionOrder)
	cfg.SectionOrder = kept
	return pruned
}

// Validate checks the referential invariants of cfg: section order entries
// exist and are unique, and no element ID is owned by two containers.
func Validate(cfg *models.Configuration) error {
	if cfg == nil {
		return errors.New("site: nil configuration")
	}
	seen := make(map[string]struct{}, len(cfg.SectionOrder))
	for _, id := range cfg.SectionOrder {
		if _, ok := cfg.Sections[id]; !ok {
			return fmt.Errorf("site: section order references unknown section %q", id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("site: section %q appears twice in section order", id)
		}
		seen[id] = struct{}{}
	}

	owner := make(map[string]string)
	claim := func(container, elementID string) error {
		if prev, ok := owner[elementID]; ok {
			return fmt.Errorf("site: element %q owned by both %s and %s", elementID, prev, container)
		}
		owner[elementID] = container
		return nil
	}
	for sid, sec := range cfg.Sections {
		if sec == nil {
			return fmt.Errorf("site: section %q is null", sid)
		}
		for eid := range sec.Elements {
			if err := claim("section "+sid, eid); err != nil {
				return err
			}
		}
	}
	for pid, page := range cfg.Pages {
		if page == nil {
			continue
		}
		for eid := range page.Elements {
			if err := claim("page "+pid, eid); err != nil {
				return err
			}
		}
	}
	return nil
}
