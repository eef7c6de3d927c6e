package mutate

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/sitewright/internal/command"
	"github.com/starford/sitewright/internal/models"
	"github.com/starford/sitewright/internal/site"
)

func updateLayout(cfg *models.Configuration, c *command.UpdateLayout) error {
	sec, err := section(cfg, c.SectionID)
	if err != nil {
		return err
	}
	p := c.Layout
	l := &sec.Layout
	if p.Template != nil {
		l.Template = *p.Template
	}
	if p.ImageWidth != nil {
		l.ImageWidth = *p.ImageWidth
	}
	if p.SlideDuration != nil {
		l.SlideDuration = *p.SlideDuration
	}
	if p.Carousel != nil {
		l.Carousel = *p.Carousel
	}
	if p.Animation != nil {
		l.Animation = *p.Animation
	}
	if p.AnimationDuration != nil {
		l.AnimationDuration = *p.AnimationDuration
	}
	if p.AnimationDelay != nil {
		l.AnimationDelay = *p.AnimationDelay
	}
	if p.ItemCount != nil {
		l.ItemCount = *p.ItemCount
		resizeItems(cfg, sec, *p.ItemCount)
	}
	return nil
}

// resizeItems grows or truncates an item-based section to n items. New items
// copy the last item's elements under a fresh ref; truncated items take their
// elements with them. Sections without items only record the count.
func resizeItems(cfg *models.Configuration, sec *models.Section, n int) {
	if len(sec.Items) == 0 || n == len(sec.Items) {
		return
	}
	if n < len(sec.Items) {
		for _, it := range sec.Items[n:] {
			if it == nil || it.Ref == "" {
				continue
			}
			for id := range sec.Elements {
				if site.OwnedBy(id, it.Ref) {
					delete(sec.Elements, id)
				}
			}
		}
		sec.Items = sec.Items[:n]
		return
	}

	template := sec.Items[len(sec.Items)-1]
	taken := site.ElementIDs(cfg)
	nextID := 0
	for _, it := range sec.Items {
		if it != nil && it.ID > nextID {
			nextID = it.ID
		}
	}
	for len(sec.Items) < n {
		nextID++
		item := &models.Item{ID: nextID, Ref: fmt.Sprintf("%s-item%d", sec.ID, nextID)}
		if template != nil {
			item.Styles = cloneStyles(template.Styles)
			item.IconVisible = template.IconVisible
			if template.Ref != "" {
				for id, el := range sec.Elements {
					if !site.OwnedBy(id, template.Ref) {
						continue
					}
					newID := site.RenameSectionPrefix(id, template.Ref, item.Ref)
					if _, dup := taken[newID]; dup {
						continue
					}
					cp := *el
					cp.ID = newID
					cp.Styles = cloneStyles(el.Styles)
					sec.Elements[newID] = &cp
					taken[newID] = struct{}{}
				}
			}
		}
		sec.Items = append(sec.Items, item)
	}
}

func cloneStyles(s models.Styles) models.Styles {
	if s == nil {
		return nil
	}
	out := make(models.Styles, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func toggleVisibility(cfg *models.Configuration, c *command.ToggleVisibility) error {
	sec, err := section(cfg, c.SectionID)
	if err != nil {
		return err
	}
	sec.Visible = *c.Visible
	if c.NavLinkVisible != nil {
		v := *c.NavLinkVisible
		sec.NavLinkVisible = &v
	}
	return nil
}

// reorderSections accepts only a permutation of the current section order;
// sections left out of the order stay hidden from it.
func reorderSections(cfg *models.Configuration, c *command.ReorderSections) error {
	if len(c.Order) != len(cfg.SectionOrder) {
		return fmt.Errorf("order lists %d sections, current order has %d", len(c.Order), len(cfg.SectionOrder))
	}
	current := make(map[string]bool, len(cfg.SectionOrder))
	for _, id := range cfg.SectionOrder {
		current[id] = false
	}
	for _, id := range c.Order {
		placed, ok := current[id]
		if !ok {
			if _, exists := cfg.Sections[id]; !exists {
				return fmt.Errorf("%w: %q", errSectionNotFound, id)
			}
			return fmt.Errorf("section %q is not in the current order", id)
		}
		if placed {
			return fmt.Errorf("section %q listed twice", id)
		}
		current[id] = true
	}
	cfg.SectionOrder = slices.Clone(c.Order)
	return nil
}

var errNotDuplicable = errors.New("header and footer sections cannot be duplicated")

func duplicateSection(cfg *models.Configuration, c *command.DuplicateSection) (string, error) {
	src, err := section(cfg, c.SectionID)
	if err != nil {
		return "", err
	}
	if src.Component == models.ComponentHeader || src.Component == models.ComponentFooter {
		return "", errNotDuplicable
	}

	data, err := json.Marshal(src)
	if err != nil {
		return "", fmt.Errorf("copy section: %w", err)
	}
	var dup models.Section
	if err := json.Unmarshal(data, &dup); err != nil {
		return "", fmt.Errorf("copy section: %w", err)
	}

	taken := site.ElementIDs(cfg)
	newID := uniqueSectionID(cfg, taken, src.ID)
	dup.ID = newID

	elements := make(map[string]*models.Element, len(dup.Elements))
	for id, el := range dup.Elements {
		if el == nil {
			continue
		}
		renamed := site.RenameSectionPrefix(id, src.ID, newID)
		if renamed == id {
			renamed = newID + "-" + id
		}
		if _, clash := taken[renamed]; clash {
			return "", fmt.Errorf("renamed element %q already exists", renamed)
		}
		el.ID = renamed
		elements[renamed] = el
	}
	dup.Elements = elements
	for _, it := range dup.Items {
		if it != nil && it.Ref != "" {
			it.Ref = site.RenameSectionPrefix(it.Ref, src.ID, newID)
		}
	}

	cfg.Sections[newID] = &dup
	if pos := slices.Index(cfg.SectionOrder, src.ID); pos >= 0 {
		cfg.SectionOrder = slices.Insert(cfg.SectionOrder, pos+1, newID)
	} else {
		cfg.SectionOrder = append(cfg.SectionOrder, newID)
	}
	return newID, nil
}

// uniqueSectionID derives "<base>-<8 hex>" not used by any section or element.
func uniqueSectionID(cfg *models.Configuration, elementIDs map[string]struct{}, base string) string {
	for {
		suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		id := base + "-" + suffix
		if _, ok := cfg.Sections[id]; ok {
			continue
		}
		if _, ok := elementIDs[id]; ok {
			continue
		}
		return id
	}
}
