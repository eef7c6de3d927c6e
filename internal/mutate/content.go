package mutate

import (
	"errors"
	"fmt"

	"github.com/starford/sitewright/internal/command"
	"github.com/starford/sitewright/internal/models"
	"github.com/starford/sitewright/internal/site"
)

func updateContent(cfg *models.Configuration, c *command.UpdateContent) error {
	loc := site.Locate(cfg, c.ElementID)
	if !loc.Found() {
		return fmt.Errorf("%w: %q", errElementNotFound, c.ElementID)
	}
	el := loc.Element
	target := &el.Content
	switch el.Type {
	case models.ElementMap:
		return errors.New("map elements take update_map")
	case models.ElementImage:
		target = &el.Alt
	}
	for _, lang := range c.Languages() {
		if v := c.Content.For(lang); v != "" {
			target.Set(lang, v)
		}
	}
	return nil
}

func updateStyles(cfg *models.Configuration, c *command.UpdateStyles) error {
	if c.ElementID != "" {
		loc := site.Locate(cfg, c.ElementID)
		if !loc.Found() {
			return fmt.Errorf("%w: %q", errElementNotFound, c.ElementID)
		}
		loc.Element.Styles = site.MergeStyles(loc.Element.Styles, c.Styles)
		return nil
	}
	sec, err := section(cfg, c.SectionID)
	if err != nil {
		return err
	}
	sec.Styles = site.MergeStyles(sec.Styles, c.Styles)
	return nil
}

func updateCardStyles(cfg *models.Configuration, c *command.UpdateCardStyles) error {
	sec, err := section(cfg, c.SectionID)
	if err != nil {
		return err
	}
	sec.CardStyles = site.MergeStyles(sec.CardStyles, c.Styles)
	return nil
}

func updateMap(cfg *models.Configuration, c *command.UpdateMap) error {
	loc := site.Locate(cfg, c.ElementID)
	if !loc.Found() {
		return fmt.Errorf("%w: %q", errElementNotFound, c.ElementID)
	}
	if loc.Element.Type != models.ElementMap {
		return fmt.Errorf("element %q is %s, not a map", c.ElementID, loc.Element.Type)
	}
	loc.Element.URL = site.MapEmbedURL(c.Address)
	return nil
}
