package site

import (
	"fmt"
	"time"

	"github.com/starford/sitewright/internal/apperr"
	"github.com/starford/sitewright/internal/models"
)

// ArticleSlugs returns the set of slugs in use, skipping exceptID.
func ArticleSlugs(cfg *models.Configuration, exceptID string) map[string]struct{} {
	out := make(map[string]struct{}, len(cfg.Articles))
	for _, a := range cfg.Articles {
		if a != nil && a.ID != exceptID {
			out[a.Slug] = struct{}{}
		}
	}
	return out
}

// SlugTitle picks the title a slug is derived from (English first).
func SlugTitle(title models.Localized) string {
	if title.EN != "" {
		return title.EN
	}
	return title.RO
}

// UpdateArticle applies patch to the article with the given ID, bumps
// UpdatedAt and re-derives the slug when the title changed.
func UpdateArticle(cfg *models.Configuration, id string, patch models.ArticlePatch, now time.Time) (models.SlugChange, error) {
	var target *models.Article
	for _, a := range cfg.Articles {
		if a != nil && a.ID == id {
			target = a
			break
		}
	}
	if target == nil {
		return models.SlugChange{}, fmt.Errorf("site: article %q: %w", id, apperr.ErrNotFound)
	}

	change := models.SlugChange{Old: target.Slug, New: target.Slug}
	if patch.Title != nil {
		oldBase := Slugify(SlugTitle(target.Title))
		target.Title = *patch.Title
		base := Slugify(SlugTitle(target.Title))
		if base != oldBase || target.Slug == "" {
			target.Slug = UniqueSlug(base, ArticleSlugs(cfg, target.ID))
		}
		change.New = target.Slug
	}
	if patch.Excerpt != nil {
		target.Excerpt = *patch.Excerpt
	}
	if patch.Content != nil {
		target.Content.RO = SanitizeHTML(patch.Content.RO)
		target.Content.EN = SanitizeHTML(patch.Content.EN)
	}
	if patch.MetaTitle != nil {
		target.MetaTitle = *patch.MetaTitle
	}
	if patch.MetaDescription != nil {
		target.MetaDescription = *patch.MetaDescription
	}
	if patch.ImageURL != nil {
		target.ImageURL = *patch.ImageURL
	}
	if patch.ImageAlt != nil {
		target.ImageAlt = *patch.ImageAlt
	}
	target.UpdatedAt = now
	return change, nil
}
