package mutate

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/sitewright/internal/command"
	"github.com/starford/sitewright/internal/models"
	"github.com/starford/sitewright/internal/site"
)

func (a *Applier) createArticle(ctx context.Context, cfg *models.Configuration, c *command.CreateArticle) (string, error) {
	now := a.now().UTC()
	query := strings.TrimSpace(c.ImageQuery)
	if query == "" {
		query = site.SlugTitle(c.Title)
	}
	photo := a.photos.Find(ctx, query)

	article := &models.Article{
		ID:              uuid.NewString(),
		Slug:            site.UniqueSlug(site.Slugify(site.SlugTitle(c.Title)), site.ArticleSlugs(cfg, "")),
		Title:           c.Title,
		Excerpt:         c.Excerpt,
		Content:         c.Content,
		MetaTitle:       c.MetaTitle,
		MetaDescription: c.MetaDescription,
		ImageURL:        photo.URL,
		ImageAlt:        photo.Alt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if article.MetaTitle == (models.Localized{}) {
		article.MetaTitle = c.Title
	}
	cfg.Articles = append(cfg.Articles, article)
	return article.ID, nil
}
