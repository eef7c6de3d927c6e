package models

import "time"

// Article is a blog entry owned by the site configuration.
type Article struct {
	ID              string    `json:"id"`
	Slug            string    `json:"slug"`
	Title           Localized `json:"title"`
	Excerpt         Localized `json:"excerpt"`
	Content         Localized `json:"content"`
	MetaTitle       Localized `json:"metaTitle"`
	MetaDescription Localized `json:"metaDescription"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	ImageAlt        string    `json:"imageAlt,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ArticlePatch carries optional replacements for an article's localized fields.
type ArticlePatch struct {
	Title           *Localized `json:"title,omitempty"`
	Excerpt         *Localized `json:"excerpt,omitempty"`
	Content         *Localized `json:"content,omitempty"`
	MetaTitle       *Localized `json:"metaTitle,omitempty"`
	MetaDescription *Localized `json:"metaDescription,omitempty"`
	ImageURL        *string    `json:"imageUrl,omitempty"`
	ImageAlt        *string    `json:"imageAlt,omitempty"`
}

// SlugChange reports an article slug transition; Old == New when nothing changed.
type SlugChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// Changed reports whether the slug moved.
func (c SlugChange) Changed() bool {
	return c.Old != c.New
}
