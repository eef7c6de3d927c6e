package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/sitewright/internal/history"
	"github.com/starford/sitewright/internal/models"
	"github.com/starford/sitewright/internal/rebuild"
)

// maxPromptLen bounds the rebuild prompt in runes.
const maxPromptLen = 4000

// RebuildRequest is the request body for POST /api/rebuild.
type RebuildRequest struct {
	Prompt string `json:"prompt" example:"A cozy bakery in Cluj with fresh bread" validate:"required"`
}

// Validate implements validation.Validatable.
func (r RebuildRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Prompt, validation.Required, validation.RuneLength(1, maxPromptLen)),
	)
}

// SiteResponse wraps the live configuration.
type SiteResponse struct {
	Config   *models.Configuration `json:"config" validate:"required"`
	Checksum string                `json:"checksum,omitempty"`
}

// RebuildResponse is the result of a committed rebuild.
type RebuildResponse = rebuild.Result

// HistoryResponse lists history entries, newest first.
type HistoryResponse struct {
	Entries []history.Entry `json:"entries" validate:"required"`
}

// ArticleResponse is returned by PATCH /api/articles/{id}.
type ArticleResponse struct {
	Article    *models.Article   `json:"article" validate:"required"`
	SlugChange models.SlugChange `json:"slugChange"`
}
