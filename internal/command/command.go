// Package command defines the closed set of rebuild commands and turns a raw
// newline-delimited generation payload into an executable plan.
package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/sitewright/internal/models"
)

// Kind is the `command` discriminant of a raw command line.
type Kind string

// Command kinds.
const (
	KindUpdateContent         Kind = "update_element_content"
	KindUpdateStyles          Kind = "update_styles"
	KindUpdateLayout          Kind = "update_layout"
	KindUpdateCardStyles      Kind = "update_card_styles"
	KindUpdateImage           Kind = "update_image"
	KindGenerateImage         Kind = "generate_image"
	KindUpdateBackgroundImage Kind = "update_background_image"
	KindToggleVisibility      Kind = "toggle_visibility"
	KindReorderSections       Kind = "reorder_sections"
	KindUpdateMap             Kind = "update_map"
	KindDuplicateSection      Kind = "duplicate_section"
	KindCreateArticle         Kind = "create_article"
	KindExplanation           Kind = "explanation"
)

// Command is one instruction from the generation output. The set of
// implementations is closed: only types in this package satisfy it.
type Command interface {
	Kind() Kind
	// Target names the element, section or article the command addresses.
	Target() string
	Validate() error
	sealed()
}

// AssetCommand is a command whose application needs an external image lookup.
type AssetCommand interface {
	Command
	asset()
}

// Lang selector values for content updates.
const (
	LangBoth = "both"
)

// Text is a content payload given either as one string or as {ro, en}.
type Text struct {
	Single    string
	Localized *models.Localized
}

// UnmarshalJSON accepts a JSON string or a {ro, en} object.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &t.Single)
	}
	var l models.Localized
	if err := json.Unmarshal(data, &l); err != nil {
		return fmt.Errorf("content must be a string or {ro, en}: %w", err)
	}
	t.Localized = &l
	return nil
}

// For returns the text to write for lang.
func (t Text) For(lang models.Lang) string {
	if t.Localized != nil {
		return t.Localized.Get(lang)
	}
	return t.Single
}

// Empty reports whether no text was provided at all.
func (t Text) Empty() bool {
	if t.Localized != nil {
		return t.Localized.RO == "" && t.Localized.EN == ""
	}
	return t.Single == ""
}

// UpdateContent merges text into an element's localized content.
type UpdateContent struct {
	ElementID string `json:"element_id"`
	Lang      string `json:"lang"`
	Content   Text   `json:"content"`
}

// Languages resolves the lang selector; an empty selector means both.
func (c *UpdateContent) Languages() []models.Lang {
	switch c.Lang {
	case string(models.LangRO):
		return []models.Lang{models.LangRO}
	case string(models.LangEN):
		return []models.Lang{models.LangEN}
	default:
		return models.Languages
	}
}

func (c *UpdateContent) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ElementID, validation.Required),
		validation.Field(&c.Lang, validation.In(string(models.LangRO), string(models.LangEN), LangBoth)),
		validation.Field(&c.Content, validation.By(func(any) error {
			if c.Content.Empty() {
				return errors.New("cannot be blank")
			}
			return nil
		})),
	)
}

// UpdateStyles shallow-merges styles into an element or, without an element
// ID, into a section.
type UpdateStyles struct {
	ElementID string        `json:"element_id,omitempty"`
	SectionID string        `json:"section_id,omitempty"`
	Styles    models.Styles `json:"styles"`
}

func (c *UpdateStyles) Target() string {
	if c.ElementID != "" {
		return c.ElementID
	}
	return c.SectionID
}

func (c *UpdateStyles) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SectionID, validation.When(c.ElementID == "", validation.Required.Error("section_id or element_id is required"))),
		validation.Field(&c.Styles, validation.Required),
	)
}

// LayoutPatch carries only the layout fields a command changes.
type LayoutPatch struct {
	Template          *string  `json:"template,omitempty"`
	ItemCount         *int     `json:"itemCount,omitempty"`
	ImageWidth        *int     `json:"imageWidth,omitempty"`
	SlideDuration     *int     `json:"slideDuration,omitempty"`
	Carousel          *bool    `json:"carousel,omitempty"`
	Animation         *string  `json:"animation,omitempty"`
	AnimationDuration *float64 `json:"animationDuration,omitempty"`
	AnimationDelay    *float64 `json:"animationDelay,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p LayoutPatch) Empty() bool {
	return p == LayoutPatch{}
}

// UpdateLayout merges a layout patch into a section.
type UpdateLayout struct {
	SectionID string      `json:"section_id"`
	Layout    LayoutPatch `json:"layout"`
}

func (c *UpdateLayout) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SectionID, validation.Required),
		validation.Field(&c.Layout, validation.By(func(any) error {
			if c.Layout.Empty() {
				return errors.New("must set at least one field")
			}
			if c.Layout.ItemCount != nil && (*c.Layout.ItemCount < 0 || *c.Layout.ItemCount > MaxItems) {
				return fmt.Errorf("itemCount must be between 0 and %d", MaxItems)
			}
			return nil
		})),
	)
}

// MaxItems bounds the number of items a layout update may request.
const MaxItems = 24

// UpdateCardStyles shallow-merges styles into a section's card styles.
type UpdateCardStyles struct {
	SectionID string        `json:"section_id"`
	Styles    models.Styles `json:"styles"`
}

func (c *UpdateCardStyles) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SectionID, validation.Required),
		validation.Field(&c.Styles, validation.Required),
	)
}

// UpdateImage replaces an image element with a stock photo found by keyword.
type UpdateImage struct {
	ElementID string `json:"element_id"`
	Query     string `json:"query"`
}

func (c *UpdateImage) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ElementID, validation.Required),
		validation.Field(&c.Query, validation.Required),
	)
}

// DefaultAspectRatio is used when a generate_image command omits one.
const DefaultAspectRatio = "16:9"

// GenerateImage synthesizes an image for a logo or image element.
type GenerateImage struct {
	ElementID   string `json:"element_id"`
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
}

// Ratio returns the requested aspect ratio or the default.
func (c *GenerateImage) Ratio() string {
	if c.AspectRatio == "" {
		return DefaultAspectRatio
	}
	return c.AspectRatio
}

func (c *GenerateImage) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ElementID, validation.Required),
		validation.Field(&c.Prompt, validation.Required),
		validation.Field(&c.AspectRatio, validation.In("1:1", "16:9", "9:16", "4:3", "3:4")),
	)
}

// UpdateBackgroundImage writes a stock-photo background onto a section or,
// when ItemID is set, onto one of its items.
type UpdateBackgroundImage struct {
	SectionID string `json:"section_id"`
	Query     string `json:"query"`
	ItemID    *int   `json:"item_id,omitempty"`
}

func (c *UpdateBackgroundImage) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SectionID, validation.Required),
		validation.Field(&c.Query, validation.Required),
	)
}

// ToggleVisibility sets a section's visibility flags.
type ToggleVisibility struct {
	SectionID      string `json:"section_id"`
	Visible        *bool  `json:"visible"`
	NavLinkVisible *bool  `json:"navLinkVisible,omitempty"`
}

func (c *ToggleVisibility) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SectionID, validation.Required),
		validation.Field(&c.Visible, validation.NotNil),
	)
}

// ReorderSections replaces the section order.
type ReorderSections struct {
	Order []string `json:"section_order"`
}

func (c *ReorderSections) Target() string { return "sectionOrder" }

func (c *ReorderSections) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Order, validation.Required, validation.Each(validation.Required)),
	)
}

// UpdateMap points a map element at an address.
type UpdateMap struct {
	ElementID string `json:"element_id"`
	Address   string `json:"address"`
}

func (c *UpdateMap) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ElementID, validation.Required),
		validation.Field(&c.Address, validation.Required),
	)
}

// DuplicateSection clones a section and inserts it after the source.
type DuplicateSection struct {
	SectionID string `json:"section_id"`
}

func (c *DuplicateSection) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SectionID, validation.Required),
	)
}

// CreateArticle appends a new article.
type CreateArticle struct {
	Title           models.Localized `json:"title"`
	Excerpt         models.Localized `json:"excerpt"`
	Content         models.Localized `json:"content"`
	MetaTitle       models.Localized `json:"metaTitle"`
	MetaDescription models.Localized `json:"metaDescription"`
	ImageQuery      string           `json:"image_query"`
}

func (c *CreateArticle) Target() string {
	if c.Title.EN != "" {
		return c.Title.EN
	}
	return c.Title.RO
}

func (c *CreateArticle) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.By(func(any) error {
			if c.Title.RO == "" && c.Title.EN == "" {
				return errors.New("cannot be blank")
			}
			return nil
		})),
	)
}

// Explanation is the human-readable summary closing a generation payload.
type Explanation struct {
	Text string `json:"text"`
}

func (c *Explanation) Target() string { return "" }

func (c *Explanation) Validate() error {
	return validation.ValidateStruct(c, validation.Field(&c.Text, validation.Required))
}

func (*UpdateContent) Kind() Kind         { return KindUpdateContent }
func (*UpdateStyles) Kind() Kind          { return KindUpdateStyles }
func (*UpdateLayout) Kind() Kind          { return KindUpdateLayout }
func (*UpdateCardStyles) Kind() Kind      { return KindUpdateCardStyles }
func (*UpdateImage) Kind() Kind           { return KindUpdateImage }
func (*GenerateImage) Kind() Kind         { return KindGenerateImage }
func (*UpdateBackgroundImage) Kind() Kind { return KindUpdateBackgroundImage }
func (*ToggleVisibility) Kind() Kind      { return KindToggleVisibility }
func (*ReorderSections) Kind() Kind       { return KindReorderSections }
func (*UpdateMap) Kind() Kind             { return KindUpdateMap }
func (*DuplicateSection) Kind() Kind      { return KindDuplicateSection }
func (*CreateArticle) Kind() Kind         { return KindCreateArticle }
func (*Explanation) Kind() Kind           { return KindExplanation }

func (c *UpdateContent) Target() string         { return c.ElementID }
func (c *UpdateLayout) Target() string          { return c.SectionID }
func (c *UpdateCardStyles) Target() string      { return c.SectionID }
func (c *UpdateImage) Target() string           { return c.ElementID }
func (c *GenerateImage) Target() string         { return c.ElementID }
func (c *UpdateBackgroundImage) Target() string { return c.SectionID }
func (c *ToggleVisibility) Target() string      { return c.SectionID }
func (c *UpdateMap) Target() string             { return c.ElementID }
func (c *DuplicateSection) Target() string      { return c.SectionID }

func (*UpdateContent) sealed()         {}
func (*UpdateStyles) sealed()          {}
func (*UpdateLayout) sealed()          {}
func (*UpdateCardStyles) sealed()      {}
func (*UpdateImage) sealed()           {}
func (*GenerateImage) sealed()         {}
func (*UpdateBackgroundImage) sealed() {}
func (*ToggleVisibility) sealed()      {}
func (*ReorderSections) sealed()       {}
func (*UpdateMap) sealed()             {}
func (*DuplicateSection) sealed()      {}
func (*CreateArticle) sealed()         {}
func (*Explanation) sealed()           {}

func (*UpdateImage) asset()           {}
func (*GenerateImage) asset()         {}
func (*UpdateBackgroundImage) asset() {}

// factories maps each discriminant to a constructor for its concrete type.
var factories = map[Kind]func() Command{
	KindUpdateContent:         func() Command { return &UpdateContent{} },
	KindUpdateStyles:          func() Command { return &UpdateStyles{} },
	KindUpdateLayout:          func() Command { return &UpdateLayout{} },
	KindUpdateCardStyles:      func() Command { return &UpdateCardStyles{} },
	KindUpdateImage:           func() Command { return &UpdateImage{} },
	KindGenerateImage:         func() Command { return &GenerateImage{} },
	KindUpdateBackgroundImage: func() Command { return &UpdateBackgroundImage{} },
	KindToggleVisibility:      func() Command { return &ToggleVisibility{} },
	KindReorderSections:       func() Command { return &ReorderSections{} },
	KindUpdateMap:             func() Command { return &UpdateMap{} },
	KindDuplicateSection:      func() Command { return &DuplicateSection{} },
	KindCreateArticle:         func() Command { return &CreateArticle{} },
	KindExplanation:           func() Command { return &Explanation{} },
}
