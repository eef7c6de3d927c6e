package models

// ElementType is the discriminant of the Element union.
type ElementType string

// Element variants.
const (
	ElementRichText ElementType = "rich-text"
	ElementImage    ElementType = "image"
	ElementLogo     ElementType = "logo"
	ElementIcon     ElementType = "icon"
	ElementMap      ElementType = "map"
)

// LogoType selects how a logo element renders.
type LogoType string

// Logo variants.
const (
	LogoText  LogoType = "text"
	LogoImage LogoType = "image"
)

// Element is an addressable content unit. Which fields are meaningful depends on Type:
//   - rich-text: Content (HTML per language)
//   - image:     URL, Alt
//   - logo:      LogoType, Content (text logo), ImageURL (image logo)
//   - icon:      Icon, optional Content label
//   - map:       URL (embed URL)
type Element struct {
	ID       string      `json:"id"`
	Type     ElementType `json:"type"`
	Content  Localized   `json:"content"`
	URL      string      `json:"url,omitempty"`
	Alt      Localized   `json:"alt"`
	LogoType LogoType    `json:"logoType,omitempty"`
	ImageURL string      `json:"imageUrl,omitempty"`
	Icon     string      `json:"icon,omitempty"`
	Styles   Styles      `json:"styles,omitempty"`
}

// Textual reports whether the variant must carry text in both languages.
func (e *Element) Textual() bool {
	switch e.Type {
	case ElementRichText:
		return true
	case ElementLogo:
		return e.LogoType != LogoImage
	default:
		return false
	}
}
