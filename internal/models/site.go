// Package models defines the domain types for Sitewright.
package models

// Lang is one of the two supported content languages.
type Lang string

// Supported languages.
const (
	LangRO Lang = "ro"
	LangEN Lang = "en"
)

// Languages lists every supported language in canonical order.
var Languages = []Lang{LangRO, LangEN}

// Localized holds one string per supported language.
type Localized struct {
	RO string `json:"ro"`
	EN string `json:"en"`
}

// Get returns the value for lang.
func (l Localized) Get(lang Lang) string {
	if lang == LangEN {
		return l.EN
	}
	return l.RO
}

// Set stores value for lang.
func (l *Localized) Set(lang Lang, value string) {
	if lang == LangEN {
		l.EN = value
		return
	}
	l.RO = value
}

// Complete reports whether both languages carry text.
func (l Localized) Complete() bool {
	return l.RO != "" && l.EN != ""
}

// Styles is a free-form CSS property map (camelCase keys).
type Styles map[string]any

// Component names the renderer a section uses.
type Component string

// Known section components.
const (
	ComponentHeader       Component = "header"
	ComponentHero         Component = "hero"
	ComponentAbout        Component = "about"
	ComponentServices     Component = "services"
	ComponentGallery      Component = "gallery"
	ComponentTestimonials Component = "testimonials"
	ComponentTeam         Component = "team"
	ComponentPricing      Component = "pricing"
	ComponentFAQ          Component = "faq"
	ComponentBlog         Component = "blog"
	ComponentContact      Component = "contact"
	ComponentMap          Component = "map"
	ComponentCTA          Component = "cta"
	ComponentFooter       Component = "footer"
)

var components = map[Component]struct{}{
	ComponentHeader: {}, ComponentHero: {}, ComponentAbout: {}, ComponentServices: {},
	ComponentGallery: {}, ComponentTestimonials: {}, ComponentTeam: {}, ComponentPricing: {},
	ComponentFAQ: {}, ComponentBlog: {}, ComponentContact: {}, ComponentMap: {},
	ComponentCTA: {}, ComponentFooter: {},
}

// Valid reports whether c belongs to the closed component set.
func (c Component) Valid() bool {
	_, ok := components[c]
	return ok
}

// Configuration is the root aggregate of a site.
type Configuration struct {
	Sections     map[string]*Section `json:"sections"`
	SectionOrder []string            `json:"sectionOrder"`
	Articles     []*Article          `json:"articles"`
	Images       map[string]string   `json:"images"`
	Pages        map[string]*Page    `json:"pages,omitempty"`
}

// Page is a bag of elements not bound to a section.
type Page struct {
	ID       string              `json:"id"`
	Elements map[string]*Element `json:"elements"`
}

// Section is a named, orderable block of the page.
type Section struct {
	ID             string              `json:"id"`
	Component      Component           `json:"component"`
	Visible        bool                `json:"visible"`
	NavLinkVisible *bool               `json:"navLinkVisible,omitempty"`
	Styles         Styles              `json:"styles,omitempty"`
	Layout         Layout              `json:"layout"`
	CardStyles     Styles              `json:"cardStyles,omitempty"`
	Elements       map[string]*Element `json:"elements"`
	Items          []*Item             `json:"items,omitempty"`
}

// ShowsNavLink returns the effective nav link visibility (true when unset).
func (s *Section) ShowsNavLink() bool {
	return s.NavLinkVisible == nil || *s.NavLinkVisible
}

// Layout holds the section template name and its numeric controls.
type Layout struct {
	Template          string  `json:"template,omitempty"`
	ItemCount         int     `json:"itemCount,omitempty"`
	ImageWidth        int     `json:"imageWidth,omitempty"`
	SlideDuration     int     `json:"slideDuration,omitempty"`
	Carousel          bool    `json:"carousel,omitempty"`
	Animation         string  `json:"animation,omitempty"`
	AnimationDuration float64 `json:"animationDuration,omitempty"`
	AnimationDelay    float64 `json:"animationDelay,omitempty"`
}

// Item is a lightweight repeated record inside a section (slide, card, FAQ entry).
type Item struct {
	ID          int    `json:"id"`
	Ref         string `json:"ref,omitempty"`
	Styles      Styles `json:"styles,omitempty"`
	IconVisible *bool  `json:"iconVisible,omitempty"`
}
