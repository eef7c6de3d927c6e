package site

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"

	"github.com/starford/sitewright/internal/models"
)

var htmlPolicy = newPolicy()

var (
	cssColor  = regexp.MustCompile(`(?i)^(#[0-9a-f]{3,8}|[a-z]+|rgba?\(\s*[0-9.%,\s]+\)|hsla?\(\s*[0-9.%,\sdeg]+\))$`)
	cssLength = regexp.MustCompile(`(?i)^(0|[0-9]*\.?[0-9]+(px|em|rem|%|pt|vw|vh)|small|medium|large|x-large|xx-large|smaller|larger)$`)
	cssWeight = regexp.MustCompile(`(?i)^(normal|bold|bolder|lighter|[1-9]00)$`)
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("target").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")

	// Inline formatting: each property is checked against a value pattern,
	// so url(), expression() and friends never get through.
	p.AllowStyles("text-align").MatchingEnum("left", "right", "center", "justify", "start", "end").Globally()
	p.AllowStyles("color", "background-color").Matching(cssColor).Globally()
	p.AllowStyles("font-size", "line-height", "letter-spacing").Matching(cssLength).Globally()
	p.AllowStyles("font-weight").Matching(cssWeight).Globally()
	p.AllowStyles("font-style").MatchingEnum("normal", "italic", "oblique").Globally()
	p.AllowStyles("text-decoration").MatchingEnum("none", "underline", "line-through", "overline").Globally()
	p.AllowStyles("text-transform").MatchingEnum("none", "uppercase", "lowercase", "capitalize").Globally()
	return p
}

// SanitizeHTML strips unsafe markup (scripts, event handlers, javascript: URLs)
// and keeps inline text formatting.
func SanitizeHTML(html string) string {
	return htmlPolicy.Sanitize(html)
}

// Sanitize neutralizes unsafe markup in every rich-text element (both
// languages) and in article bodies, and copies text across languages where
// one side of a textual element is empty.
func Sanitize(cfg *models.Configuration) {
	visit := func(elements map[string]*models.Element) {
		for _, el := range elements {
			if el == nil {
				continue
			}
			if el.Type == models.ElementRichText {
				el.Content.RO = SanitizeHTML(el.Content.RO)
				el.Content.EN = SanitizeHTML(el.Content.EN)
			}
			if el.Textual() {
				fillMissing(&el.Content)
			}
		}
	}
	for _, sec := range cfg.Sections {
		if sec != nil {
			visit(sec.Elements)
		}
	}
	for _, page := range cfg.Pages {
		if page != nil {
			visit(page.Elements)
		}
	}
	for _, a := range cfg.Articles {
		if a == nil {
			continue
		}
		a.Content.RO = SanitizeHTML(a.Content.RO)
		a.Content.EN = SanitizeHTML(a.Content.EN)
	}
}

func fillMissing(l *models.Localized) {
	switch {
	case l.RO == "" && l.EN != "":
		l.RO = l.EN
	case l.EN == "" && l.RO != "":
		l.EN = l.RO
	}
}
