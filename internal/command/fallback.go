package command

import (
	"github.com/starford/sitewright/internal/models"
	"github.com/starford/sitewright/internal/site"
)

// Placeholder policy: the wording below is generic filler used only when the
// generation output fails the coverage rules. Product may replace it freely.

// MinArticles is the number of create_article commands every plan carries.
const MinArticles = 3

const fallbackLogoPrompt = "Minimal modern logo for a small business website, flat vector style, simple icon, plain white background"

// FallbackLogo returns the generate_image command synthesized when a plan has
// no logo generation.
func FallbackLogo() *GenerateImage {
	return &GenerateImage{
		ElementID:   site.HeaderLogoID,
		Prompt:      fallbackLogoPrompt,
		AspectRatio: "1:1",
	}
}

var fallbackArticles = []CreateArticle{
	{
		Title:           models.Localized{RO: "Bine ați venit pe noul nostru site", EN: "Welcome to our new website"},
		Excerpt:         models.Localized{RO: "Aflați ce am pregătit pentru dumneavoastră.", EN: "Find out what we have prepared for you."},
		Content:         models.Localized{RO: "<p>Suntem bucuroși să vă prezentăm noul nostru site.</p>", EN: "<p>We are happy to present our new website.</p>"},
		MetaTitle:       models.Localized{RO: "Bine ați venit", EN: "Welcome"},
		MetaDescription: models.Localized{RO: "Noul nostru site și ce oferim.", EN: "Our new website and what we offer."},
		ImageQuery:      "office",
	},
	{
		Title:           models.Localized{RO: "Echipa noastră", EN: "Meet our team"},
		Excerpt:         models.Localized{RO: "Oamenii din spatele serviciilor noastre.", EN: "The people behind our services."},
		Content:         models.Localized{RO: "<p>Echipa noastră lucrează zilnic pentru clienții noștri.</p>", EN: "<p>Our team works every day for our customers.</p>"},
		MetaTitle:       models.Localized{RO: "Echipa", EN: "Team"},
		MetaDescription: models.Localized{RO: "Cunoașteți echipa noastră.", EN: "Get to know our team."},
		ImageQuery:      "teamwork",
	},
	{
		Title:           models.Localized{RO: "Sfaturi pentru clienți", EN: "Tips for our customers"},
		Excerpt:         models.Localized{RO: "Câteva recomandări utile.", EN: "A few useful recommendations."},
		Content:         models.Localized{RO: "<p>Iată câteva sfaturi care vă pot ajuta.</p>", EN: "<p>Here are a few tips that may help you.</p>"},
		MetaTitle:       models.Localized{RO: "Sfaturi", EN: "Tips"},
		MetaDescription: models.Localized{RO: "Recomandări utile pentru clienți.", EN: "Useful recommendations for customers."},
		ImageQuery:      "customer service",
	},
}

// FallbackArticles returns n filler create_article commands.
func FallbackArticles(n int) []*CreateArticle {
	out := make([]*CreateArticle, 0, n)
	for i := 0; i < n; i++ {
		a := fallbackArticles[i%len(fallbackArticles)]
		out = append(out, &a)
	}
	return out
}
