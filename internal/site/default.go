package site

import "github.com/starford/sitewright/internal/models"

// HeaderLogoID is the canonical header logo element.
const HeaderLogoID = "header-logo"

func text(id, ro, en string) *models.Element {
	return &models.Element{ID: id, Type: models.ElementRichText, Content: models.Localized{RO: ro, EN: en}}
}

// Default returns the starter configuration written when a site has none.
func Default() *models.Configuration {
	cfg := &models.Configuration{
		SectionOrder: []string{"header", "hero", "about", "services", "blog", "contact", "footer"},
		Sections: map[string]*models.Section{
			"header": {
				ID: "header", Component: models.ComponentHeader, Visible: true,
				Layout: models.Layout{Template: "classic"},
				Elements: map[string]*models.Element{
					HeaderLogoID: {
						ID: HeaderLogoID, Type: models.ElementLogo, LogoType: models.LogoText,
						Content: models.Localized{RO: "Site-ul meu", EN: "My site"},
					},
				},
			},
			"hero": {
				ID: "hero", Component: models.ComponentHero, Visible: true,
				Layout: models.Layout{Template: "centered", Animation: "fade-in", AnimationDuration: 0.8},
				Elements: map[string]*models.Element{
					"hero-title-1":    text("hero-title-1", "<h1>Bine ați venit</h1>", "<h1>Welcome</h1>"),
					"hero-subtitle-1": text("hero-subtitle-1", "<p>Descrierea afacerii</p>", "<p>Business description</p>"),
					"hero-image-1": {
						ID: "hero-image-1", Type: models.ElementImage,
						URL: "https://picsum.photos/seed/hero/1600/900",
						Alt: models.Localized{RO: "Imagine principală", EN: "Hero image"},
					},
				},
			},
			"about": {
				ID: "about", Component: models.ComponentAbout, Visible: true,
				Layout: models.Layout{Template: "image-left", ImageWidth: 50},
				Elements: map[string]*models.Element{
					"about-title": text("about-title", "<h2>Despre noi</h2>", "<h2>About us</h2>"),
					"about-text":  text("about-text", "<p>Povestea noastră.</p>", "<p>Our story.</p>"),
				},
			},
			"services": {
				ID: "services", Component: models.ComponentServices, Visible: true,
				Layout: models.Layout{Template: "grid", ItemCount: 3},
				Elements: map[string]*models.Element{
					"services-title":       text("services-title", "<h2>Servicii</h2>", "<h2>Services</h2>"),
					"services-item1-title": text("services-item1-title", "<h3>Serviciu 1</h3>", "<h3>Service 1</h3>"),
					"services-item2-title": text("services-item2-title", "<h3>Serviciu 2</h3>", "<h3>Service 2</h3>"),
					"services-item3-title": text("services-item3-title", "<h3>Serviciu 3</h3>", "<h3>Service 3</h3>"),
				},
				Items: []*models.Item{
					{ID: 1, Ref: "services-item1"},
					{ID: 2, Ref: "services-item2"},
					{ID: 3, Ref: "services-item3"},
				},
			},
			"blog": {
				ID: "blog", Component: models.ComponentBlog, Visible: true,
				Layout: models.Layout{Template: "cards", ItemCount: 3},
				Elements: map[string]*models.Element{
					"blog-title": text("blog-title", "<h2>Blog</h2>", "<h2>Blog</h2>"),
				},
			},
			"contact": {
				ID: "contact", Component: models.ComponentContact, Visible: true,
				Layout: models.Layout{Template: "split"},
				Elements: map[string]*models.Element{
					"contact-title": text("contact-title", "<h2>Contact</h2>", "<h2>Contact</h2>"),
					"contact-map": {
						ID: "contact-map", Type: models.ElementMap,
						URL: MapEmbedURL("Bucharest, Romania"),
					},
				},
			},
			"footer": {
				ID: "footer", Component: models.ComponentFooter, Visible: true,
				Layout: models.Layout{Template: "simple"},
				Elements: map[string]*models.Element{
					"footer-text": text("footer-text", "<p>Toate drepturile rezervate.</p>", "<p>All rights reserved.</p>"),
				},
			},
		},
	}
	NormalizeDefaults(cfg)
	return cfg
}
