package site

import (
	"context"
	"encoding/base64"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/starford/sitewright/internal/apperr"
	"github.com/starford/sitewright/internal/models"
	"github.com/starford/sitewright/internal/storage"
)

func TestLocate_SectionElement(t *testing.T) {
	cfg := Default()
	loc := Locate(cfg, "hero-title-1")
	if !loc.Found() {
		t.Fatal("hero-title-1 not found")
	}
	if loc.Section == nil || loc.Section.ID != "hero" {
		t.Errorf("owner = %+v, want hero", loc.Section)
	}
	if loc.Page != nil {
		t.Error("page should be nil for a section element")
	}
}

func TestLocate_PageElement(t *testing.T) {
	cfg := Default()
	cfg.Pages = map[string]*models.Page{
		"terms": {ID: "terms", Elements: map[string]*models.Element{
			"terms-body": {ID: "terms-body", Type: models.ElementRichText},
		}},
	}
	loc := Locate(cfg, "terms-body")
	if !loc.Found() || loc.Page == nil || loc.Page.ID != "terms" {
		t.Fatalf("Locate = %+v, want page terms", loc)
	}
	if loc.Section != nil {
		t.Error("section should be nil for a page element")
	}
}

func TestLocate_MissingIsNotFound(t *testing.T) {
	cfg := Default()
	for _, id := range []string{"", "invented-id", "hero"} {
		if Locate(cfg, id).Found() {
			t.Errorf("Locate(%q) should not be found", id)
		}
	}
	if Locate(nil, "hero-title-1").Found() {
		t.Error("nil configuration should not resolve")
	}
}

func TestClone_IsDeep(t *testing.T) {
	cfg := Default()
	cp, err := Clone(cfg)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if !reflect.DeepEqual(cfg, cp) {
		t.Fatal("clone differs from original")
	}
	cp.Sections["hero"].Elements["hero-title-1"].Content.EN = "changed"
	cp.SectionOrder[0] = "x"
	cp.Images["a"] = "b"
	if cfg.Sections["hero"].Elements["hero-title-1"].Content.EN == "changed" {
		t.Error("element shared between clone and original")
	}
	if cfg.SectionOrder[0] == "x" {
		t.Error("section order shared")
	}
	if _, ok := cfg.Images["a"]; ok {
		t.Error("images map shared")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg.SectionOrder = append(cfg.SectionOrder, "ghost")
	if err := Validate(cfg); err == nil {
		t.Error("expected error for unknown section in order")
	}

	cfg = Default()
	cfg.SectionOrder = append(cfg.SectionOrder, "hero")
	if err := Validate(cfg); err == nil {
		t.Error("expected error for duplicate order entry")
	}

	cfg = Default()
	cfg.Sections["about"].Elements["hero-title-1"] = &models.Element{ID: "hero-title-1"}
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "owned by both") {
		t.Errorf("expected ownership error, got %v", err)
	}
}

func TestPruneSectionOrder(t *testing.T) {
	cfg := Default()
	want := append([]string(nil), cfg.SectionOrder...)
	if PruneSectionOrder(cfg) {
		t.Error("default order reported as pruned")
	}

	cfg.SectionOrder = append([]string{"ghost"}, cfg.SectionOrder...)
	cfg.SectionOrder = append(cfg.SectionOrder, "hero")
	if !PruneSectionOrder(cfg) {
		t.Error("stale entries not reported")
	}
	if strings.Join(cfg.SectionOrder, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", cfg.SectionOrder, want)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("pruned config invalid: %v", err)
	}
}

func TestDecode_Defaults(t *testing.T) {
	cfg, err := Decode([]byte(`{"sections":{"hero":{"component":"hero","visible":true,"elements":{"hero-t":{"type":"rich-text","content":{"ro":"a","en":"b"}}}}},"sectionOrder":["hero"]}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	sec := cfg.Sections["hero"]
	if sec.ID != "hero" || sec.Elements["hero-t"].ID != "hero-t" {
		t.Errorf("IDs not filled from keys: %q %q", sec.ID, sec.Elements["hero-t"].ID)
	}
	if !sec.ShowsNavLink() {
		t.Error("navLinkVisible should default to true")
	}
	if cfg.Images == nil || cfg.Articles == nil {
		t.Error("nil collections not initialised")
	}
}

func TestRenameSectionPrefix(t *testing.T) {
	cases := []struct{ id, want string }{
		{"hero-title-1", "hero-ab12-title-1"},
		{"hero", "hero-ab12"},
		{"heroic-title", "heroic-title"},
		{"about-text", "about-text"},
	}
	for _, c := range cases {
		if got := RenameSectionPrefix(c.id, "hero", "hero-ab12"); got != c.want {
			t.Errorf("RenameSectionPrefix(%q) = %q, want %q", c.id, got, c.want)
		}
	}
}

func TestRenameSectionPrefix_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("renamed owned IDs move to the new section and keep their suffix", prop.ForAll(
		func(section, suffix, newID string) bool {
			if section == "" || suffix == "" || newID == "" {
				return true
			}
			id := section + "-" + suffix
			got := RenameSectionPrefix(id, section, newID)
			return OwnedBy(got, newID) && strings.HasSuffix(got, "-"+suffix)
		},
		gen.Identifier(), gen.Identifier(), gen.Identifier(),
	))

	properties.TestingRun(t)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":                   "hello-world",
		"  Știri și noutăți în țară!  ": "stiri-si-noutati-in-tara",
		"Ce înseamnă SEO?":              "ce-inseamna-seo",
		"100% natural -- organic":       "100-natural-organic",
		"???":                           "article",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSlugify_Property(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	properties.Property("slugs are URL safe", prop.ForAll(
		func(s string) bool {
			slug := Slugify(s)
			if slug == "" || strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") || strings.Contains(slug, "--") {
				return false
			}
			for _, r := range slug {
				if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
	))
	properties.TestingRun(t)
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]struct{}{"news": {}, "news-2": {}}
	if got := UniqueSlug("news", taken); got != "news-3" {
		t.Errorf("UniqueSlug = %q, want news-3", got)
	}
	if got := UniqueSlug("fresh", taken); got != "fresh" {
		t.Errorf("UniqueSlug = %q, want fresh", got)
	}
}

func TestSanitize_RichTextAndArticles(t *testing.T) {
	cfg := Default()
	el := cfg.Sections["hero"].Elements["hero-title-1"]
	el.Content.RO = `<h1 onclick="steal()">Titlu</h1><script>alert(1)</script>`
	el.Content.EN = `<a href="javascript:alert(1)">x</a>`
	cfg.Articles = append(cfg.Articles, &models.Article{ID: "a1", Content: models.Localized{RO: "<p>ok</p><script>x</script>", EN: "<p>ok</p>"}})

	Sanitize(cfg)

	for _, s := range []string{el.Content.RO, el.Content.EN, cfg.Articles[0].Content.RO} {
		if strings.Contains(s, "<script") || strings.Contains(s, "onclick") || strings.Contains(s, "javascript:") {
			t.Errorf("unsafe markup survived: %q", s)
		}
	}
	if !strings.Contains(el.Content.RO, "Titlu") {
		t.Errorf("safe text dropped: %q", el.Content.RO)
	}
}

func TestSanitize_KeepsInlineFormatting(t *testing.T) {
	cfg := Default()
	el := cfg.Sections["hero"].Elements["hero-title-1"]
	el.Content.RO = `<p style="text-align:center" onclick="steal()"><span style="color:#ff0000">Tom's café</span></p>`
	el.Content.EN = `<h2 style="font-size:2rem;background-image:url(javascript:alert(1))">Title</h2>`

	Sanitize(cfg)

	for _, want := range []string{"text-align: center", "color: #ff0000", "café"} {
		if !strings.Contains(el.Content.RO, want) {
			t.Errorf("RO = %q, missing %q", el.Content.RO, want)
		}
	}
	if strings.Contains(el.Content.RO, "onclick") {
		t.Errorf("event handler survived: %q", el.Content.RO)
	}
	if !strings.Contains(el.Content.EN, "font-size: 2rem") {
		t.Errorf("EN = %q, font size dropped", el.Content.EN)
	}
	if strings.Contains(el.Content.EN, "javascript") || strings.Contains(el.Content.EN, "background-image") {
		t.Errorf("unsafe style survived: %q", el.Content.EN)
	}
}

func TestSanitizeHTML_RejectsUnsafeStyleValues(t *testing.T) {
	for _, in := range []string{
		`<p style="color:expression(alert(1))">x</p>`,
		`<p style="text-align:url(x)">x</p>`,
		`<p style="position:fixed">x</p>`,
	} {
		if got := SanitizeHTML(in); strings.Contains(got, "style") {
			t.Errorf("SanitizeHTML(%q) = %q", in, got)
		}
	}
}

func TestSanitize_FillsMissingLanguage(t *testing.T) {
	cfg := Default()
	el := cfg.Sections["about"].Elements["about-text"]
	el.Content.EN = ""
	Sanitize(cfg)
	if el.Content.EN != el.Content.RO {
		t.Errorf("EN = %q, want copy of RO %q", el.Content.EN, el.Content.RO)
	}
}

func TestUpdateArticle(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Default()
	cfg.Articles = []*models.Article{
		{ID: "a1", Slug: "first-post", Title: models.Localized{RO: "Prima", EN: "First post"}, CreatedAt: created, UpdatedAt: created},
		{ID: "a2", Slug: "second-post", Title: models.Localized{RO: "A doua", EN: "Second post"}, CreatedAt: created, UpdatedAt: created},
	}
	now := created.Add(time.Hour)

	change, err := UpdateArticle(cfg, "a1", models.ArticlePatch{Title: &models.Localized{RO: "A doua", EN: "Second post"}}, now)
	if err != nil {
		t.Fatalf("UpdateArticle: %v", err)
	}
	if !change.Changed() || change.Old != "first-post" || change.New != "second-post-2" {
		t.Errorf("change = %+v", change)
	}
	if !cfg.Articles[0].UpdatedAt.Equal(now) || !cfg.Articles[0].CreatedAt.Equal(created) {
		t.Errorf("timestamps = %v / %v", cfg.Articles[0].CreatedAt, cfg.Articles[0].UpdatedAt)
	}

	excerpt := models.Localized{RO: "r", EN: "e"}
	change, err = UpdateArticle(cfg, "a2", models.ArticlePatch{Excerpt: &excerpt}, now)
	if err != nil || change.Changed() {
		t.Errorf("excerpt-only update changed slug: %+v, %v", change, err)
	}

	if _, err := UpdateArticle(cfg, "missing", models.ArticlePatch{}, now); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_SaveLoad(t *testing.T) {
	fs, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store := NewStore(fs)
	if _, _, err := store.Load(); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("Load on empty site = %v, want ErrNotFound", err)
	}
	cfg := Default()
	sum, err := store.Save(cfg)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, loadSum, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sum != loadSum {
		t.Errorf("checksum mismatch %s vs %s", sum, loadSum)
	}
	if !reflect.DeepEqual(cfg, got) {
		t.Error("loaded configuration differs from saved")
	}
}

// 1x1 transparent PNG.
const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func TestImageStore(t *testing.T) {
	fs, _ := storage.NewFS(t.TempDir())
	images := NewImageStore(fs)

	id, err := images.Store(context.Background(), pixelPNG)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !strings.HasSuffix(id, ".png") {
		t.Errorf("id = %q, want .png suffix", id)
	}
	if ok, _ := fs.Exists(AssetsDir + "/" + id); !ok {
		t.Error("image file not written")
	}
	if AssetURL(id) != "/assets/"+id {
		t.Errorf("AssetURL = %q", AssetURL(id))
	}

	if _, err := images.Store(context.Background(), "data:image/png;base64,"+pixelPNG); err != nil {
		t.Errorf("data URI payload rejected: %v", err)
	}
	if _, err := images.Store(context.Background(), "%%%"); err == nil {
		t.Error("expected error for invalid base64")
	}
	notImage := base64.StdEncoding.EncodeToString([]byte("plain text, not an image"))
	if _, err := images.Store(context.Background(), notImage); err == nil {
		t.Error("expected error for non-image payload")
	}
}

func TestMapEmbedURL(t *testing.T) {
	got := MapEmbedURL("Str. Lipscani 10, București")
	if !strings.HasPrefix(got, "https://maps.google.com/maps?q=Str.+Lipscani+10%2C+Bucure%C8%99ti") {
		t.Errorf("MapEmbedURL = %q", got)
	}
	if !strings.HasSuffix(got, "output=embed") {
		t.Errorf("missing embed flag: %q", got)
	}
}
