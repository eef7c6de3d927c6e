package rebuild

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/starford/sitewright/internal/apperr"
	"github.com/starford/sitewright/internal/assets"
	"github.com/starford/sitewright/internal/command"
	"github.com/starford/sitewright/internal/models"
	"github.com/starford/sitewright/internal/mutate"
	"github.com/starford/sitewright/internal/site"
)

type fakeGenerator struct {
	out    string
	err    error
	prompt string
	mode   string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt, mode string) (string, error) {
	g.prompt, g.mode = prompt, mode
	return g.out, g.err
}

type fakeHistory struct {
	mu     sync.Mutex
	labels []string
}

func (h *fakeHistory) Push(_ context.Context, _ *models.Configuration, label string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.labels = append(h.labels, label)
	return nil
}

type failingPhotos struct{}

func (failingPhotos) Search(context.Context, string) ([]assets.Photo, error) {
	return nil, errors.New("search down")
}

type fakeImages struct{}

func (fakeImages) Generate(context.Context, string, string) (string, error) { return "aGk=", nil }
func (fakeImages) Store(context.Context, string) (string, error)          { return "logo.png", nil }

func newRebuilder(gen Generator, hist History) *Rebuilder {
	photos := assets.NewPhotos(failingPhotos{}, nil)
	resolver := assets.NewResolver(photos, fakeImages{}, fakeImages{}, 2, nil)
	return New(gen, resolver, mutate.NewApplier(photos), hist, nil)
}

type commitRecorder struct {
	got *models.Configuration
	n   int
}

func (c *commitRecorder) Commit(_ context.Context, cfg *models.Configuration) error {
	c.got = cfg
	c.n++
	return nil
}

func TestRebuild_HeroTitle(t *testing.T) {
	live := site.Default()
	gen := &fakeGenerator{out: `{"command":"update_element_content","element_id":"hero-title-1","lang":"en","content":"<h1>Fresh Bakes</h1>"}` + "\n" +
		`{"command":"explanation","text":"Renamed the **hero**."}`}
	hist := &fakeHistory{}
	commit := &commitRecorder{}

	res, err := newRebuilder(gen, hist).Rebuild(context.Background(), live, "make it a bakery", commit, nil)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if gen.mode != ModeRebuild || !strings.Contains(gen.prompt, "make it a bakery") || !strings.Contains(gen.prompt, "hero-title-1") {
		t.Errorf("generator got mode %q, prompt missing parts", gen.mode)
	}
	if commit.n != 1 || commit.got != res.Config {
		t.Fatalf("commit calls = %d", commit.n)
	}
	if got := res.Config.Sections["hero"].Elements["hero-title-1"].Content.EN; got != "<h1>Fresh Bakes</h1>" {
		t.Errorf("hero title = %q", got)
	}
	if live.Sections["hero"].Elements["hero-title-1"].Content.EN != "<h1>Welcome</h1>" {
		t.Error("live configuration mutated in place")
	}
	if len(hist.labels) != 1 || hist.labels[0] != "rebuild: make it a bakery" {
		t.Errorf("history = %v", hist.labels)
	}
	if res.Synthesized != 4 || len(res.Config.Articles) != 3 {
		t.Errorf("synthesized = %d, articles = %d", res.Synthesized, len(res.Config.Articles))
	}
	logo := res.Config.Sections["header"].Elements[site.HeaderLogoID]
	if logo.LogoType != models.LogoImage || logo.ImageURL != "/assets/logo.png" {
		t.Errorf("logo = %+v", logo)
	}
	if !strings.Contains(res.ExplanationHTML, "<strong>hero</strong>") {
		t.Errorf("explanation = %q", res.ExplanationHTML)
	}
	if res.Report.Applied()+res.Report.Skipped() != 1+4 {
		t.Errorf("report = %+v", res.Report)
	}
}

func TestRebuild_FatalErrorsLeaveLiveUntouched(t *testing.T) {
	cases := map[string]struct {
		gen  *fakeGenerator
		want error
	}{
		"generation failure": {gen: &fakeGenerator{err: errors.New("upstream 500")}, want: ErrGeneration},
		"no valid commands":  {gen: &fakeGenerator{out: "I cannot help with that."}, want: command.ErrNoValidCommands},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			live := site.Default()
			before, _ := site.Clone(live)
			hist := &fakeHistory{}
			commit := &commitRecorder{}

			_, err := newRebuilder(tc.gen, hist).Rebuild(context.Background(), live, "anything", commit, nil)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if !reflect.DeepEqual(live, before) {
				t.Error("live configuration changed on fatal error")
			}
			if commit.n != 0 || len(hist.labels) != 0 {
				t.Errorf("commit = %d, history = %v", commit.n, hist.labels)
			}
		})
	}
}

func TestRebuild_NotLoaded(t *testing.T) {
	_, err := newRebuilder(&fakeGenerator{}, nil).Rebuild(context.Background(), nil, "x", nil, nil)
	if !errors.Is(err, apperr.ErrNotLoaded) {
		t.Errorf("err = %v", err)
	}
}

func TestRebuild_ExplanationOnlyAndDefaultExplanation(t *testing.T) {
	gen := &fakeGenerator{out: `{"command":"explanation","text":"Only words."}`}
	res, err := newRebuilder(gen, nil).Rebuild(context.Background(), site.Default(), "x", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Config.Articles) != 3 {
		t.Errorf("articles = %d, want 3", len(res.Config.Articles))
	}
	for _, a := range res.Config.Articles {
		if !strings.HasPrefix(a.ImageURL, "https://picsum.photos/seed/") {
			t.Errorf("article image = %q, want placeholder", a.ImageURL)
		}
	}

	gen = &fakeGenerator{out: `{"command":"toggle_visibility","section_id":"blog","visible":false}`}
	res, err = newRebuilder(gen, nil).Rebuild(context.Background(), site.Default(), "x", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.ExplanationHTML, "rebuilt") {
		t.Errorf("default explanation = %q", res.ExplanationHTML)
	}
}

func TestRebuild_ProgressIsMonotonic(t *testing.T) {
	gen := &fakeGenerator{out: strings.Join([]string{
		`{"command":"update_image","element_id":"hero-image-1","query":"mountains"}`,
		`{"command":"update_background_image","section_id":"hero","query":"sea"}`,
		`{"command":"toggle_visibility","section_id":"blog","visible":true}`,
	}, "\n")}
	var (
		mu     sync.Mutex
		values []float64
		phases []Phase
	)
	_, err := newRebuilder(gen, nil).Rebuild(context.Background(), site.Default(), "x", nil, func(p float64, ph Phase) {
		mu.Lock()
		defer mu.Unlock()
		values = append(values, p)
		phases = append(phases, ph)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(values) == 0 || values[0] != 5 || values[len(values)-1] != 100 {
		t.Fatalf("progress = %v", values)
	}
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			t.Fatalf("progress decreased at %d: %v", i, values)
		}
	}
	if phases[0] != PhaseAnalyzing || phases[len(phases)-1] != PhaseFinalizing {
		t.Errorf("phases = %v", phases)
	}
}

func TestMonotonicGuard(t *testing.T) {
	var got []float64
	m := newMonotonic(func(p float64, _ Phase) { got = append(got, p) })
	for _, p := range []float64{5, 10, 8, 50, 49, 100} {
		m.report(p, PhaseAnalyzing)
	}
	want := []float64{5, 10, 10, 50, 50, 100}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestHistoryLabelTruncates(t *testing.T) {
	long := strings.Repeat("ă", 100)
	label := historyLabel(long)
	if !strings.HasSuffix(label, "…") || len([]rune(label)) != len([]rune("rebuild: "))+maxLabelRunes+1 {
		t.Errorf("label = %q", label)
	}
}
