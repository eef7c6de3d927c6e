package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/starford/sitewright/internal/command"
	"github.com/starford/sitewright/internal/models"
	"github.com/starford/sitewright/internal/site"
)

// DefaultConcurrency bounds simultaneous asset lookups when unset.
const DefaultConcurrency = 4

// ErrTargetGone is returned by a Patch whose target no longer resolves.
var ErrTargetGone = errors.New("assets: target not found")

// Patch writes a resolved asset into a configuration.
type Patch func(cfg *models.Configuration) error

// Result is the resolution of one asset command. Exactly one of Patch or
// Reason is set.
type Result struct {
	Index   int
	Command command.AssetCommand
	Patch   Patch
	Reason  string
}

// Resolver resolves asset commands concurrently. Resolution never touches the
// configuration; it produces patches applied afterwards in command order.
type Resolver struct {
	photos      *Photos
	generator   ImageGenerator
	images      ImageStore
	concurrency int
	logger      *slog.Logger
}

// NewResolver creates a Resolver. concurrency <= 0 selects DefaultConcurrency.
func NewResolver(photos *Photos, generator ImageGenerator, images ImageStore, concurrency int, logger *slog.Logger) *Resolver {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if photos == nil {
		photos = NewPhotos(nil, logger)
	}
	return &Resolver{photos: photos, generator: generator, images: images, concurrency: concurrency, logger: logger}
}

// ResolveAll resolves every command. onDone, if set, is called once per
// command as it completes; calls are serialized. Results are in command order.
func (r *Resolver) ResolveAll(ctx context.Context, cmds []command.AssetCommand, onDone func(done, total int)) []Result {
	results := make([]Result, len(cmds))
	var (
		mu   sync.Mutex
		done int
	)
	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, cmd := range cmds {
		g.Go(func() error {
			res := r.resolve(ctx, i, cmd)
			mu.Lock()
			defer mu.Unlock()
			results[i] = res
			done++
			if onDone != nil {
				onDone(done, len(cmds))
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *Resolver) resolve(ctx context.Context, i int, cmd command.AssetCommand) (res Result) {
	res = Result{Index: i, Command: cmd}
	defer func() {
		if p := recover(); p != nil {
			res.Patch = nil
			res.Reason = fmt.Sprintf("panic: %v", p)
		}
	}()
	switch c := cmd.(type) {
	case *command.UpdateImage:
		res.Patch = imagePatch(c.ElementID, r.photos.Find(ctx, c.Query))
	case *command.UpdateBackgroundImage:
		res.Patch = backgroundPatch(c.SectionID, c.ItemID, r.photos.Find(ctx, c.Query).URL)
	case *command.GenerateImage:
		id, err := r.generate(ctx, c)
		if err != nil {
			r.logger.Warn("image generation failed",
				slog.String("element_id", c.ElementID), slog.String("error", err.Error()))
			res.Reason = err.Error()
			return res
		}
		res.Patch = generatedPatch(c.ElementID, id)
	default:
		res.Reason = fmt.Sprintf("unsupported asset command %s", cmd.Kind())
	}
	return res
}

func (r *Resolver) generate(ctx context.Context, c *command.GenerateImage) (string, error) {
	if r.generator == nil || r.images == nil {
		return "", errors.New("assets: image generation not configured")
	}
	payload, err := r.generator.Generate(ctx, c.Prompt, c.Ratio())
	if err != nil {
		return "", fmt.Errorf("assets: generate: %w", err)
	}
	id, err := r.images.Store(ctx, payload)
	if err != nil {
		return "", fmt.Errorf("assets: store: %w", err)
	}
	return id, nil
}

// Apply runs the patches of results against cfg in order and reports an
// outcome per result.
func Apply(cfg *models.Configuration, results []Result) []command.Outcome {
	out := make([]command.Outcome, 0, len(results))
	for _, res := range results {
		if res.Patch == nil {
			out = append(out, command.Skipped(res.Index, res.Command, res.Reason))
			continue
		}
		if err := res.Patch(cfg); err != nil {
			out = append(out, command.Skipped(res.Index, res.Command, err.Error()))
			continue
		}
		out = append(out, command.Applied(res.Index, res.Command))
	}
	return out
}

func imagePatch(elementID string, photo Photo) Patch {
	return func(cfg *models.Configuration) error {
		loc := site.Locate(cfg, elementID)
		if !loc.Found() {
			return fmt.Errorf("%w: element %q", ErrTargetGone, elementID)
		}
		el := loc.Element
		switch el.Type {
		case models.ElementImage:
			el.URL = photo.URL
			el.Alt = models.Localized{RO: photo.Alt, EN: photo.Alt}
		case models.ElementLogo:
			el.LogoType = models.LogoImage
			el.ImageURL = photo.URL
		default:
			return fmt.Errorf("assets: element %q is %s, not an image", elementID, el.Type)
		}
		return nil
	}
}

func generatedPatch(elementID, imageID string) Patch {
	ref := site.AssetURL(imageID)
	return func(cfg *models.Configuration) error {
		loc := site.Locate(cfg, elementID)
		if !loc.Found() {
			return fmt.Errorf("%w: element %q", ErrTargetGone, elementID)
		}
		el := loc.Element
		switch el.Type {
		case models.ElementLogo:
			el.LogoType = models.LogoImage
			el.ImageURL = ref
		case models.ElementImage:
			el.URL = ref
		default:
			return fmt.Errorf("assets: element %q is %s, not an image", elementID, el.Type)
		}
		cfg.Images[imageID] = ref
		return nil
	}
}

// BackgroundStyles is the style set written for a background photo.
func BackgroundStyles(photoURL string) models.Styles {
	return models.Styles{
		"backgroundImage":    "linear-gradient(rgba(0, 0, 0, 0.5), rgba(0, 0, 0, 0.5)), url('" + photoURL + "')",
		"backgroundSize":     "cover",
		"backgroundPosition": "center",
	}
}

func backgroundPatch(sectionID string, itemID *int, photoURL string) Patch {
	return func(cfg *models.Configuration) error {
		sec, ok := cfg.Sections[sectionID]
		if !ok || sec == nil {
			return fmt.Errorf("%w: section %q", ErrTargetGone, sectionID)
		}
		if itemID == nil {
			sec.Styles = site.MergeStyles(sec.Styles, BackgroundStyles(photoURL))
			return nil
		}
		for _, it := range sec.Items {
			if it != nil && it.ID == *itemID {
				it.Styles = site.MergeStyles(it.Styles, BackgroundStyles(photoURL))
				return nil
			}
		}
		return fmt.Errorf("%w: item %d in section %q", ErrTargetGone, *itemID, sectionID)
	}
}
