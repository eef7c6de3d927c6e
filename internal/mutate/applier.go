// Package mutate applies structural commands to a configuration.
package mutate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/sitewright/internal/assets"
	"github.com/starford/sitewright/internal/command"
	"github.com/starford/sitewright/internal/models"
	"github.com/starford/sitewright/internal/site"
)

var (
	errElementNotFound = errors.New("element not found")
	errSectionNotFound = errors.New("section not found")
)

// Applier executes structural commands in order against a configuration it
// is handed. It never stops on a failing command: every command yields an
// applied or skipped outcome.
type Applier struct {
	photos *assets.Photos
	now    func() time.Time
	logger *slog.Logger
}

// Option configures an Applier.
type Option func(*Applier)

// WithClock overrides the time source used for article timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Applier) { a.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Applier) { a.logger = l }
}

// NewApplier creates an Applier. photos supplies article images.
func NewApplier(photos *assets.Photos, opts ...Option) *Applier {
	a := &Applier{
		photos: photos,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(a)
	}
	if a.photos == nil {
		a.photos = assets.NewPhotos(nil, a.logger)
	}
	return a
}

// Apply runs cmds against cfg. onStep, if set, is called after each command.
// The batch ends with a sanitize pass over the whole tree.
func (a *Applier) Apply(ctx context.Context, cfg *models.Configuration, cmds []command.Command, onStep func(done, total int)) command.Report {
	var report command.Report
	for i, cmd := range cmds {
		o := a.applyOne(ctx, cfg, i, cmd)
		if o.Status == command.StatusSkipped {
			a.logger.Warn("command skipped",
				slog.String("kind", string(o.Kind)),
				slog.String("target", o.Target),
				slog.String("reason", o.Reason))
		}
		report.Add(o)
		if onStep != nil {
			onStep(i+1, len(cmds))
		}
	}
	site.Sanitize(cfg)
	return report
}

func (a *Applier) applyOne(ctx context.Context, cfg *models.Configuration, i int, cmd command.Command) (out command.Outcome) {
	defer func() {
		if p := recover(); p != nil {
			out = command.Skipped(i, cmd, fmt.Sprintf("panic: %v", p))
		}
	}()
	newID, err := a.dispatch(ctx, cfg, cmd)
	if err != nil {
		return command.Skipped(i, cmd, err.Error())
	}
	out = command.Applied(i, cmd)
	out.NewID = newID
	return out
}

func (a *Applier) dispatch(ctx context.Context, cfg *models.Configuration, cmd command.Command) (string, error) {
	switch c := cmd.(type) {
	case *command.UpdateContent:
		return "", updateContent(cfg, c)
	case *command.UpdateStyles:
		return "", updateStyles(cfg, c)
	case *command.UpdateCardStyles:
		return "", updateCardStyles(cfg, c)
	case *command.UpdateLayout:
		return "", updateLayout(cfg, c)
	case *command.UpdateMap:
		return "", updateMap(cfg, c)
	case *command.ToggleVisibility:
		return "", toggleVisibility(cfg, c)
	case *command.ReorderSections:
		return "", reorderSections(cfg, c)
	case *command.DuplicateSection:
		return duplicateSection(cfg, c)
	case *command.CreateArticle:
		return a.createArticle(ctx, cfg, c)
	case command.AssetCommand:
		return "", fmt.Errorf("asset command %s is not structural", c.Kind())
	default:
		return "", fmt.Errorf("unsupported command %s", cmd.Kind())
	}
}

func section(cfg *models.Configuration, id string) (*models.Section, error) {
	sec, ok := cfg.Sections[id]
	if !ok || sec == nil {
		return nil, fmt.Errorf("%w: %q", errSectionNotFound, id)
	}
	return sec, nil
}
