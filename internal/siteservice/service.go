// Package siteservice owns the live site configuration and coordinates
// storage, history and rebuilds.
package siteservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/starford/sitewright/internal/apperr"
	"github.com/starford/sitewright/internal/history"
	"github.com/starford/sitewright/internal/models"
	"github.com/starford/sitewright/internal/rebuild"
	"github.com/starford/sitewright/internal/site"
	"github.com/starford/sitewright/internal/sse"
)

// Labels of history entries not created by rebuilds.
const (
	LabelInitial      = "initial"
	LabelExternalEdit = "external edit"
)

// EventSink receives service events. *sse.Broker satisfies it.
type EventSink interface {
	Publish(event sse.Event)
	PublishProgress(percent float64, phase string)
}

// RebuildSummary is the payload of a rebuild.completed event.
type RebuildSummary struct {
	Applied         int    `json:"applied"`
	Skipped         int    `json:"skipped"`
	Dropped         int    `json:"dropped"`
	Synthesized     int    `json:"synthesized"`
	ExplanationHTML string `json:"explanationHtml"`
}

// Service coordinates the store, history and rebuilder around one live
// configuration. Mutations (rebuilds, article edits, undo/redo) are
// single-flight: a mutation started while another runs fails with
// apperr.ErrBusy.
type Service struct {
	store     *site.Store
	history   history.Store
	rebuilder *rebuild.Rebuilder
	events    EventSink
	logger    *slog.Logger
	now       func() time.Time

	mu   sync.RWMutex
	live *models.Configuration
	sum  string

	busy atomic.Bool
}

// New creates a site service. events may be nil.
func New(store *site.Store, hist history.Store, rebuilder *rebuild.Rebuilder, events EventSink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		store:     store,
		history:   hist,
		rebuilder: rebuilder,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

// Load reads the configuration from disk, writing the starter configuration
// when none exists, and seeds an empty history with it. Stale section order
// entries are dropped and written back; any other invariant violation fails
// the load.
func (s *Service) Load(ctx context.Context) error {
	cfg, sum, err := s.store.Load()
	if errors.Is(err, apperr.ErrNotFound) {
		cfg = site.Default()
		if sum, err = s.store.Save(cfg); err != nil {
			return fmt.Errorf("siteservice: write default: %w", err)
		}
		s.logger.Info("wrote starter configuration")
	} else if err != nil {
		return fmt.Errorf("siteservice: load: %w", err)
	}

	if site.PruneSectionOrder(cfg) {
		if sum, err = s.store.Save(cfg); err != nil {
			return fmt.Errorf("siteservice: write repaired: %w", err)
		}
		s.logger.Warn("dropped stale section order entries", slog.Any("section_order", cfg.SectionOrder))
	}
	if err := site.Validate(cfg); err != nil {
		return fmt.Errorf("siteservice: load: %w", err)
	}

	s.swap(cfg, sum)

	if _, err := s.history.Current(ctx); errors.Is(err, apperr.ErrNotFound) {
		if err := s.history.Push(ctx, cfg, LabelInitial); err != nil {
			return fmt.Errorf("siteservice: seed history: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("siteservice: history: %w", err)
	}
	return nil
}

// Ready reports apperr.ErrNotLoaded until a configuration is live.
func (s *Service) Ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.live == nil {
		return apperr.ErrNotLoaded
	}
	return nil
}

// Site returns a copy of the live configuration and its checksum.
func (s *Service) Site(_ context.Context) (*models.Configuration, string, error) {
	live, sum := s.snapshot()
	if live == nil {
		return nil, "", apperr.ErrNotLoaded
	}
	cp, err := site.Clone(live)
	if err != nil {
		return nil, "", err
	}
	return cp, sum, nil
}

// Rebuild runs a prompt-driven rebuild. The run is detached from ctx
// cancellation so a dropped client cannot leave it half done.
func (s *Service) Rebuild(ctx context.Context, prompt string, onProgress rebuild.ProgressFunc) (*rebuild.Result, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, apperr.ErrBusy
	}
	defer s.busy.Store(false)
	ctx = context.WithoutCancel(ctx)

	live, _ := s.snapshot()
	progress := func(percent float64, phase rebuild.Phase) {
		if s.events != nil {
			s.events.PublishProgress(percent, string(phase))
		}
		if onProgress != nil {
			onProgress(percent, phase)
		}
	}

	res, err := s.rebuilder.Rebuild(ctx, live, prompt, rebuild.CommitFunc(s.commit), progress)
	if err != nil {
		s.logger.Error("rebuild failed", slog.String("error", err.Error()))
		s.publish(sse.TypeRebuildFailed, map[string]string{"error": err.Error()})
		return nil, err
	}
	s.publish(sse.TypeRebuildCompleted, RebuildSummary{
		Applied:         res.Report.Applied(),
		Skipped:         res.Report.Skipped(),
		Dropped:         res.Dropped,
		Synthesized:     res.Synthesized,
		ExplanationHTML: res.ExplanationHTML,
	})
	return res, nil
}

// Undo restores the previous history snapshot.
func (s *Service) Undo(ctx context.Context) (*models.Configuration, error) {
	return s.restore(ctx, s.history.Undo)
}

// Redo restores the next history snapshot.
func (s *Service) Redo(ctx context.Context) (*models.Configuration, error) {
	return s.restore(ctx, s.history.Redo)
}

func (s *Service) restore(ctx context.Context, move func(context.Context) (*models.Configuration, error)) (*models.Configuration, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, apperr.ErrBusy
	}
	defer s.busy.Store(false)

	if err := s.checkDisk(); err != nil {
		return nil, err
	}
	cfg, err := move(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.commit(ctx, cfg); err != nil {
		return nil, err
	}
	return site.Clone(cfg)
}

// History lists up to limit history entries, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]history.Entry, error) {
	return s.history.List(ctx, limit)
}

// UpdateArticle patches an article, re-slugging it when its title changes.
func (s *Service) UpdateArticle(ctx context.Context, id string, patch models.ArticlePatch) (*models.Article, models.SlugChange, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, models.SlugChange{}, apperr.ErrBusy
	}
	defer s.busy.Store(false)

	live, _ := s.snapshot()
	if live == nil {
		return nil, models.SlugChange{}, apperr.ErrNotLoaded
	}
	working, err := site.Clone(live)
	if err != nil {
		return nil, models.SlugChange{}, err
	}
	change, err := site.UpdateArticle(working, id, patch, s.now().UTC())
	if err != nil {
		return nil, models.SlugChange{}, err
	}
	if err := s.commit(ctx, working); err != nil {
		return nil, models.SlugChange{}, err
	}
	if err := s.history.Push(ctx, working, "edit article "+change.New); err != nil {
		s.logger.Error("history push failed", slog.String("error", err.Error()))
	}
	for _, a := range working.Articles {
		if a.ID == id {
			cp := *a
			return &cp, change, nil
		}
	}
	return nil, change, apperr.ErrNotFound
}

// Reload re-reads the configuration file. A changed checksum makes the file
// live and records an external edit in history. It reports whether anything
// changed, and fails with apperr.ErrBusy while a mutation runs.
func (s *Service) Reload(ctx context.Context) (bool, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return false, apperr.ErrBusy
	}
	defer s.busy.Store(false)

	cfg, sum, err := s.store.Load()
	if err != nil {
		return false, fmt.Errorf("siteservice: reload: %w", err)
	}
	if _, cur := s.snapshot(); cur == sum {
		return false, nil
	}
	if err := site.Validate(cfg); err != nil {
		return false, fmt.Errorf("siteservice: reload: %w", err)
	}
	s.swap(cfg, sum)
	if err := s.history.Push(ctx, cfg, LabelExternalEdit); err != nil {
		s.logger.Error("history push failed", slog.String("error", err.Error()))
	}
	s.publish(sse.TypeSiteUpdated, map[string]string{"checksum": sum, "source": "file"})
	s.logger.Info("configuration reloaded", slog.String("checksum", sum))
	return true, nil
}

// commit persists cfg and makes it live. It refuses with apperr.ErrConflict
// when the file was edited on disk since it was last loaded or saved.
func (s *Service) commit(_ context.Context, cfg *models.Configuration) error {
	if err := s.checkDisk(); err != nil {
		return err
	}
	sum, err := s.store.Save(cfg)
	if err != nil {
		return fmt.Errorf("siteservice: save: %w", err)
	}
	s.swap(cfg, sum)
	s.publish(sse.TypeSiteUpdated, map[string]string{"checksum": sum})
	return nil
}

func (s *Service) checkDisk() error {
	sum, err := s.store.Checksum()
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("siteservice: %w", err)
	}
	if _, live := s.snapshot(); sum != live {
		return fmt.Errorf("siteservice: %s changed on disk: %w", site.ConfigFile, apperr.ErrConflict)
	}
	return nil
}

func (s *Service) swap(cfg *models.Configuration, sum string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live, s.sum = cfg, sum
}

func (s *Service) snapshot() (*models.Configuration, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live, s.sum
}

func (s *Service) publish(typ string, data any) {
	if s.events != nil {
		s.events.Publish(sse.Event{Type: typ, Data: data})
	}
}
