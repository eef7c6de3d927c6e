// Package rebuild orchestrates one prompt-driven rebuild of the site
// configuration: generation, interpretation, asset resolution, mutation and
// commit.
package rebuild

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/sitewright/internal/apperr"
	"github.com/starford/sitewright/internal/assets"
	"github.com/starford/sitewright/internal/command"
	"github.com/starford/sitewright/internal/models"
	"github.com/starford/sitewright/internal/mutate"
	"github.com/starford/sitewright/internal/site"
)

// ModeRebuild is the generation mode passed for full rebuilds.
const ModeRebuild = "rebuild"

// ErrGeneration wraps failures of the text generation backend.
var ErrGeneration = errors.New("rebuild: generation failed")

// Generator produces the raw command payload for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt, mode string) (string, error)
}

// History records committed configurations.
type History interface {
	Push(ctx context.Context, cfg *models.Configuration, label string) error
}

// Committer makes a rebuilt configuration live.
type Committer interface {
	Commit(ctx context.Context, cfg *models.Configuration) error
}

// CommitFunc adapts a function to Committer.
type CommitFunc func(ctx context.Context, cfg *models.Configuration) error

// Commit calls f.
func (f CommitFunc) Commit(ctx context.Context, cfg *models.Configuration) error { return f(ctx, cfg) }

// Result summarises a committed rebuild.
type Result struct {
	Config          *models.Configuration `json:"config"`
	ExplanationHTML string                `json:"explanationHtml"`
	Report          command.Report        `json:"report"`
	Dropped         int                   `json:"dropped"`
	Synthesized     int                   `json:"synthesized"`
	Duration        time.Duration         `json:"durationNs"`
}

// Rebuilder runs rebuilds. It holds no per-run state; callers serialize runs.
type Rebuilder struct {
	generator   Generator
	interpreter *command.Interpreter
	resolver    *assets.Resolver
	applier     *mutate.Applier
	history     History
	logger      *slog.Logger
}

// New creates a Rebuilder.
func New(generator Generator, resolver *assets.Resolver, applier *mutate.Applier, history History, logger *slog.Logger) *Rebuilder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Rebuilder{
		generator:   generator,
		interpreter: command.NewInterpreter(logger),
		resolver:    resolver,
		applier:     applier,
		history:     history,
		logger:      logger,
	}
}

// Rebuild runs the full pipeline against a clone of live. Fatal errors leave
// live untouched and nothing is committed. On success the patched clone is
// passed to commit and pushed to history once.
func (r *Rebuilder) Rebuild(ctx context.Context, live *models.Configuration, prompt string, commit Committer, onProgress ProgressFunc) (*Result, error) {
	if live == nil {
		return nil, apperr.ErrNotLoaded
	}
	start := time.Now()
	progress := newMonotonic(onProgress)

	progress.report(pctAnalyzing, PhaseAnalyzing)
	cfgJSON, err := json.Marshal(live)
	if err != nil {
		return nil, fmt.Errorf("rebuild: encode configuration: %w", err)
	}

	progress.report(pctGenerating, PhaseGeneratingPlan)
	raw, err := r.generator.Generate(ctx, command.BuildPrompt(cfgJSON, prompt), ModeRebuild)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	plan, err := r.interpreter.Interpret(raw)
	if err != nil {
		return nil, err
	}
	progress.report(pctProcessing, PhaseProcessingCommands)
	r.logger.Info("rebuild plan ready",
		slog.Int("assets", len(plan.Assets)),
		slog.Int("structural", len(plan.Structural)),
		slog.Int("dropped", plan.Dropped),
		slog.Int("synthesized", plan.Synthesized))

	working, err := site.Clone(live)
	if err != nil {
		return nil, fmt.Errorf("rebuild: %w", err)
	}

	var report command.Report
	progress.report(pctAssetsStart, PhaseFetchingAssets)
	results := r.resolver.ResolveAll(ctx, plan.Assets, func(done, total int) {
		progress.report(span(pctAssetsStart, pctAssetsEnd, done, total), PhaseFetchingAssets)
	})
	report.Add(assets.Apply(working, results)...)

	progress.report(pctAssetsEnd, PhaseApplyingChanges)
	structural := r.applier.Apply(ctx, working, plan.Structural, func(done, total int) {
		progress.report(span(pctAssetsEnd, pctApplyEnd, done, total), PhaseApplyingChanges)
	})
	report.Add(structural.Outcomes...)

	progress.report(pctFinalizing, PhaseFinalizing)
	if err := site.Validate(working); err != nil {
		return nil, fmt.Errorf("rebuild: result failed validation: %w", err)
	}
	if commit != nil {
		if err := commit.Commit(ctx, working); err != nil {
			return nil, fmt.Errorf("rebuild: commit: %w", err)
		}
	}
	if r.history != nil {
		if err := r.history.Push(ctx, working, historyLabel(prompt)); err != nil {
			r.logger.Error("history push failed", slog.String("error", err.Error()))
		}
	}

	explanation := plan.ExplanationHTML
	if explanation == "" {
		explanation = command.DefaultExplanation(report.Applied(), report.Skipped())
	}
	res := &Result{
		Config:          working,
		ExplanationHTML: explanation,
		Report:          report,
		Dropped:         plan.Dropped,
		Synthesized:     plan.Synthesized,
		Duration:        time.Since(start),
	}
	r.logger.Info("rebuild committed",
		slog.Int("applied", report.Applied()),
		slog.Int("skipped", report.Skipped()),
		slog.String("duration", res.Duration.String()))
	return res, nil
}

const maxLabelRunes = 60

func historyLabel(prompt string) string {
	runes := []rune(prompt)
	if len(runes) > maxLabelRunes {
		return "rebuild: " + string(runes[:maxLabelRunes]) + "…"
	}
	return "rebuild: " + prompt
}
