package command

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/yuin/goldmark"

	"github.com/starford/sitewright/internal/site"
)

// Plan is an interpreted generation payload ready for execution.
type Plan struct {
	Assets          []AssetCommand
	Structural      []Command
	ExplanationHTML string
	Dropped         int
	Synthesized     int
}

// Len returns the number of executable commands.
func (p *Plan) Len() int {
	return len(p.Assets) + len(p.Structural)
}

// HasExplanation reports whether the payload carried its own explanation.
func (p *Plan) HasExplanation() bool {
	return p.ExplanationHTML != ""
}

// Interpreter parses payloads and enforces the coverage rules.
type Interpreter struct {
	logger *slog.Logger
}

// NewInterpreter creates an Interpreter. A nil logger discards output.
func NewInterpreter(logger *slog.Logger) *Interpreter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Interpreter{logger: logger}
}

// Interpret turns raw generation output into a Plan.
func (in *Interpreter) Interpret(raw string) (*Plan, error) {
	cmds, dropped := Parse(raw)
	for _, d := range dropped {
		in.logger.Warn("dropped command line", slog.Int("line", d.Line), slog.String("error", d.Err.Error()))
	}
	if len(cmds) == 0 {
		return nil, ErrNoValidCommands
	}

	plan := &Plan{Dropped: len(dropped)}

	var explanation *Explanation
	if last, ok := cmds[len(cmds)-1].(*Explanation); ok {
		explanation = last
		cmds = cmds[:len(cmds)-1]
	}

	cmds, plan.Synthesized = ensureCoverage(cmds)
	if plan.Synthesized > 0 {
		in.logger.Info("synthesized coverage commands", slog.Int("count", plan.Synthesized))
	}

	for _, c := range cmds {
		switch c := c.(type) {
		case AssetCommand:
			plan.Assets = append(plan.Assets, c)
		case *Explanation:
			in.logger.Debug("ignoring explanation before end of payload")
		default:
			plan.Structural = append(plan.Structural, c)
		}
	}

	if explanation != nil {
		html, err := RenderExplanation(explanation.Text)
		if err != nil {
			return nil, err
		}
		plan.ExplanationHTML = html
	}
	return plan, nil
}

// ensureCoverage appends a logo generation and filler articles when cmds lack
// them. It returns the extended list and the number of commands added.
func ensureCoverage(cmds []Command) ([]Command, int) {
	hasLogo := false
	articles := 0
	for _, c := range cmds {
		switch c := c.(type) {
		case *GenerateImage:
			if c.ElementID == site.HeaderLogoID {
				hasLogo = true
			}
		case *CreateArticle:
			articles++
		}
	}
	added := 0
	if !hasLogo {
		cmds = append(cmds, FallbackLogo())
		added++
	}
	if missing := MinArticles - articles; missing > 0 {
		for _, a := range FallbackArticles(missing) {
			cmds = append(cmds, a)
		}
		added += missing
	}
	return cmds, added
}

var markdown = goldmark.New()

// RenderExplanation converts explanation text to HTML. Blank lines separate
// paragraphs and **bold** becomes <strong>; raw HTML is omitted.
func RenderExplanation(text string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("command: render explanation: %w", err)
	}
	return buf.String(), nil
}

// DefaultExplanation renders the summary used when a payload had none.
func DefaultExplanation(applied, skipped int) string {
	html, err := RenderExplanation(fmt.Sprintf(
		"The site was rebuilt.\n\n**%d** changes were applied and **%d** were skipped.", applied, skipped))
	if err != nil {
		return "<p>The site was rebuilt.</p>\n"
	}
	return html
}
