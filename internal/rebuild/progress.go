package rebuild

import "sync"

// Phase labels a stage of a rebuild run.
type Phase string

// Rebuild phases in execution order.
const (
	PhaseAnalyzing          Phase = "analyzing"
	PhaseGeneratingPlan     Phase = "generating_plan"
	PhaseProcessingCommands Phase = "processing_commands"
	PhaseFetchingAssets     Phase = "fetching_assets"
	PhaseApplyingChanges    Phase = "applying_changes"
	PhaseFinalizing         Phase = "finalizing"
)

// Progress checkpoints.
const (
	pctAnalyzing   = 5
	pctGenerating  = 10
	pctProcessing  = 50
	pctAssetsStart = 60
	pctAssetsEnd   = 85
	pctApplyEnd    = 100
	pctFinalizing  = 100
)

// ProgressFunc receives progress updates in percent.
type ProgressFunc func(percent float64, phase Phase)

// monotonic forwards updates to fn, dropping any that would move the
// percentage backwards. Safe for concurrent use.
type monotonic struct {
	mu   sync.Mutex
	last float64
	fn   ProgressFunc
}

func newMonotonic(fn ProgressFunc) *monotonic {
	return &monotonic{fn: fn, last: -1}
}

func (m *monotonic) report(percent float64, phase Phase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if percent < m.last {
		percent = m.last
	}
	m.last = percent
	if m.fn != nil {
		m.fn(percent, phase)
	}
}

// span maps step done/total onto the [from, to] range.
func span(from, to float64, done, total int) float64 {
	if total <= 0 {
		return to
	}
	return from + (to-from)*float64(done)/float64(total)
}
