package universe

import (
	"sync"

	"github.com/coinscout/coinscout/internal/domain"
)

// MaxExclusionExamples bounds debug memory: at most this many example
// exclusions are kept per scan.
const MaxExclusionExamples = 20

// Recorder collects per-stage counts and example exclusions for debug
// responses. A nil Recorder is a no-op, so the non-debug path pays nothing.
type Recorder struct {
	mu       sync.Mutex
	counts   map[string]int
	excluded []domain.ExclusionExample
}

// NewRecorder creates an empty debug recorder.
func NewRecorder() *Recorder {
	return &Recorder{counts: make(map[string]int)}
}

// Count records the surviving-candidate count after a stage.
func (r *Recorder) Count(stage string, n int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[stage] = n
}

// Exclude records one dropped symbol with its stage and reason tag,
// capped at MaxExclusionExamples.
func (r *Recorder) Exclude(symbol, stage, reason string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.excluded) >= MaxExclusionExamples {
		return
	}
	r.excluded = append(r.excluded, domain.ExclusionExample{Symbol: symbol, Stage: stage, Reason: reason})
}

// StageCounts returns a copy of the recorded stage counts.
func (r *Recorder) StageCounts() map[string]int {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}

// Excluded returns the recorded example exclusions.
func (r *Recorder) Excluded() []domain.ExclusionExample {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ExclusionExample, len(r.excluded))
	copy(out, r.excluded)
	return out
}

// ExcludedByReason counts recorded examples carrying the given reason tag.
func (r *Recorder) ExcludedByReason(reason string) int {
	n := 0
	for _, e := range r.Excluded() {
		if e.Reason == reason {
			n++
		}
	}
	return n
}
