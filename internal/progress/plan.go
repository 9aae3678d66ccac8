// Package progress drives the cosmetic progress shown while the backend
// works. The backend reports no real progress, so frames come from fixed
// timing plans.
package progress

import "time"

// Phase is one named step of a plan. Factor is its share of the total
// duration.
type Phase struct {
	Key    string
	Factor float64
}

// Plan describes how a progress animation advances over time.
type Plan struct {
	Phases []Phase

	// Unit is the wall time of one factor unit.
	Unit time.Duration

	// Scale is the percentage reached when the planned time has elapsed.
	Scale float64

	// Cap bounds the percentage until the work is actually done.
	Cap float64
}

// AnalysisPlan mirrors the six visual analysis steps.
var AnalysisPlan = Plan{
	Phases: []Phase{
		{Key: "analyze.step.initial", Factor: 2.5},
		{Key: "analyze.step.extractText", Factor: 4.5},
		{Key: "analyze.step.identifyTerms", Factor: 5},
		{Key: "analyze.step.shariaComplianceCheck", Factor: 6},
		{Key: "analyze.step.generateSuggestions", Factor: 5},
		{Key: "analyze.step.compileResults", Factor: 4},
	},
	Unit:  1800 * time.Millisecond,
	Scale: 99,
	Cap:   99,
}

// GenerationPlan runs 15 seconds to 99%, with stages starting at 0, 30,
// 60 and 90 percent.
var GenerationPlan = Plan{
	Phases: []Phase{
		{Key: "generate.stage1", Factor: 30},
		{Key: "generate.stage2", Factor: 30},
		{Key: "generate.stage3", Factor: 30},
		{Key: "generate.stage4", Factor: 10},
	},
	Unit:  150 * time.Millisecond,
	Scale: 100,
	Cap:   99,
}

// Frame is one rendered state of an animation.
type Frame struct {
	Phase   int     `json:"phase"`
	Key     string  `json:"key"`
	Percent float64 `json:"percent"`

	// Complete marks the final 100% frame where every phase is done.
	Complete bool `json:"complete"`

	// Hidden tells views to remove the animation.
	Hidden bool `json:"hidden"`
}

// Rounded is the percentage as displayed.
func (f Frame) Rounded() int {
	return int(f.Percent + 0.5)
}

func (p Plan) factorSum() float64 {
	var sum float64
	for _, ph := range p.Phases {
		sum += ph.Factor
	}
	return sum
}

// Total is the planned duration of the animation.
func (p Plan) Total() time.Duration {
	return time.Duration(p.factorSum() * float64(p.Unit))
}

// At returns the frame shown after elapsed time. The percentage grows
// linearly and never exceeds Cap; the phase stops at the last one.
func (p Plan) At(elapsed time.Duration) Frame {
	if len(p.Phases) == 0 {
		return Frame{}
	}
	if elapsed < 0 {
		elapsed = 0
	}

	total := p.Total()
	pct := p.Cap
	if total > 0 {
		pct = p.Scale * float64(elapsed) / float64(total)
	}
	if pct > p.Cap {
		pct = p.Cap
	}

	units := float64(elapsed) / float64(p.Unit)
	idx := 0
	var boundary float64
	for i, ph := range p.Phases[:len(p.Phases)-1] {
		boundary += ph.Factor
		if units < boundary {
			break
		}
		idx = i + 1
	}
	return Frame{Phase: idx, Key: p.Phases[idx].Key, Percent: pct}
}

// Done is the frame shown once the work finished.
func (p Plan) Done() Frame {
	f := Frame{Phase: len(p.Phases), Percent: 100, Complete: true}
	if len(p.Phases) > 0 {
		f.Key = p.Phases[len(p.Phases)-1].Key
	}
	return f
}

// StageAt returns the generation stage for a displayed percentage using
// the same thresholds as the plan.
func (p Plan) StageAt(percent float64) Phase {
	sum := p.factorSum()
	var threshold float64
	current := p.Phases[0]
	for _, ph := range p.Phases {
		if sum > 0 && percent >= threshold*p.Scale/sum {
			current = ph
		}
		threshold += ph.Factor
	}
	return current
}
