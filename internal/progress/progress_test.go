package progress

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestAnalysisPlanTiming(t *testing.T) {
	if got, want := AnalysisPlan.Total(), 27*1800*time.Millisecond; got != want {
		t.Fatalf("Total() = %v, want %v", got, want)
	}

	tests := []struct {
		elapsed time.Duration
		phase   int
	}{
		{0, 0},
		{4499 * time.Millisecond, 0},
		{4500 * time.Millisecond, 1},
		{12599 * time.Millisecond, 1},
		{12600 * time.Millisecond, 2},
		{21600 * time.Millisecond, 3},
		{32400 * time.Millisecond, 4},
		{41400 * time.Millisecond, 5},
		{10 * time.Minute, 5},
	}
	for _, tt := range tests {
		f := AnalysisPlan.At(tt.elapsed)
		if f.Phase != tt.phase {
			t.Errorf("At(%v).Phase = %d, want %d", tt.elapsed, f.Phase, tt.phase)
		}
		if f.Key != AnalysisPlan.Phases[tt.phase].Key {
			t.Errorf("At(%v).Key = %q", tt.elapsed, f.Key)
		}
	}
}

func TestPercentLinearAndCapped(t *testing.T) {
	total := AnalysisPlan.Total()
	half := AnalysisPlan.At(total / 2)
	if half.Percent < 49 || half.Percent > 50 {
		t.Errorf("half-way percent = %v, want 49.5", half.Percent)
	}
	if f := AnalysisPlan.At(2 * total); f.Percent != 99 {
		t.Errorf("overdue percent = %v, want 99", f.Percent)
	}
	prev := -1.0
	for d := time.Duration(0); d < total+time.Second; d += 700 * time.Millisecond {
		p := AnalysisPlan.At(d).Percent
		if p < prev {
			t.Fatalf("percent decreased at %v: %v < %v", d, p, prev)
		}
		prev = p
	}
}

func TestGenerationPlan(t *testing.T) {
	if got := GenerationPlan.Total(); got != 15*time.Second {
		t.Fatalf("Total() = %v, want 15s", got)
	}
	if f := GenerationPlan.At(7500 * time.Millisecond); f.Percent != 50 || f.Key != "generate.stage2" {
		t.Errorf("At(7.5s) = %+v", f)
	}
	if f := GenerationPlan.At(15 * time.Second); f.Percent != 99 || f.Key != "generate.stage4" {
		t.Errorf("At(15s) = %+v", f)
	}

	stages := map[float64]string{
		0:  "generate.stage1",
		29: "generate.stage1",
		30: "generate.stage2",
		60: "generate.stage3",
		90: "generate.stage4",
		99: "generate.stage4",
	}
	for pct, want := range stages {
		if got := GenerationPlan.StageAt(pct).Key; got != want {
			t.Errorf("StageAt(%v) = %q, want %q", pct, got, want)
		}
	}
}

func TestDoneFrame(t *testing.T) {
	f := AnalysisPlan.Done()
	if f.Percent != 100 || !f.Complete || f.Phase != len(AnalysisPlan.Phases) {
		t.Errorf("Done() = %+v", f)
	}
}

func TestAnimatorCompletes(t *testing.T) {
	a := NewAnimator(AnalysisPlan, 10*time.Millisecond)
	a.Tick = 5 * time.Millisecond

	var mu sync.Mutex
	var frames []Frame
	done := make(chan struct{})
	go func() {
		time.Sleep(30 * time.Millisecond)
		close(done)
	}()

	err := a.Run(context.Background(), done, func(f Frame) {
		mu.Lock()
		frames = append(frames, f)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(frames) < 3 {
		t.Fatalf("frames = %d, want at least 3", len(frames))
	}
	if frames[0].Percent != 0 {
		t.Errorf("first frame = %+v", frames[0])
	}
	done100 := frames[len(frames)-2]
	if done100.Percent != 100 || !done100.Complete || done100.Hidden {
		t.Errorf("completion frame = %+v", done100)
	}
	if last := frames[len(frames)-1]; !last.Hidden {
		t.Errorf("last frame = %+v, want hidden", last)
	}
}

func TestAnimatorCancelled(t *testing.T) {
	a := NewAnimator(GenerationPlan, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var frames []Frame
	err := a.Run(ctx, make(chan struct{}), func(f Frame) { frames = append(frames, f) })
	if err != context.Canceled {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	for _, f := range frames {
		if f.Complete {
			t.Errorf("cancelled run emitted completion frame %+v", f)
		}
	}
}

func TestRotator(t *testing.T) {
	r := NewQuestionRotator()
	tests := map[time.Duration]string{
		0:                       "questionAnimation.thinking",
		2499 * time.Millisecond: "questionAnimation.thinking",
		2500 * time.Millisecond: "questionAnimation.processing",
		7500 * time.Millisecond: "questionAnimation.formulating",
		10 * time.Second:        "questionAnimation.thinking",
	}
	for d, want := range tests {
		if got := r.At(d); got != want {
			t.Errorf("At(%v) = %q, want %q", d, got, want)
		}
	}
}

func TestRotatorWithoutInterval(t *testing.T) {
	r := &Rotator{Messages: QuestionMessages}
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	var got []string
	r.Run(ctx, func(key string) { got = append(got, key) })
	if len(got) != 1 || got[0] != QuestionMessages[0] {
		t.Errorf("emitted %v, want only the first message", got)
	}
}

func TestCIReporterPrintsPhaseChanges(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{w: &buf}
	r.Start("Analyzing Contract")
	r.Update(Frame{Percent: 1}, "Initiating Analysis...")
	r.Update(Frame{Percent: 5}, "Initiating Analysis...")
	r.Update(Frame{Percent: 20, Phase: 1}, "Extracting Text from Document...")
	r.Update(Frame{Hidden: true}, "")
	r.Finish("Analysis Complete!")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %q", lines)
	}
	if lines[2] != "[ 20%] Extracting Text from Document..." {
		t.Errorf("line = %q", lines[2])
	}
}
