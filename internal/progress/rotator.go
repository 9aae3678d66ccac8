package progress

import (
	"context"
	"time"
)

// QuestionMessages are shown in turn while a question is answered.
var QuestionMessages = []string{
	"questionAnimation.thinking",
	"questionAnimation.processing",
	"questionAnimation.analyzing",
	"questionAnimation.formulating",
}

// Rotator cycles through message keys at a fixed interval.
type Rotator struct {
	Messages []string
	Interval time.Duration
}

// NewQuestionRotator rotates QuestionMessages every 2.5 seconds.
func NewQuestionRotator() *Rotator {
	return &Rotator{Messages: QuestionMessages, Interval: 2500 * time.Millisecond}
}

// At returns the message shown after elapsed time.
func (r *Rotator) At(elapsed time.Duration) string {
	if len(r.Messages) == 0 {
		return ""
	}
	if r.Interval <= 0 || elapsed < 0 {
		return r.Messages[0]
	}
	return r.Messages[int(elapsed/r.Interval)%len(r.Messages)]
}

// Run emits the first message immediately and the next one every
// Interval until ctx ends. Without a positive Interval the first message
// stays.
func (r *Rotator) Run(ctx context.Context, emit func(string)) {
	if len(r.Messages) == 0 {
		return
	}
	i := 0
	emit(r.Messages[i])
	if r.Interval <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i = (i + 1) % len(r.Messages)
			emit(r.Messages[i])
		}
	}
}
