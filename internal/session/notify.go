package session

import "sync"

// ToastVariant selects how a notification is styled.
type ToastVariant string

const (
	ToastDefault     ToastVariant = "default"
	ToastDestructive ToastVariant = "destructive"
)

// Toast is a short user-facing notification. Title and Body are
// localization keys; Message, when set, is raw text (usually a backend
// error) shown instead of Body.
type Toast struct {
	Variant ToastVariant `json:"variant"`
	Title   string       `json:"title"`
	Body    string       `json:"body,omitempty"`
	Message string       `json:"message,omitempty"`
}

// Notifier receives toasts raised by manager operations.
type Notifier interface {
	Notify(Toast)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Toast)

func (f NotifierFunc) Notify(t Toast) { f(t) }

type discard struct{}

func (discard) Notify(Toast) {}

// Queue buffers toasts until a view drains them.
type Queue struct {
	mu     sync.Mutex
	toasts []Toast
	max    int
}

// NewQueue returns a queue keeping at most max toasts (oldest dropped).
// A max of zero or less keeps 20.
func NewQueue(max int) *Queue {
	if max <= 0 {
		max = 20
	}
	return &Queue{max: max}
}

func (q *Queue) Notify(t Toast) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.toasts = append(q.toasts, t)
	if len(q.toasts) > q.max {
		q.toasts = q.toasts[len(q.toasts)-q.max:]
	}
}

// Drain returns and removes every queued toast.
func (q *Queue) Drain() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.toasts
	q.toasts = nil
	return out
}

// Fanout delivers each toast to every notifier in order.
type Fanout []Notifier

func (f Fanout) Notify(t Toast) {
	for _, n := range f {
		n.Notify(t)
	}
}
