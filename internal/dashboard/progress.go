package dashboard

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/sharai/internal/i18n"
	"github.com/ziadkadry99/sharai/internal/logger"
	"github.com/ziadkadry99/sharai/internal/progress"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Animation kinds carried in progress messages.
const (
	kindAnalysis   = "analysis"
	kindGeneration = "generation"
	kindQuestion   = "question"
)

// progressMessage is the outgoing WebSocket message format.
type progressMessage struct {
	Kind     string `json:"kind"`
	Label    string `json:"label,omitempty"`
	Percent  int    `json:"percent"`
	Complete bool   `json:"complete,omitempty"`
	Hidden   bool   `json:"hidden,omitempty"`
	Error    string `json:"error,omitempty"`
}

const writeWait = 5 * time.Second

// Hub fans progress messages out to every connected browser.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	last    *progressMessage
	log     *logger.Logger
}

func newHub(log *logger.Logger) *Hub {
	return &Hub{clients: map[*websocket.Conn]struct{}{}, log: log}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
	if h.last != nil && !h.last.Hidden {
		h.write(conn, *h.last)
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

// broadcast sends msg to every client. New clients receive the latest
// visible message on connect.
func (h *Hub) broadcast(msg progressMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = &msg
	for conn := range h.clients {
		h.write(conn, msg)
	}
}

// write must be called with h.mu held.
func (h *Hub) write(conn *websocket.Conn, msg progressMessage) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.log.Debug("dropping progress client", "error", err)
		delete(h.clients, conn)
		conn.Close()
	}
}

func (d *Dashboard) handleProgress(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.log.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	d.hub.add(conn)
	defer d.hub.remove(conn)

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				d.log.Debug("websocket read", "error", err)
			}
			return
		}
	}
}

// animate streams frames of plan while work runs. When work succeeds the
// completed frame is shown for hold before the animation hides; when it
// fails the animation hides at once with the error.
func (d *Dashboard) animate(ctx context.Context, kind string, plan progress.Plan, hold time.Duration, t *i18n.Translator, work func() error) error {
	animCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		progress.NewAnimator(plan, hold).Run(animCtx, done, func(f progress.Frame) {
			d.hub.broadcast(frameMessage(kind, t, f))
		})
	}()

	err := work()
	if err != nil {
		cancel()
		<-stopped
		d.hub.broadcast(progressMessage{Kind: kind, Hidden: true, Error: err.Error()})
		return err
	}
	close(done)
	<-stopped
	return nil
}

func frameMessage(kind string, t *i18n.Translator, f progress.Frame) progressMessage {
	msg := progressMessage{Kind: kind, Percent: f.Rounded(), Complete: f.Complete, Hidden: f.Hidden}
	switch {
	case f.Hidden:
	case f.Complete && kind == kindAnalysis:
		msg.Label = t.Tf("analyze.complete")
	case kind == kindGeneration:
		msg.Label = t.Tf("generate.progress", "stage", t.Tf(f.Key), "percent", msg.Percent)
	default:
		msg.Label = t.Tf(f.Key)
	}
	return msg
}

// rotate cycles the question messages while work runs.
func (d *Dashboard) rotate(ctx context.Context, t *i18n.Translator, work func() error) error {
	rotCtx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		progress.NewQuestionRotator().Run(rotCtx, func(key string) {
			d.hub.broadcast(progressMessage{Kind: kindQuestion, Label: t.Tf(key)})
		})
	}()

	err := work()
	cancel()
	<-stopped
	d.hub.broadcast(progressMessage{Kind: kindQuestion, Hidden: true})
	return err
}
