// Package dashboard serves the local review console: upload area,
// compliance banner, clause list, contract previews and decision history.
package dashboard

import (
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ziadkadry99/sharai/internal/i18n"
	"github.com/ziadkadry99/sharai/internal/logger"
	"github.com/ziadkadry99/sharai/internal/prefs"
	"github.com/ziadkadry99/sharai/internal/preview"
	"github.com/ziadkadry99/sharai/internal/progress"
	"github.com/ziadkadry99/sharai/internal/session"
	"github.com/ziadkadry99/sharai/internal/upload"
)

// Deps are the collaborators the dashboard renders and drives.
type Deps struct {
	Sessions *session.Manager
	Previews *preview.Resolver
	Prefs    *prefs.Store

	// Toasts must be the queue the session manager notifies.
	Toasts *session.Queue
	Log    *logger.Logger
}

// Dashboard provides the review console pages and form actions.
type Dashboard struct {
	sessions *session.Manager
	previews *preview.Resolver
	prefs    *prefs.Store
	toasts   *session.Queue
	hub      *Hub
	log      *logger.Logger
	md       goldmark.Markdown
	pages    map[string]*template.Template

	// analysisHold is how long the completed analysis frame stays up.
	analysisHold time.Duration

	mu        sync.Mutex
	pending   *upload.File
	analyzing bool
	expanded  map[string]bool
	general   *generalAnswer
}

// generalAnswer is the last answer of the contract-wide question dialog.
type generalAnswer struct {
	Question string
	Answer   string
}

// New creates a Dashboard.
func New(deps Deps) *Dashboard {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	toasts := deps.Toasts
	if toasts == nil {
		toasts = session.NewQueue(0)
	}
	d := &Dashboard{
		sessions:     deps.Sessions,
		previews:     deps.Previews,
		prefs:        deps.Prefs,
		toasts:       toasts,
		hub:          newHub(log),
		log:          log,
		md:           goldmark.New(goldmark.WithExtensions(extension.GFM)),
		analysisHold: progress.AnalysisHold,
		expanded:     map[string]bool{},
	}
	d.pages = parsePages(template.FuncMap{
		"markdown": d.renderMarkdown,
	})
	return d
}

// RegisterRoutes mounts all dashboard routes onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/", d.handleIndex)
	r.Get("/login", d.handleLogin)
	r.Post("/login", d.handleLoginSubmit)

	r.Post("/upload", d.handleUpload)
	r.Post("/analyze", d.handleAnalyze)
	r.Get("/ws/progress", d.handleProgress)

	r.Route("/terms/{id}", func(r chi.Router) {
		r.Post("/ask", d.handleAsk)
		r.Post("/edit", d.handleEdit)
		r.Post("/use-answer", d.handleUseAnswer)
		r.Post("/confirm", d.handleConfirm)
		r.Post("/feedback", d.handleFeedback)
		r.Post("/toggle", d.handleToggle)
	})
	r.Post("/question", d.handleQuestion)
	r.Post("/generate/{kind}", d.handleGenerate)
	r.Get("/preview/{kind}", d.handlePreview)
	r.Post("/refresh", d.handleRefresh)
	r.Post("/session/clear", d.handleClear)

	r.Post("/prefs/role", d.handleRole)
	r.Post("/prefs/language", d.handleLanguage)
	r.Post("/prefs/theme", d.handleTheme)

	r.Get("/api/stats", d.handleStats)
	r.Get("/api/history", d.handleHistory)

	r.NotFound(d.handleNotFound)
}

// translator picks the stored language, else the browser's preference.
func (d *Dashboard) translator(r *http.Request) *i18n.Translator {
	if d.prefs != nil {
		if code, err := d.prefs.Language(r.Context()); err == nil {
			if lang, ok := i18n.Parse(code); ok {
				return i18n.New(lang)
			}
		}
	}
	return i18n.New(i18n.Negotiate(r.Header.Get("Accept-Language")))
}

func (d *Dashboard) theme(r *http.Request) prefs.Theme {
	if d.prefs == nil {
		return prefs.ThemeLight
	}
	theme, err := d.prefs.Theme(r.Context())
	if err != nil {
		d.log.Warn("reading theme", "error", err)
	}
	return theme
}
