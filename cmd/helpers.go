package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ziadkadry99/sharai/internal/api"
	"github.com/ziadkadry99/sharai/internal/audit"
	"github.com/ziadkadry99/sharai/internal/config"
	"github.com/ziadkadry99/sharai/internal/db"
	"github.com/ziadkadry99/sharai/internal/i18n"
	"github.com/ziadkadry99/sharai/internal/logger"
	"github.com/ziadkadry99/sharai/internal/prefs"
	"github.com/ziadkadry99/sharai/internal/preview"
	"github.com/ziadkadry99/sharai/internal/reviews"
	"github.com/ziadkadry99/sharai/internal/session"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `sharai init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w\nRun `sharai init` to recreate it", cfgFile, err)
	}
	return cfg, nil
}

// app holds everything a command needs to drive a review session.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *db.DB
	prefs    *prefs.Store
	journal  *audit.Store
	client   *api.Client
	sessions *session.Manager
	previews *preview.Resolver
	t        *i18n.Translator
}

type appOptions struct {
	// restore reloads the stored session from the backend.
	restore bool

	// logs forces logging even without --verbose.
	logs bool

	// notifier replaces the stderr toast printer.
	notifier session.Notifier
}

func openApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.Nop()
	if verbose || opts.logs {
		if log, err = logger.New(string(cfg.LogMode)); err != nil {
			return nil, err
		}
	}

	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, err
	}
	store := prefs.NewStore(database)
	journal := audit.NewStore(database)

	lang, err := resolveLanguage(ctx, store, cfg)
	if err != nil {
		database.Close()
		return nil, err
	}
	t := i18n.New(lang)

	clientOpts := []api.Option{api.WithLogger(log)}
	if cfg.RequestTimeoutSeconds > 0 {
		clientOpts = append(clientOpts, api.WithTimeout(time.Duration(cfg.RequestTimeoutSeconds)*time.Second))
	}
	client := api.New(cfg.APIBaseURL, clientOpts...)

	notifier := opts.notifier
	if notifier == nil {
		notifier = toastPrinter(os.Stderr, t)
	}
	sessions := session.New(client,
		session.WithPersistence(store),
		session.WithJournal(journal),
		session.WithReviews(reviews.NewStore(database)),
		session.WithNotifier(notifier),
		session.WithLogger(log),
	)

	a := &app{
		cfg:      cfg,
		log:      log,
		db:       database,
		prefs:    store,
		journal:  journal,
		client:   client,
		sessions: sessions,
		previews: preview.NewResolver(sessions, client, notifier, log),
		t:        t,
	}

	if opts.restore {
		if err := sessions.Restore(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not restore the previous session: %v\n", err)
		}
	}
	return a, nil
}

func (a *app) Close() {
	a.log.Sync()
	a.db.Close()
}

// requireSession fails with a hint when nothing has been analyzed yet.
func (a *app) requireSession() (session.State, error) {
	st := a.sessions.Snapshot()
	if !st.HasSession() {
		return st, fmt.Errorf("%w\nRun `sharai analyze <file>` first", session.ErrNoSession)
	}
	return st, nil
}

// resolveLanguage picks the stored language, then the configured one,
// then the environment locale.
func resolveLanguage(ctx context.Context, store *prefs.Store, cfg *config.Config) (i18n.Lang, error) {
	stored, err := store.Language(ctx)
	if err != nil {
		return "", fmt.Errorf("reading language: %w", err)
	}
	if lang, ok := i18n.Parse(stored); ok {
		return lang, nil
	}
	if lang, ok := i18n.Parse(cfg.Language); ok {
		return lang, nil
	}
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(env); v != "" {
			return i18n.Negotiate(v), nil
		}
	}
	return i18n.English, nil
}

// toastPrinter writes each success toast as one line. Failures are left
// to the returned error, which cobra prints.
func toastPrinter(w io.Writer, t *i18n.Translator) session.Notifier {
	return session.NotifierFunc(func(toast session.Toast) {
		if toast.Variant == session.ToastDestructive {
			return
		}
		fmt.Fprintln(w, formatToast(t, toast))
	})
}

func formatToast(t *i18n.Translator, toast session.Toast) string {
	line := "✓ " + t.Tf(toast.Title)
	switch {
	case toast.Body != "":
		line += ": " + t.Tf(toast.Body)
	case toast.Message != "":
		line += ": " + toast.Message
	}
	return line
}
