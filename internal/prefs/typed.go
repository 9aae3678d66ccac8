package prefs

import "context"

// Theme is the dashboard colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// SessionID returns the stored active session id, or "" when none.
func (s *Store) SessionID(ctx context.Context) (string, error) {
	v, _, err := s.Get(ctx, ScopeSession, KeySessionID)
	return v, err
}

func (s *Store) SetSessionID(ctx context.Context, id string) error {
	return s.Set(ctx, ScopeSession, KeySessionID, id)
}

func (s *Store) ClearSessionID(ctx context.Context) error {
	return s.Delete(ctx, ScopeSession, KeySessionID)
}

// Role returns the stored UI role, or "" when none has been chosen.
func (s *Store) Role(ctx context.Context) (string, error) {
	v, _, err := s.Get(ctx, ScopeLocal, KeyRole)
	return v, err
}

func (s *Store) SetRole(ctx context.Context, role string) error {
	return s.Set(ctx, ScopeLocal, KeyRole, role)
}

// Language returns the stored UI language code, or "" when none.
func (s *Store) Language(ctx context.Context) (string, error) {
	v, _, err := s.Get(ctx, ScopeLocal, KeyLanguage)
	return v, err
}

func (s *Store) SetLanguage(ctx context.Context, lang string) error {
	return s.Set(ctx, ScopeLocal, KeyLanguage, lang)
}

// Theme returns the stored theme, defaulting to light.
func (s *Store) Theme(ctx context.Context) (Theme, error) {
	v, ok, err := s.Get(ctx, ScopeLocal, KeyTheme)
	if err != nil {
		return ThemeLight, err
	}
	if !ok || Theme(v) != ThemeDark {
		return ThemeLight, nil
	}
	return ThemeDark, nil
}

func (s *Store) SetTheme(ctx context.Context, theme Theme) error {
	return s.Set(ctx, ScopeLocal, KeyTheme, string(theme))
}

// ToggleTheme flips between light and dark and returns the new theme.
func (s *Store) ToggleTheme(ctx context.Context) (Theme, error) {
	var next Theme
	err := s.db.WithLock(func() error {
		current, err := s.Theme(ctx)
		if err != nil {
			return err
		}
		next = ThemeDark
		if current == ThemeDark {
			next = ThemeLight
		}
		return s.SetTheme(ctx, next)
	})
	return next, err
}
