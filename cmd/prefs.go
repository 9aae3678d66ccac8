package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sharai/internal/i18n"
	"github.com/ziadkadry99/sharai/internal/prefs"
	"github.com/ziadkadry99/sharai/internal/session"
)

var roleCmd = &cobra.Command{
	Use:   "role [regular|expert|toggle]",
	Short: "Show or switch between regular user and Shariah expert mode",
	Long: `Without arguments prints the current mode. Expert mode enables the
"sharai feedback" command and the feedback form on the dashboard.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"regular", "expert", "toggle"},
	RunE:      runRole,
}

var langCmd = &cobra.Command{
	Use:       "lang [en|ar]",
	Short:     "Show or set the interface language",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(i18n.English), string(i18n.Arabic)},
	RunE:      runLang,
}

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark|toggle]",
	Short:     "Show or set the dashboard theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(prefs.ThemeLight), string(prefs.ThemeDark), "toggle"},
	RunE:      runTheme,
}

func init() {
	rootCmd.AddCommand(roleCmd, langCmd, themeCmd)
}

func roleLabel(a *app, r session.Role) string {
	if r == session.RoleExpert {
		return a.t.Tf("role.expert")
	}
	return a.t.Tf("role.regular")
}

func runRole(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext(cmd)
	defer stop()

	a, err := openApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	stored, err := a.prefs.Role(ctx)
	if err != nil {
		return err
	}
	current := session.ParseRole(stored)
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		fmt.Fprintf(out, "%s (%s)\n", roleLabel(a, current), current)
		return nil
	}

	switch args[0] {
	case "toggle":
		if err := a.sessions.SetRole(ctx, current); err != nil {
			return err
		}
		_, err = a.sessions.ToggleRole(ctx)
		return err
	case "regular", string(session.RoleRegular):
		current = session.RoleRegular
	case "expert", string(session.RoleExpert):
		current = session.RoleExpert
	default:
		return fmt.Errorf("unknown role %q: must be regular, expert or toggle", args[0])
	}
	if err := a.sessions.SetRole(ctx, current); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (%s)\n", roleLabel(a, current), current)
	return nil
}

func runLang(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext(cmd)
	defer stop()

	a, err := openApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		fmt.Fprintf(out, "%s (%s)\n", a.t.Tf("app.language."+string(a.t.Lang())), a.t.Lang())
		return nil
	}

	lang, ok := i18n.Parse(args[0])
	if !ok {
		return fmt.Errorf("unsupported language %q: must be en or ar", args[0])
	}
	if err := a.prefs.SetLanguage(ctx, string(lang)); err != nil {
		return err
	}
	t := i18n.New(lang)
	fmt.Fprintf(out, "%s (%s)\n", t.Tf("app.language."+string(lang)), lang)
	return nil
}

func runTheme(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext(cmd)
	defer stop()

	a, err := openApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	var theme prefs.Theme
	switch {
	case len(args) == 0:
		theme, err = a.prefs.Theme(ctx)
	case args[0] == "toggle":
		theme, err = a.prefs.ToggleTheme(ctx)
	case args[0] == string(prefs.ThemeLight), args[0] == string(prefs.ThemeDark):
		theme = prefs.Theme(args[0])
		err = a.prefs.SetTheme(ctx, theme)
	default:
		return fmt.Errorf("unknown theme %q: must be light, dark or toggle", args[0])
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), theme)
	return nil
}
