// Package i18n holds the English and Arabic UI catalogs and the lookup
// rules shared by the CLI and the dashboard.
package i18n

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Lang is a supported UI language.
type Lang string

const (
	English Lang = "en"
	Arabic  Lang = "ar"
)

// Supported lists the UI languages, default first.
var Supported = []Lang{English, Arabic}

//go:embed locales/*.yaml
var localeFS embed.FS

var (
	loadOnce sync.Once
	catalogs map[Lang]map[string]string
	loadErr  error
)

func load() (map[Lang]map[string]string, error) {
	loadOnce.Do(func() {
		out := make(map[Lang]map[string]string, len(Supported))
		for _, l := range Supported {
			data, err := localeFS.ReadFile("locales/" + string(l) + ".yaml")
			if err != nil {
				loadErr = fmt.Errorf("reading %s catalog: %w", l, err)
				return
			}
			var entries map[string]string
			if err := yaml.Unmarshal(data, &entries); err != nil {
				loadErr = fmt.Errorf("parsing %s catalog: %w", l, err)
				return
			}
			out[l] = entries
		}
		catalogs = out
	})
	return catalogs, loadErr
}

// Parse returns the language for a stored or user-supplied code. Unknown
// codes are reported as not ok.
func Parse(code string) (Lang, bool) {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "en":
		return English, true
	case "ar":
		return Arabic, true
	}
	return English, false
}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Arabic})

// Negotiate picks the UI language from an Accept-Language header or a
// locale string such as "ar_EG.UTF-8". Anything not Arabic is English.
func Negotiate(preferred string) Lang {
	preferred = strings.TrimSpace(preferred)
	if preferred == "" {
		return English
	}
	if i := strings.IndexAny(preferred, ".@"); i >= 0 {
		preferred = preferred[:i]
	}
	preferred = strings.ReplaceAll(preferred, "_", "-")

	tags, _, err := language.ParseAcceptLanguage(preferred)
	if err != nil || len(tags) == 0 {
		return English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No || idx != 1 {
		return English
	}
	return Arabic
}

// Translator looks up strings for one language.
type Translator struct {
	lang Lang
}

// New returns a translator for lang. The catalogs are embedded, so a
// load failure is a build defect and panics.
func New(lang Lang) *Translator {
	if _, err := load(); err != nil {
		panic(err)
	}
	if _, ok := Parse(string(lang)); !ok {
		lang = English
	}
	return &Translator{lang: lang}
}

// Lang returns the translator's language.
func (t *Translator) Lang() Lang { return t.lang }

// Dir is the text direction: rtl for Arabic, ltr otherwise.
func (t *Translator) Dir() string {
	if t.lang == Arabic {
		return "rtl"
	}
	return "ltr"
}

// T returns the string for key, falling back to English and then to the
// key itself. Each {{name}} placeholder is replaced by params[name].
func (t *Translator) T(key string, params map[string]any) string {
	all, _ := load()
	s, ok := all[t.lang][key]
	if !ok || s == "" {
		s, ok = all[English][key]
	}
	if !ok || s == "" {
		s = key
	}
	for name, v := range params {
		s = strings.ReplaceAll(s, "{{"+name+"}}", fmt.Sprint(v))
	}
	return s
}

// Tf is T with alternating name/value params.
func (t *Translator) Tf(key string, kv ...any) string {
	if len(kv) == 0 {
		return t.T(key, nil)
	}
	params := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		params[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return t.T(key, params)
}

// Keys returns every key of the language's own catalog, sorted.
func Keys(lang Lang) []string {
	all, _ := load()
	keys := make([]string, 0, len(all[lang]))
	for k := range all[lang] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
