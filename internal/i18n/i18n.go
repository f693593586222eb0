// Package i18n provides the message catalog used to localize validation
// errors and load messages.
//
// The tables are built at init time and never mutated afterwards, so the
// package-level functions are safe for concurrent use without locking.
package i18n

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Language identifies a supported message language.
type Language string

const (
	EN Language = "en"
	DE Language = "de"
)

// DefaultLanguage is used when no preference matches a supported language.
const DefaultLanguage = EN

// Params holds the values interpolated into a message template.
type Params map[string]any

// ErrTranslationMissing is returned by Lookup when a key has no entry for
// the requested language.
var ErrTranslationMissing = errors.New("translation missing")

// Translator renders a message key in a language.
// Implementations must be safe for concurrent use.
type Translator interface {
	Translate(key string, lang Language, params Params) string
}

// Catalog is the Translator backed by the built-in message tables.
type Catalog struct{}

// Translate implements Translator using the package-level Translate.
func (Catalog) Translate(key string, lang Language, params Params) string {
	return Translate(key, lang, params)
}

// Default is the catalog used when callers do not supply their own.
var Default Translator = Catalog{}

// Lookup renders key in lang without any fallback.
func Lookup(key string, lang Language, params Params) (string, error) {
	table, ok := messages[lang]
	if !ok {
		return "", fmt.Errorf("%w: language %q", ErrTranslationMissing, lang)
	}
	msg, ok := table[key]
	if !ok {
		return "", fmt.Errorf("%w: %s[%s]", ErrTranslationMissing, key, lang)
	}
	return interpolate(msg.text, params), nil
}

// Translate renders key in lang, falling back to English and finally to
// the key itself so callers always get something displayable.
func Translate(key string, lang Language, params Params) string {
	if s, err := Lookup(key, lang, params); err == nil {
		return s
	}
	if lang != DefaultLanguage {
		if s, err := Lookup(key, DefaultLanguage, params); err == nil {
			return s
		}
	}
	return key
}

// interpolate replaces {name} placeholders with the matching params.
// Unknown placeholders are left as they are.
func interpolate(text string, params Params) string {
	if len(params) == 0 || !strings.Contains(text, "{") {
		return text
	}

	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Languages returns the supported languages, sorted.
func Languages() []Language {
	langs := make([]Language, 0, len(messages))
	for l := range messages {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// Keys returns every message key known in English, sorted.
func Keys() []string {
	keys := make([]string, 0, len(messages[DefaultLanguage]))
	for k := range messages[DefaultLanguage] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// supported lists the matcher tags; index 0 is the fallback.
var supported = []struct {
	tag  language.Tag
	lang Language
}{
	{language.English, EN},
	{language.German, DE},
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(supported))
	for i, s := range supported {
		tags[i] = s.tag
	}
	return language.NewMatcher(tags)
}()

// Match picks the best supported language for the given preferences.
// Each preference may be a single tag ("de-AT") or a full Accept-Language
// header ("de-CH,de;q=0.9,en;q=0.8"). Unparseable input is ignored.
func Match(prefs ...string) Language {
	var tags []language.Tag
	for _, p := range prefs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return DefaultLanguage
	}

	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLanguage
	}
	return supported[idx].lang
}

// Parse returns the supported language for s, reporting whether s matched
// one of them.
func Parse(s string) (Language, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultLanguage, false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return DefaultLanguage, false
	}
	base, _ := tag.Base()
	for _, sup := range supported {
		if b, _ := sup.tag.Base(); b == base {
			return sup.lang, true
		}
	}
	return DefaultLanguage, false
}
