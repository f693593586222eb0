package i18n

import (
	"errors"
	"strings"
	"testing"
)

// ----------------------------------------------------------------------------
// Catalog Tests
// ----------------------------------------------------------------------------

func TestCatalog_EveryLanguageHasEveryKey(t *testing.T) {
	for _, lang := range Languages() {
		for _, key := range Keys() {
			if _, err := Lookup(key, lang, nil); err != nil {
				t.Errorf("Lookup(%q, %s): %v", key, lang, err)
			}
		}
	}
}

func TestCatalog_PlaceholdersMatch(t *testing.T) {
	for _, key := range Keys() {
		en := messages[EN][key].text
		for _, lang := range Languages() {
			other := messages[lang][key].text
			for _, ph := range placeholders(en) {
				if !strings.Contains(other, ph) {
					t.Errorf("%s[%s] lacks placeholder %s", key, lang, ph)
				}
			}
		}
	}
}

func placeholders(text string) []string {
	var out []string
	for {
		start := strings.Index(text, "{")
		if start < 0 {
			return out
		}
		end := strings.Index(text[start:], "}")
		if end < 0 {
			return out
		}
		out = append(out, text[start:start+end+1])
		text = text[start+end+1:]
	}
}

// ----------------------------------------------------------------------------
// Translate Tests
// ----------------------------------------------------------------------------

func TestTranslate(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		lang   Language
		params Params
		want   string
	}{
		{
			name:   "english with params",
			key:    "field.is_required",
			lang:   EN,
			params: Params{"field": "Album"},
			want:   "Field Album is required",
		},
		{
			name:   "german with params",
			key:    "field.is_required",
			lang:   DE,
			params: Params{"field": "Album"},
			want:   "Das Feld Album muss ausgefüllt sein",
		},
		{
			name:   "integer param",
			key:    "sheet.row_info",
			lang:   EN,
			params: Params{"sheet": "Albums", "row": 6, "message": "Skipped row"},
			want:   "Sheet Albums, row 6: Skipped row",
		},
		{
			name:   "unknown language falls back to english",
			key:    "sheet.skipped_row",
			lang:   Language("fr"),
			want:   "Skipped row",
		},
		{
			name: "unknown key returns key",
			key:  "nope.missing",
			lang: DE,
			want: "nope.missing",
		},
		{
			name:   "unknown placeholder kept",
			key:    "sheet.column_missing",
			lang:   EN,
			params: Params{"other": "x"},
			want:   "Column {column} not present in sheet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Translate(tt.key, tt.lang, tt.params); got != tt.want {
				t.Errorf("Translate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLookup_Strict(t *testing.T) {
	if _, err := Lookup("sheet.skipped_row", Language("fr"), nil); !errors.Is(err, ErrTranslationMissing) {
		t.Errorf("unknown language error = %v, want ErrTranslationMissing", err)
	}
	if _, err := Lookup("nope", EN, nil); !errors.Is(err, ErrTranslationMissing) {
		t.Errorf("unknown key error = %v, want ErrTranslationMissing", err)
	}
}

func TestDefault_IsCatalog(t *testing.T) {
	got := Default.Translate("sheet.sheet_missing", EN, Params{"sheet": "Albums"})
	if got != "Sheet Albums not present in document" {
		t.Errorf("Default.Translate() = %q", got)
	}
}

// ----------------------------------------------------------------------------
// Negotiation Tests
// ----------------------------------------------------------------------------

func TestMatch(t *testing.T) {
	tests := []struct {
		name  string
		prefs []string
		want  Language
	}{
		{"none", nil, EN},
		{"blank", []string{"  "}, EN},
		{"german tag", []string{"de"}, DE},
		{"regional german", []string{"de-AT"}, DE},
		{"accept header", []string{"de-CH,de;q=0.9,en;q=0.8"}, DE},
		{"english preferred", []string{"en-US,de;q=0.5"}, EN},
		{"unsupported", []string{"ja"}, EN},
		{"garbage ignored", []string{"!!!", "de"}, DE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.prefs...); got != tt.want {
				t.Errorf("Match(%q) = %s, want %s", tt.prefs, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		want   Language
		wantOK bool
	}{
		{"en", EN, true},
		{"DE", DE, true},
		{"de-DE", DE, true},
		{"fr", EN, false},
		{"", EN, false},
		{"not a tag", EN, false},
	}

	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Parse(%q) = %s, %v; want %s, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
