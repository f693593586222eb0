package schemas

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/sheetload/internal/sheet"
	"github.com/JonMunkholm/sheetload/internal/source"
)

func TestRegistered(t *testing.T) {
	for _, key := range []string{"albums", "contacts", "cues"} {
		s, ok := sheet.Get(key)
		if !ok {
			t.Errorf("schema %q not registered", key)
			continue
		}
		if err := s.CheckFields(); err != nil {
			t.Errorf("schema %q: CheckFields: %v", key, err)
		}
	}
}

func TestNormalizeUSState(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"California", "CA"},
		{"  new york ", "NY"},
		{"tx", "TX"},
		{"WA", "WA"},
		{"Bavaria", "Bavaria"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeUSState(tt.in); got != tt.want {
			t.Errorf("NormalizeUSState(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func load(t *testing.T, schema sheet.Schema, grid [][]any) *sheet.Sheet {
	t.Helper()
	s, err := sheet.New(schema, source.Memory{schema.SheetName: grid})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestContacts_Load(t *testing.T) {
	grid := [][]any{
		{"ID", "Name", "Email", "State", "Newsletter", "Balance"},
		{"C-1", "Ada", "ada@example.com", "california", nil, "$1,250.50"},
		{"C-2", "Grace", nil, "ny", "no", nil},
		{"C-1", "Alan", "alan@example.com", "Oregon", "yes", "(10)"},
	}
	s := load(t, Contacts, grid)

	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	first, _ := s.Row(0)
	if first.Value("state") != "CA" {
		t.Errorf("state = %v, want CA", first.Value("state"))
	}
	if first.Value("newsletter") != false {
		t.Errorf("newsletter = %v, want default false", first.Value("newsletter"))
	}
	bal, ok := first.Value("balance").(pgtype.Numeric)
	if !ok || !bal.Valid {
		t.Errorf("balance = %#v, want valid numeric", first.Value("balance"))
	}

	third, _ := s.Row(2)
	if third.Value("newsletter") != true {
		t.Errorf("newsletter = %v, want true", third.Value("newsletter"))
	}

	errs := s.Errors()
	if len(errs) != 1 || errs[0] != "“ID” must contain unique values only, but “C-1” occurs 2 times" {
		t.Errorf("Errors() = %q", errs)
	}
}

func TestCues_Load(t *testing.T) {
	grid := [][]any{
		{"Cue sheet: Episode 4"},
		{"Cue ID", "Title", "Type", "Start", "End", "Recorded", "Notes"},
		{"0b6b1a52-62c5-4f3e-9a0b-7f8f5b2f0c11", "Opening", "music", "00:00:00", "00:01:12,5", nil, 42.0},
		{nil, "Door slam", "Effect", "00:13:06,9", "00:13:07", nil, nil},
		{nil, "Interview", "Song", "0:20", "00:25:00", nil, nil},
	}
	s := load(t, Cues, grid)

	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	first, _ := s.Row(0)
	if first.Value("type") != "Music" {
		t.Errorf("type = %v, want canonical Music", first.Value("type"))
	}
	if first.Value("end") != 72.5 {
		t.Errorf("end = %v, want 72.5", first.Value("end"))
	}
	if first.Value("notes") != 42.0 {
		t.Errorf("notes = %v, want raw 42", first.Value("notes"))
	}

	second, _ := s.Row(1)
	if second.Value("start") != 786.9 {
		t.Errorf("start = %v, want 786.9", second.Value("start"))
	}

	errs := s.Errors()
	if len(errs) != 2 {
		t.Fatalf("Errors() = %q, want 2", errs)
	}
	if !strings.HasPrefix(errs[0], "Sheet Cues, row 5: Field Type must be one of") {
		t.Errorf("Errors()[0] = %q", errs[0])
	}
	if errs[1] != "Sheet Cues, row 5: Field Start has an invalid format: 0:20" {
		t.Errorf("Errors()[1] = %q", errs[1])
	}
}
