package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/sheetload/internal/field"
	"github.com/JonMunkholm/sheetload/internal/i18n"
	"github.com/JonMunkholm/sheetload/internal/loader"
	"github.com/JonMunkholm/sheetload/internal/sheet"
)

func testResult() *loader.Result {
	var balance pgtype.Numeric
	_ = balance.Scan("12.50")

	return &loader.Result{
		ID:        uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2"),
		Schema:    "contacts",
		SheetName: "Contacts",
		Filename:  "contacts.xlsx",
		Language:  i18n.DE,
		Rows: []sheet.Record{
			sheet.NewRecord("id", "C-1", "joined", field.CivilDate{Year: 2021, Month: time.May, Day: 3}, "balance", balance),
			sheet.NewRecord("id", "C-2", "joined", nil, "balance", nil),
		},
		Errors:     []string{"Blatt Contacts, Zeile 3: Das Feld Name muss ausgefüllt sein"},
		Infos:      []string{"Blatt Contacts, Zeile 4: Zeile übersprungen", "Blatt Contacts, Zeile 5: Zeile übersprungen"},
		StartedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2024, 3, 1, 12, 0, 2, 0, time.UTC),
	}
}

func TestLoadArgs(t *testing.T) {
	r := testResult()
	args := loadArgs(r)

	if len(args) != 10 {
		t.Fatalf("len(args) = %d, want 10", len(args))
	}
	id := args[0].(pgtype.UUID)
	if !id.Valid || uuid.UUID(id.Bytes) != r.ID {
		t.Errorf("id = %v, want %s", id, r.ID)
	}
	if args[4] != "de" {
		t.Errorf("language = %v, want de", args[4])
	}
	if args[5] != int32(2) || args[6] != int32(1) || args[7] != int32(2) {
		t.Errorf("counts = %v %v %v", args[5], args[6], args[7])
	}
}

func TestRecordRows(t *testing.T) {
	rows, err := recordRows(testResult())
	if err != nil {
		t.Fatalf("recordRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if len(rows[0]) != len(recordColumns) {
		t.Errorf("row width = %d, want %d", len(rows[0]), len(recordColumns))
	}

	got := string(rows[0][2].(json.RawMessage))
	want := `{"id":"C-1","joined":"2021-05-03","balance":12.50}`
	if got != want {
		t.Errorf("data = %s, want %s", got, want)
	}
	if rows[1][1] != int32(1) {
		t.Errorf("row_index = %v, want 1", rows[1][1])
	}
}

func TestMessageRows(t *testing.T) {
	rows := messageRows(testResult())

	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	wantKinds := []string{"error", "info", "info"}
	wantPos := []int32{0, 0, 1}
	for i, row := range rows {
		if len(row) != len(messageColumns) {
			t.Errorf("row %d width = %d", i, len(row))
		}
		if row[1] != wantKinds[i] || row[2] != wantPos[i] {
			t.Errorf("row %d = %v/%v, want %s/%d", i, row[1], row[2], wantKinds[i], wantPos[i])
		}
	}
}

func TestPgTime_Zero(t *testing.T) {
	if pgTime(time.Time{}).Valid {
		t.Error("zero time must be NULL")
	}
}
