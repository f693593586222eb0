package loader

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/sheetload/internal/i18n"
	_ "github.com/JonMunkholm/sheetload/internal/schemas"
)

const contactsCSV = "\xEF\xBB\xBFID;Name;Email;State;Newsletter;Balance\n" +
	"C-1;Ada;ada@example.com;California;;1250.50\n" +
	";;;;;\n" +
	"C-2;;grace@example.com;ny;no;\n"

type fakePersister struct {
	saved []*Result
	err   error
}

func (p *fakePersister) SaveLoad(_ context.Context, r *Result) error {
	if p.err != nil {
		return p.err
	}
	p.saved = append(p.saved, r)
	return nil
}

// ----------------------------------------------------------------------------
// Request Validation Tests
// ----------------------------------------------------------------------------

func TestLoad_RequestErrors(t *testing.T) {
	svc := NewService(Config{MaxFileSize: 64}, nil)

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{
			name:    "unknown schema",
			req:     Request{Schema: "nope", Filename: "a.csv", Body: strings.NewReader("x")},
			wantErr: ErrUnknownSchema,
		},
		{
			name:    "empty file",
			req:     Request{Schema: "contacts", Filename: "a.csv", Body: strings.NewReader("")},
			wantErr: ErrEmptyFile,
		},
		{
			name:    "file too large",
			req:     Request{Schema: "contacts", Filename: "a.csv", Body: strings.NewReader(strings.Repeat("x", 65))},
			wantErr: ErrFileTooLarge,
		},
		{
			name:    "unsupported format",
			req:     Request{Schema: "contacts", Filename: "a.pdf", Body: strings.NewReader("%PDF")},
			wantErr: ErrUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Load(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Load Tests
// ----------------------------------------------------------------------------

func TestLoad_CSV(t *testing.T) {
	p := &fakePersister{}
	svc := NewService(Config{}, p)

	res, err := svc.Load(context.Background(), Request{
		Schema:   "contacts",
		Filename: "contacts.csv",
		Body:     strings.NewReader(contactsCSV),
		Language: i18n.DE,
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(res.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(res.Rows))
	}
	if got := res.Rows[0].Value("state"); got != "CA" {
		t.Errorf("state = %v, want CA", got)
	}
	if len(res.Errors) != 1 || res.Errors[0] != "Blatt Contacts, Zeile 4: Das Feld Name muss ausgefüllt sein" {
		t.Errorf("Errors = %q", res.Errors)
	}
	if len(res.Infos) != 1 || res.Infos[0] != "Blatt Contacts, Zeile 3: Zeile übersprungen" {
		t.Errorf("Infos = %q", res.Infos)
	}
	if !res.Persisted || len(p.saved) != 1 {
		t.Errorf("persisted = %v, saved %d", res.Persisted, len(p.saved))
	}

	got, err := svc.Result(res.ID)
	if err != nil || got != res {
		t.Errorf("Result(%s) = %v, %v", res.ID, got, err)
	}
	if recent := svc.Recent(10); len(recent) != 1 || recent[0].ID != res.ID {
		t.Errorf("Recent() = %v", recent)
	}
}

func TestLoad_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "Contacts"); err != nil {
		t.Fatalf("SetSheetName: %v", err)
	}
	rows := [][]any{
		{"ID", "Name", "Email", "State", "Newsletter", "Balance"},
		{1, "Ada", "ada@example.com", "TX", true, 12.5},
		{2, "Grace", nil, nil, false, nil},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Contacts", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	svc := NewService(Config{}, nil)
	res, err := svc.Load(context.Background(), Request{
		Schema:   "contacts",
		Filename: "Contacts.XLSX",
		Body:     bytes.NewReader(buf.Bytes()),
		Extra:    map[string]any{"source": "crm"},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Errorf("Errors = %q", res.Errors)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(res.Rows))
	}
	if got := res.Rows[0].Value("id"); got != "1" {
		t.Errorf("id = %#v, want \"1\"", got)
	}
	if got := res.Rows[1].Value("newsletter"); got != false {
		t.Errorf("newsletter = %#v, want false", got)
	}
	if got := res.Rows[1].Value("source"); got != "crm" {
		t.Errorf("source = %#v, want crm", got)
	}
	if res.Language != i18n.EN || res.Persisted {
		t.Errorf("language %s persisted %v", res.Language, res.Persisted)
	}
}

func TestLoad_MissingSheetIsNotAnError(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	svc := NewService(Config{}, nil)
	res, err := svc.Load(context.Background(), Request{
		Schema:   "contacts",
		Filename: "empty.xlsx",
		Body:     bytes.NewReader(buf.Bytes()),
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Errors) != 1 || res.Errors[0] != "Sheet Contacts not present in document" {
		t.Errorf("Errors = %q", res.Errors)
	}
}

func TestLoad_PersistFailure(t *testing.T) {
	p := &fakePersister{err: errors.New("connection refused")}
	svc := NewService(Config{}, p)

	_, err := svc.Load(context.Background(), Request{
		Schema:   "contacts",
		Filename: "contacts.csv",
		Body:     strings.NewReader(contactsCSV),
	})
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("Load() error = %v, want persistence error", err)
	}
	if svc.Status().Retained != 0 {
		t.Error("failed load must not be retained")
	}
}

func TestLoad_Busy(t *testing.T) {
	svc := NewService(Config{MaxConcurrent: 1, MaxWait: 10 * time.Millisecond}, nil)
	if !svc.limiter.TryAcquire() {
		t.Fatal("TryAcquire failed")
	}
	defer svc.limiter.Release()

	_, err := svc.Load(context.Background(), Request{
		Schema:   "contacts",
		Filename: "contacts.csv",
		Body:     strings.NewReader(contactsCSV),
	})
	if !errors.Is(err, ErrTooManyLoads) {
		t.Errorf("Load() error = %v, want ErrTooManyLoads", err)
	}
}

// ----------------------------------------------------------------------------
// Result Retention Tests
// ----------------------------------------------------------------------------

func TestResult_NotFound(t *testing.T) {
	svc := NewService(Config{}, nil)
	if _, err := svc.Result(uuid.New()); !errors.Is(err, ErrLoadNotFound) {
		t.Errorf("Result() error = %v, want ErrLoadNotFound", err)
	}
}

func TestResultCache_Expiry(t *testing.T) {
	c := newResultCache(time.Hour)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	old := &Result{ID: uuid.New(), FinishedAt: now.Add(-2 * time.Hour)}
	fresh := &Result{ID: uuid.New(), FinishedAt: now.Add(-time.Minute)}
	c.put(old)
	c.put(fresh)

	if _, ok := c.get(old.ID); ok {
		t.Error("expired result still retrievable")
	}
	if _, ok := c.get(fresh.ID); !ok {
		t.Error("fresh result not retrievable")
	}
	if n := c.purge(); n != 1 {
		t.Errorf("purge() = %d, want 1", n)
	}
	if c.len() != 1 {
		t.Errorf("len() = %d, want 1", c.len())
	}
}

func TestResultCache_RecentOrder(t *testing.T) {
	c := newResultCache(0)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		c.put(&Result{ID: uuid.New(), Filename: string(rune('a' + i)), FinishedAt: base.Add(time.Duration(i) * time.Minute)})
	}

	got := c.recent(2)
	if len(got) != 2 || got[0].Filename != "e" || got[1].Filename != "d" {
		t.Errorf("recent(2) = %v, %v", got[0].Filename, got[1].Filename)
	}
}

func TestResult_Columns(t *testing.T) {
	r := &Result{Schema: "contacts"}
	if got := strings.Join(r.Columns(), ","); got != "id,name,email,state,newsletter,balance" {
		t.Errorf("Columns() = %s", got)
	}
}
