package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/sheetload/internal/field"
	"github.com/JonMunkholm/sheetload/internal/i18n"
	"github.com/JonMunkholm/sheetload/internal/loader"
	"github.com/JonMunkholm/sheetload/internal/sheet"
	"github.com/JonMunkholm/sheetload/internal/web/templates"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to disk.
const multipartMemory = 10 << 20

// ----------------------------------------------------------------------------
// DTOs
// ----------------------------------------------------------------------------

// FieldInfo describes one schema field.
type FieldInfo struct {
	Name     string `json:"name"`
	Source   string `json:"source"`
	Kind     string `json:"kind,omitempty"`
	Required bool   `json:"required"`
	Unique   bool   `json:"unique,omitempty"`
	Default  bool   `json:"has_default,omitempty"`
}

// SchemaInfo describes a registered schema.
type SchemaInfo struct {
	Key        string      `json:"key"`
	Label      string      `json:"label"`
	SheetName  string      `json:"sheet_name"`
	HeaderRows int         `json:"header_rows"`
	LabelRow   int         `json:"label_row"`
	Fields     []FieldInfo `json:"fields"`
}

func schemaInfo(s sheet.Schema) SchemaInfo {
	info := SchemaInfo{
		Key:        s.Key,
		Label:      s.Label,
		SheetName:  s.SheetName,
		HeaderRows: s.HeaderRows,
		LabelRow:   s.LabelRowIndex(),
		Fields:     make([]FieldInfo, len(s.Fields)),
	}
	for i, nf := range s.Fields {
		fi := FieldInfo{
			Name:     nf.Name,
			Source:   nf.Field.Source,
			Required: nf.Field.Required(),
			Unique:   nf.Field.Unique,
			Default:  nf.Field.Default != nil,
		}
		if nf.Field.Kind != nil && nf.Field.TypeCheckEnabled() {
			fi.Kind = nf.Field.Kind.Name()
		}
		info.Fields[i] = fi
	}
	return info
}

// LoadSummary is a load without its rows.
type LoadSummary struct {
	ID         uuid.UUID     `json:"id"`
	Schema     string        `json:"schema"`
	Filename   string        `json:"filename"`
	Language   i18n.Language `json:"language"`
	RowCount   int           `json:"row_count"`
	ErrorCount int           `json:"error_count"`
	InfoCount  int           `json:"info_count"`
	FinishedAt time.Time     `json:"finished_at"`
	DurationMS int64         `json:"duration_ms"`
	Persisted  bool          `json:"persisted"`
}

func summarize(r *loader.Result) LoadSummary {
	return LoadSummary{
		ID:         r.ID,
		Schema:     r.Schema,
		Filename:   r.Filename,
		Language:   r.Language,
		RowCount:   len(r.Rows),
		ErrorCount: len(r.Errors),
		InfoCount:  len(r.Infos),
		FinishedAt: r.FinishedAt,
		DurationMS: r.Duration().Milliseconds(),
		Persisted:  r.Persisted,
	}
}

// ----------------------------------------------------------------------------
// Health and status
// ----------------------------------------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok", "database": "disabled"}
	status := http.StatusOK
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			resp["status"] = "degraded"
			resp["database"] = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp["database"] = "ok"
		}
	}
	writeJSON(w, r, status, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.Status())
}

// ----------------------------------------------------------------------------
// Schemas
// ----------------------------------------------------------------------------

func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	schemas := s.service.Schemas()
	out := make([]SchemaInfo, len(schemas))
	for i, sc := range schemas {
		out[i] = schemaInfo(sc)
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "schema")
	sc, ok := sheet.Get(key)
	if !ok {
		s.respondError(w, r, fmt.Errorf("%w: %s", loader.ErrUnknownSchema, key))
		return
	}
	writeJSON(w, r, http.StatusOK, schemaInfo(sc))
}

// ----------------------------------------------------------------------------
// Loads
// ----------------------------------------------------------------------------

// runLoad reads the multipart upload and hands it to the service.
func (s *Server) runLoad(w http.ResponseWriter, r *http.Request) (*loader.Result, error) {
	if limit := s.cfg.Load.MaxFileSize; limit > 0 {
		// Leave room for the multipart envelope.
		r.Body = http.MaxBytesReader(w, r.Body, limit+multipartMemory)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, errNoFile
		}
		return nil, err
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, errNoFile
		}
		return nil, err
	}
	defer file.Close()

	var extra map[string]any
	if raw := strings.TrimSpace(r.FormValue("extra")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &extra); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidExtra, err)
		}
	}

	return s.service.Load(r.Context(), loader.Request{
		Schema:   chi.URLParam(r, "schema"),
		Filename: header.Filename,
		Body:     file,
		Language: s.requestLanguage(r),
		Extra:    extra,
	})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	res, err := s.runLoad(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/load/"+res.ID.String())
	writeJSON(w, r, http.StatusCreated, res)
}

func (s *Server) handleLoadForm(w http.ResponseWriter, r *http.Request) {
	res, err := s.runLoad(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, "/load/"+res.ID.String(), http.StatusSeeOther)
}

func (s *Server) lookupResult(r *http.Request) (*loader.Result, error) {
	id, err := uuid.Parse(chi.URLParam(r, "loadID"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidID, err)
	}
	return s.service.Result(id)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	res, err := s.lookupResult(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// handleResultRows returns only the records, with ?exclude=a,b dropping
// attributes from each.
func (s *Server) handleResultRows(w http.ResponseWriter, r *http.Request) {
	res, err := s.lookupResult(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	exclude := splitList(r.URL.Query().Get("exclude"))
	rows := make([]sheet.Record, len(res.Rows))
	for i, rec := range res.Rows {
		rows[i] = rec.Without(exclude...)
	}
	writeJSON(w, r, http.StatusOK, rows)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	recent := s.service.Recent(parseIntParam(r, "limit", 20))
	out := make([]LoadSummary, len(recent))
	for i, res := range recent {
		out[i] = summarize(res)
	}
	writeJSON(w, r, http.StatusOK, out)
}

// ----------------------------------------------------------------------------
// Pages
// ----------------------------------------------------------------------------

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	schemas := s.service.Schemas()
	data := make([]templates.SchemaData, len(schemas))
	for i, sc := range schemas {
		data[i] = templates.SchemaData{
			Key:        sc.Key,
			Label:      sc.Label,
			SheetName:  sc.SheetName,
			HeaderRows: sc.HeaderRows,
			Columns:    sc.Columns(),
		}
	}

	// The request's preferred language is listed first so the form
	// selects it.
	preferred := s.requestLanguage(r)
	langs := []string{string(preferred)}
	for _, l := range i18n.Languages() {
		if l != preferred {
			langs = append(langs, string(l))
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = templates.Index(data, langs).Render(r.Context(), w)
}

func (s *Server) handleResultPage(w http.ResponseWriter, r *http.Request) {
	res, err := s.lookupResult(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = templates.Result(resultData(res)).Render(r.Context(), w)
}

func resultData(res *loader.Result) templates.ResultData {
	columns := res.Columns()
	rows := make([][]string, len(res.Rows))
	for i, rec := range res.Rows {
		cells := make([]string, len(columns))
		for j, col := range columns {
			cells[j] = field.FormatValue(rec.Value(col))
		}
		rows[i] = cells
	}
	return templates.ResultData{
		ID:        res.ID.String(),
		Schema:    res.Schema,
		SheetName: res.SheetName,
		Filename:  res.Filename,
		Language:  string(res.Language),
		Duration:  res.Duration().Round(time.Millisecond).String(),
		Persisted: res.Persisted,
		Columns:   columns,
		Rows:      rows,
		Errors:    res.Errors,
		Infos:     res.Infos,
	}
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

// parseIntParam parses a positive integer query parameter with a default.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// splitList splits a comma-separated parameter, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
