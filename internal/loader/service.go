// Package loader runs sheet loads for registered schemas against uploaded
// documents and keeps their results for later retrieval.
package loader

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/sheetload/internal/i18n"
	"github.com/JonMunkholm/sheetload/internal/logging"
	"github.com/JonMunkholm/sheetload/internal/sheet"
)

// Config holds the service limits. Zero values select the defaults.
type Config struct {
	MaxConcurrent   int
	MaxWait         time.Duration
	Timeout         time.Duration // Upper bound for one load
	MaxFileSize     int64         // Bytes; 0 disables the check
	Retention       time.Duration // How long results stay retrievable; 0 keeps them forever
	DefaultLanguage i18n.Language
}

// DefaultTimeout bounds a single load when Config.Timeout is zero.
const DefaultTimeout = 2 * time.Minute

// Persister stores finished loads.
type Persister interface {
	SaveLoad(ctx context.Context, r *Result) error
}

// Request describes one upload to load.
type Request struct {
	Schema   string
	Filename string
	Body     io.Reader
	Language i18n.Language  // Empty selects the service default
	Extra    map[string]any // Static values merged into every record
}

// Result is a finished load.
type Result struct {
	ID         uuid.UUID      `json:"id"`
	Schema     string         `json:"schema"`
	SheetName  string         `json:"sheet_name"`
	Filename   string         `json:"filename"`
	Language   i18n.Language  `json:"language"`
	Rows       []sheet.Record `json:"rows"`
	Errors     []string       `json:"errors"`
	Infos      []string       `json:"infos"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Persisted  bool           `json:"persisted"`
}

// Duration returns how long the load took.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Columns returns the record keys of the first row, or the schema's field
// names when there are no rows.
func (r *Result) Columns() []string {
	if len(r.Rows) > 0 {
		return r.Rows[0].Keys()
	}
	if s, ok := sheet.Get(r.Schema); ok {
		names := make([]string, len(s.Fields))
		for i, nf := range s.Fields {
			names[i] = nf.Name
		}
		return names
	}
	return nil
}

// Service runs loads.
type Service struct {
	cfg       Config
	limiter   *Limiter
	results   *resultCache
	persister Persister
}

// NewService creates a service. p may be nil to keep results in memory only.
func NewService(cfg Config, p Persister) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = i18n.DefaultLanguage
	}
	return &Service{
		cfg:       cfg,
		limiter:   NewLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		results:   newResultCache(cfg.Retention),
		persister: p,
	}
}

// Schemas lists the registered schemas.
func (s *Service) Schemas() []sheet.Schema {
	return sheet.All()
}

// DefaultLanguage returns the language used for requests without one.
func (s *Service) DefaultLanguage() i18n.Language {
	return s.cfg.DefaultLanguage
}

// Load reads req.Body with the schema registered under req.Schema.
// Data problems end up in Result.Errors; the returned error covers unknown
// schemas, unreadable files, busy or cancelled loads and storage failures.
func (s *Service) Load(ctx context.Context, req Request) (*Result, error) {
	schema, ok := sheet.Get(req.Schema)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, req.Schema)
	}

	data, err := readLimited(req.Body, s.cfg.MaxFileSize)
	if err != nil {
		return nil, err
	}
	opener, err := openerFor(req.Filename, data, schema)
	if err != nil {
		return nil, err
	}

	lang := req.Language
	if lang == "" {
		lang = s.cfg.DefaultLanguage
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	id := uuid.New()
	ctx = logging.ContextWithLoadID(ctx, id.String())
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	logger := logging.WithFields(ctx, "schema", schema.Key, "filename", req.Filename)

	opts := []sheet.Option{sheet.WithLanguage(lang)}
	if len(req.Extra) > 0 {
		opts = append(opts, sheet.WithExtraValues(req.Extra))
	}
	sh, err := sheet.New(schema, opener, opts...)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	if err := sh.Load(ctx); err != nil {
		logger.Error("load failed", "error", err)
		return nil, fmt.Errorf("load %s: %w", req.Filename, err)
	}

	res := &Result{
		ID:         id,
		Schema:     schema.Key,
		SheetName:  schema.SheetName,
		Filename:   req.Filename,
		Language:   lang,
		Rows:       sh.Rows(),
		Errors:     sh.Errors(),
		Infos:      sh.Infos(),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}

	if s.persister != nil {
		if err := s.persister.SaveLoad(ctx, res); err != nil {
			logger.Error("failed to persist load", "error", err)
			return nil, fmt.Errorf("persist load: %w", err)
		}
		res.Persisted = true
	}

	s.results.put(res)
	logger.Info("load finished",
		"rows", len(res.Rows),
		"errors", len(res.Errors),
		"infos", len(res.Infos),
		"duration_ms", res.Duration().Milliseconds(),
	)
	return res, nil
}

// Result returns a retained load by ID.
func (s *Service) Result(id uuid.UUID) (*Result, error) {
	r, ok := s.results.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLoadNotFound, id)
	}
	return r, nil
}

// Recent returns up to limit retained loads, newest first.
func (s *Service) Recent(limit int) []*Result {
	return s.results.recent(limit)
}

// Status is a snapshot of the service for monitoring.
type Status struct {
	Limiter   LimiterStatus `json:"limiter"`
	Retained  int           `json:"retained_results"`
	Persisted bool          `json:"persistence_enabled"`
	Schemas   int           `json:"schemas"`
}

// Status returns the current service state.
func (s *Service) Status() Status {
	return Status{
		Limiter:   s.limiter.Status(),
		Retained:  s.results.len(),
		Persisted: s.persister != nil,
		Schemas:   sheet.Count(),
	}
}

// StartJanitor purges expired results every interval until ctx ends.
// It does nothing when results never expire.
func (s *Service) StartJanitor(ctx context.Context, interval time.Duration) {
	if s.cfg.Retention <= 0 {
		return
	}
	if interval <= 0 {
		interval = s.cfg.Retention / 2
	}
	s.results.runJanitor(ctx, interval)
}

// Shutdown waits for running loads to finish.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
