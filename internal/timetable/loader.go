package timetable

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// Loader reads the schedule document from a file path or an http(s) URL.
type Loader struct {
	logger     *slog.Logger
	httpClient http.Client
	source     string
}

func NewLoader(logger *slog.Logger, source string) *Loader {
	return &Loader{
		logger: logger,
		httpClient: http.Client{
			Timeout: 10 * time.Second,
		},
		source: source,
	}
}

func (l *Loader) Load(ctx context.Context) (*Timetable, error) {
	body, err := l.open(ctx)
	if err != nil {
		return nil, &ParseError{Source: l.source, Err: err}
	}
	defer body.Close()

	t, err := Parse(body)
	if err != nil {
		if perr, ok := err.(*ParseError); ok {
			perr.Source = l.source
		}
		return nil, err
	}
	return t, nil
}

func (l *Loader) open(ctx context.Context) (io.ReadCloser, error) {
	if !strings.HasPrefix(l.source, "http://") && !strings.HasPrefix(l.source, "https://") {
		return os.Open(l.source)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Accept", "application/xml, text/xml")

	l.logger.InfoContext(ctx, "fetching timetable", "method", request.Method, "url", request.URL.String())

	response, err := l.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	if response.StatusCode != http.StatusOK {
		response.Body.Close()
		return nil, fmt.Errorf("unexpected status: %s", response.Status)
	}
	return response.Body, nil
}

type Source interface {
	Load(context.Context) (*Timetable, error)
}

// Provider holds the current timetable. Reloads replace it wholesale.
type Provider struct {
	logger  *slog.Logger
	source  Source
	current atomic.Pointer[Timetable]
}

func NewProvider(logger *slog.Logger, source Source) *Provider {
	p := &Provider{
		logger: logger,
		source: source,
	}
	p.current.Store(Empty())
	return p
}

func (p *Provider) Current() *Timetable {
	return p.current.Load()
}

// Reload fetches the document again. On failure the previous timetable stays
// in place and the error is logged and returned.
func (p *Provider) Reload(ctx context.Context) error {
	t, err := p.source.Load(ctx)
	if err != nil {
		p.logger.ErrorContext(ctx, "load timetable", "error", err)
		return err
	}
	p.current.Store(t)
	p.logger.InfoContext(ctx, "timetable loaded",
		"sections", len(t.Sections),
		"subjects", len(t.Subjects),
		"semester_start", t.SemesterStart.Format(time.DateOnly))
	return nil
}
