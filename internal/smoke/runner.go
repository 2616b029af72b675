// Package smoke runs end-to-end checks against a running prodsnap API.
package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBaseURL is where the API listens by default.
const DefaultBaseURL = "http://localhost:8000"

// ErrUnreachable signals that the service did not answer the reachability probe.
var ErrUnreachable = errors.New("service unreachable")

// Option configures the Runner.
type Option func(*Runner)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Runner) { r.client = c }
}

// WithOutput sets where check lines and the summary are written.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithRequestIDs overrides the X-Request-ID generator.
func WithRequestIDs(next func() string) Option {
	return func(r *Runner) { r.newID = next }
}

// Check is a single named probe of the API. It returns a short human-readable detail on success.
type Check struct {
	Name string
	Run  func(ctx context.Context, r *Runner) (string, error)
}

// Result is the outcome of one Check.
type Result struct {
	Name   string
	Detail string
	Err    error
}

// OK reports whether the check passed.
func (r Result) OK() bool { return r.Err == nil }

// Report collects check results.
type Report struct {
	Results []Result
}

// Passed returns the number of passing checks.
func (r Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Failed returns the number of failing checks.
func (r Report) Failed() int { return len(r.Results) - r.Passed() }

// Runner executes checks against one base URL.
type Runner struct {
	baseURL string
	client  *http.Client
	out     io.Writer
	logger  *zap.Logger
	newID   func() string
	checks  []Check
}

// New creates a Runner with the default check suite.
func New(baseURL string, opts ...Option) *Runner {
	r := &Runner{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		out:     io.Discard,
		logger:  zap.NewNop(),
		newID:   uuid.NewString,
		checks:  DefaultChecks(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Probe checks that the service answers at all.
func (r *Runner) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	resp, err := r.do(ctx, http.MethodGet, "/", nil, "")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnreachable, r.baseURL, err)
	}
	_ = resp.Body.Close()
	return nil
}

// Run probes the service and then runs every check in order.
// An unreachable service aborts before any check; individual check failures are collected in the report.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	fmt.Fprintf(r.out, "Checking %s ...\n", r.baseURL)
	if err := r.Probe(ctx); err != nil {
		fmt.Fprintf(r.out, "FAIL service is not running: %v\n", err)
		return Report{}, err
	}
	fmt.Fprintln(r.out, "  service is running")

	var report Report
	for _, c := range r.checks {
		detail, err := c.Run(ctx, r)
		res := Result{Name: c.Name, Detail: detail, Err: err}
		report.Results = append(report.Results, res)
		if err != nil {
			fmt.Fprintf(r.out, "FAIL %-16s %v\n", c.Name, err)
			continue
		}
		fmt.Fprintf(r.out, "ok   %-16s %s\n", c.Name, detail)
	}

	fmt.Fprintf(r.out, "\n%d/%d checks passed\n", report.Passed(), len(report.Results))
	return report, nil
}

// getJSON issues a GET and decodes a 200 response into v.
func (r *Runner) getJSON(ctx context.Context, path string, v any) error {
	resp, err := r.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return decodeOK(resp, v)
}

// postFile uploads payload as the multipart "file" field and decodes a 200 response into v.
func (r *Runner) postFile(
	ctx context.Context, path, filename, contentType string, payload []byte, v any,
) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part: %w", err)
	}
	if _, err = part.Write(payload); err != nil {
		return fmt.Errorf("write part: %w", err)
	}
	if err = mw.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	resp, err := r.do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType())
	if err != nil {
		return err
	}
	return decodeOK(resp, v)
}

func (r *Runner) do(
	ctx context.Context, method, path string, body io.Reader, contentType string,
) (*http.Response, error) {
	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	requestID := r.newID()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	r.logger.Debug("smoke request",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	return resp, nil
}

func decodeOK(resp *http.Response, v any) error {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
