// Package fetch retrieves remote linked-data resources. All graph
// retrieval funnels through a single Fetcher carrying a global
// minimum-interval throttle; the secondary text-snippet and raw-bytes
// services have their own unthrottled clients.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/knakk/rdf"
	"golang.org/x/time/rate"

	"github.com/c360studio/semexhibit/graph"
)

// ErrStatus marks a non-success HTTP status from a remote service.
var ErrStatus = errors.New("unexpected HTTP status")

// StatusError carries the offending status code and matches ErrStatus
// under errors.Is.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("unexpected HTTP status %d", e.Code) }

// Is lets errors.Is(err, ErrStatus) match any StatusError.
func (e *StatusError) Is(target error) bool { return target == ErrStatus }

const acceptRDF = "application/n-triples, text/turtle;q=0.9, application/rdf+xml;q=0.8"

// RetryConfig bounds retries of transient graph-fetch failures.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts per fetch.
	MaxAttempts int

	// BackoffBase is the initial backoff duration.
	BackoffBase time.Duration

	// BackoffMultiplier is applied to the backoff on each retry.
	BackoffMultiplier float64

	// MaxBackoff caps the backoff duration.
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns sensible retry defaults for graph fetches.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       500 * time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxBackoff:        5 * time.Second,
	}
}

// Options configures a Fetcher.
type Options struct {
	// MinInterval is the global minimum gap between any two graph
	// fetches. Zero disables throttling.
	MinInterval time.Duration

	// Timeout bounds one HTTP round trip.
	Timeout time.Duration

	// UserAgent is sent on every request.
	UserAgent string

	// Retry bounds retries of transient failures. Zero MaxAttempts
	// means a single attempt.
	Retry RetryConfig
}

// Fetcher retrieves RDF descriptions of identifiers over HTTP. One Fetcher
// serves the whole run so the throttle is global, not per identifier.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	retry     RetryConfig
	userAgent string
	logger    *slog.Logger
}

// NewFetcher creates a throttled RDF fetcher.
func NewFetcher(opts Options, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Retry.MaxAttempts < 1 {
		opts.Retry.MaxAttempts = 1
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.MinInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.MinInterval), 1)
	}

	dialer := &net.Dialer{
		Timeout:   opts.Timeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   opts.Timeout,
		ResponseHeaderTimeout: opts.Timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}

	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		limiter:   limiter,
		retry:     opts.Retry,
		userAgent: opts.UserAgent,
		logger:    logger,
	}
}

// Fetch retrieves the triples describing id. Every attempt, including
// retries, first waits on the global throttle, so no two requests issued by
// this Fetcher are closer together than the configured minimum interval.
func (f *Fetcher) Fetch(ctx context.Context, id graph.Identifier) ([]graph.Triple, error) {
	var lastErr error
	backoff := f.retry.BackoffBase

	for attempt := 1; attempt <= f.retry.MaxAttempts; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		triples, err := f.fetchOnce(ctx, id)
		if err == nil {
			f.logger.Debug("downloaded resource", "id", string(id), "triples", len(triples))
			return triples, nil
		}
		lastErr = err
		if !transient(err) || attempt == f.retry.MaxAttempts {
			break
		}

		f.logger.Debug("fetch failed, retrying",
			"id", string(id), "attempt", attempt, "backoff", backoff, "error", err)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff = time.Duration(float64(backoff) * f.retry.BackoffMultiplier)
		if f.retry.MaxBackoff > 0 && backoff > f.retry.MaxBackoff {
			backoff = f.retry.MaxBackoff
		}
	}
	return nil, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, id graph.Identifier) ([]graph.Triple, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, string(id), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", acceptRDF)
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch <%s>: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch <%s>: %w", id, &StatusError{Code: resp.StatusCode})
	}

	format, err := formatFor(resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("fetch <%s>: %w", id, err)
	}
	return decodeTriples(resp.Body, format)
}

// formatFor maps a response Content-Type onto an RDF serialization.
func formatFor(contentType string) (rdf.Format, error) {
	mediaType := contentType
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = mt
	}
	switch mediaType {
	case "application/n-triples", "text/plain":
		return rdf.NTriples, nil
	case "text/turtle", "application/x-turtle":
		return rdf.Turtle, nil
	case "application/rdf+xml", "application/xml", "text/xml":
		return rdf.RDFXML, nil
	default:
		return rdf.NTriples, fmt.Errorf("unsupported content type %q", contentType)
	}
}

// decodeTriples parses a serialized RDF body into the graph's term model.
func decodeTriples(r io.Reader, format rdf.Format) ([]graph.Triple, error) {
	decoded, err := rdf.NewTripleDecoder(r, format).DecodeAll()
	if err != nil {
		return nil, fmt.Errorf("decode triples: %w", err)
	}
	out := make([]graph.Triple, 0, len(decoded))
	for _, t := range decoded {
		out = append(out, graph.Triple{
			Subject:   graph.Identifier(t.Subj.String()),
			Predicate: graph.Identifier(t.Pred.String()),
			Object:    convertObject(t.Obj),
		})
	}
	return out, nil
}

func convertObject(o rdf.Object) graph.Object {
	if o.Type() != rdf.TermLiteral {
		// IRIs and blank nodes are both opaque identifiers here; a
		// blank node's "_:" label only needs to be stable within one
		// response, which it is.
		return graph.Identifier(o.String())
	}
	lit := o.(rdf.Literal)
	converted := graph.Literal{Value: lit.String(), Language: lit.Lang()}
	if lit.Lang() == "" {
		converted.Datatype = graph.Identifier(lit.DataType.String())
	}
	return converted
}

// transient reports whether an error is worth retrying: network failures
// and server-side (5xx) statuses.
func transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// url.Error wrapping a connection failure.
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset")
}
