// Package prismic is a content.Source backed by the Prismic REST API.
package prismic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"SpaceTraveling/internal/core/content"
	"SpaceTraveling/internal/core/richtext"
	"SpaceTraveling/internal/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	defaultRefTTL  = 30 * time.Second
	maxBodyBytes   = 10 * 1024 * 1024
	userAgent      = "SpaceTraveling/1.0"
)

// Config holds client settings.
type Config struct {
	// APIURL is the repository API root, e.g. https://repo.cdn.prismic.io/api/v2.
	APIURL      string
	AccessToken string
	Timeout     time.Duration
	// RefTTL is how long the master ref is reused before the API root is read again.
	RefTTL            time.Duration
	RequestsPerSecond float64
	Burst             int
	FailureThreshold  int
	OpenDuration      time.Duration
}

// Client talks to one Prismic repository.
type Client struct {
	refFetched   time.Time
	httpClient   *http.Client
	limiter      *rate.Limiter
	breaker      *circuitBreaker
	logger       *slog.Logger
	linkResolver richtext.LinkResolver
	apiURL       *url.URL
	now          func() time.Time
	accessToken  string
	masterRef    string
	refTTL       time.Duration
	refMu        sync.Mutex
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithLinkResolver sets how preview documents map to site paths.
func WithLinkResolver(resolver richtext.LinkResolver) Option {
	return func(c *Client) {
		c.linkResolver = resolver
	}
}

// NewClient creates a client for the repository at cfg.APIURL.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIURL == "" {
		return nil, errors.New("prismic api url is required")
	}
	apiURL, err := url.Parse(strings.TrimRight(cfg.APIURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid prismic api url: %w", err)
	}
	if apiURL.Scheme != "http" && apiURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid prismic api url scheme %q", apiURL.Scheme)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	refTTL := cfg.RefTTL
	if refTTL <= 0 {
		refTTL = defaultRefTTL
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		apiURL:       apiURL,
		accessToken:  cfg.AccessToken,
		refTTL:       refTTL,
		httpClient:   &http.Client{Timeout: timeout},
		limiter:      rate.NewLimiter(limit, burst),
		logger:       slog.Default(),
		linkResolver: richtext.DefaultLinkResolver,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.breaker = newCircuitBreaker(c.logger, cfg.FailureThreshold, cfg.OpenDuration)
	return c, nil
}

// Query implements content.Source.
func (c *Client) Query(ctx context.Context, q content.Query) (*content.Response, error) {
	var paging url.Values
	if q.Cursor != "" {
		var err error
		if paging, err = c.cursorPaging(q.Cursor); err != nil {
			return nil, err
		}
	}

	ref := q.Ref
	if ref == "" {
		var err error
		if ref, err = c.MasterRef(ctx); err != nil {
			return nil, err
		}
	}

	target := c.searchURL(ref, q)
	if len(paging) > 0 {
		params := target.Query()
		for key := range paging {
			params.Set(key, paging.Get(key))
		}
		target.RawQuery = params.Encode()
	}

	var page searchResponse
	if err := c.getJSON(ctx, "query", target, &page); err != nil {
		return nil, err
	}
	return page.toResponse(), nil
}

// GetByUID implements content.Source.
func (c *Client) GetByUID(ctx context.Context, docType, uid, ref string) (*content.Document, error) {
	resp, err := c.Query(ctx, content.Query{
		Ref:        ref,
		Predicates: []content.Predicate{content.UIDIs(docType, uid)},
		PageSize:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("get %s %q: %w", docType, uid, err)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("get %s %q: %w", docType, uid, content.ErrNotFound)
	}
	return &resp.Results[0], nil
}

// ResolvePreview implements content.Source. The token is used as the ref;
// a ref the API refuses is an invalid token.
func (c *Client) ResolvePreview(ctx context.Context, token, documentID string) (string, error) {
	predicates := []content.Predicate{}
	if documentID != "" {
		predicates = append(predicates, content.IDIs(documentID))
	}

	resp, err := c.Query(ctx, content.Query{
		Ref:        token,
		Predicates: predicates,
		PageSize:   1,
	})
	if err != nil {
		var apiErr *content.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %s", content.ErrInvalidPreviewToken, apiErr.Message)
		}
		return "", err
	}

	if documentID == "" || len(resp.Results) == 0 {
		return "/", nil
	}

	doc := resp.Results[0]
	return c.linkResolver(richtext.SpanData{ID: doc.ID, UID: doc.UID, Type: doc.Type}), nil
}

// MasterRef returns the published content ref, reading the API root when
// the cached value is older than the ref TTL.
func (c *Client) MasterRef(ctx context.Context) (string, error) {
	c.refMu.Lock()
	defer c.refMu.Unlock()

	if c.masterRef != "" && c.now().Sub(c.refFetched) < c.refTTL {
		return c.masterRef, nil
	}

	target := *c.apiURL
	if c.accessToken != "" {
		query := target.Query()
		query.Set("access_token", c.accessToken)
		target.RawQuery = query.Encode()
	}

	var root apiRoot
	if err := c.getJSON(ctx, "api_root", &target, &root); err != nil {
		if c.masterRef != "" {
			c.logger.WarnContext(ctx, "failed to refresh master ref, reusing previous", "error", err)
			return c.masterRef, nil
		}
		return "", err
	}

	for _, ref := range root.Refs {
		if ref.IsMasterRef {
			c.masterRef = ref.Ref
			c.refFetched = c.now()
			return c.masterRef, nil
		}
	}
	return "", errors.New("prismic api root has no master ref")
}

func (c *Client) searchURL(ref string, q content.Query) *url.URL {
	target := *c.apiURL
	target.Path = strings.TrimRight(target.Path, "/") + "/documents/search"

	params := url.Values{}
	params.Set("ref", ref)
	if len(q.Predicates) > 0 {
		var predicates strings.Builder
		for _, p := range q.Predicates {
			predicates.WriteString(p.String())
		}
		params.Set("q", "["+predicates.String()+"]")
	}
	if len(q.Fetch) > 0 {
		params.Set("fetch", strings.Join(q.Fetch, ","))
	}
	if q.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.After != "" {
		params.Set("after", q.After)
	}
	if len(q.Orderings) > 0 {
		parts := make([]string, len(q.Orderings))
		for i, o := range q.Orderings {
			parts[i] = o.String()
		}
		params.Set("orderings", "["+strings.Join(parts, ",")+"]")
	}
	if c.accessToken != "" {
		params.Set("access_token", c.accessToken)
	}

	target.RawQuery = params.Encode()
	return &target
}

// cursorParams are the next_page parameters a cursor may carry.
var cursorParams = []string{"page", "pageSize", "after"}

// cursorPaging validates a next_page cursor and returns its paging
// parameters. Anything else in the cursor is dropped.
func (c *Client) cursorPaging(cursor string) (url.Values, error) {
	u, err := url.Parse(cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", content.ErrInvalidCursor, err)
	}
	if u.Scheme != c.apiURL.Scheme || !strings.EqualFold(u.Host, c.apiURL.Host) {
		return nil, fmt.Errorf("%w: unexpected host %q", content.ErrInvalidCursor, u.Host)
	}
	if !strings.HasSuffix(u.Path, "/documents/search") {
		return nil, fmt.Errorf("%w: unexpected path %q", content.ErrInvalidCursor, u.Path)
	}

	query := u.Query()
	paging := url.Values{}
	for _, key := range cursorParams {
		value := query.Get(key)
		if value == "" {
			continue
		}
		if key != "after" {
			if n, err := strconv.Atoi(value); err != nil || n < 1 {
				return nil, fmt.Errorf("%w: bad %s %q", content.ErrInvalidCursor, key, value)
			}
		}
		paging.Set(key, value)
	}
	if paging.Get("page") == "" {
		return nil, fmt.Errorf("%w: missing page", content.ErrInvalidCursor)
	}
	return paging, nil
}

func (c *Client) getJSON(ctx context.Context, operation string, target *url.URL, out interface{}) error {
	host := target.Host
	if err := c.breaker.canAttempt(host); err != nil {
		metrics.RecordContentRequest(operation, "circuit_open", 0)
		return fmt.Errorf("%s: %w: %v", operation, content.ErrUnavailable, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limiter: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordContentRequest(operation, "error", time.Since(start).Seconds())
		if ctx.Err() == nil {
			c.breaker.recordFailure(host, err)
		}
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	metrics.RecordContentRequest(operation, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	if err != nil {
		c.breaker.recordFailure(host, err)
		return fmt.Errorf("%s: failed to read response body: %w", operation, err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &content.APIError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			c.breaker.recordFailure(host, apiErr)
		} else {
			c.breaker.recordSuccess(host)
		}
		return apiErr
	}

	c.breaker.recordSuccess(host)
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", operation, err)
	}
	return nil
}

// errorMessage extracts the API's error text, falling back to the raw body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
