// Package catalog talks to the external read-only product API and applies
// the client-side filter and sort pipeline to the pages it returns.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultPageSize is the fixed listing page size.
const DefaultPageSize = 12

// Client fetches product data from the upstream catalog service. It issues
// GET requests only and never mutates remote state.
type Client struct {
	base     *url.URL
	http     *http.Client
	pageSize int
	lg       *zap.Logger
	group    singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithPageSize overrides the listing page size.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithLogger sets the logger used for swallowed upstream failures.
func WithLogger(lg *zap.Logger) Option {
	return func(c *Client) { c.lg = lg }
}

// WithTelemetry instruments outbound requests with the given providers.
func WithTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) Option {
	return func(c *Client) {
		base := c.http.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.http.Transport = otelhttp.NewTransport(base,
			otelhttp.WithTracerProvider(tp),
			otelhttp.WithMeterProvider(mp),
		)
	}
}

// NewClient creates a catalog Client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse catalog base URL")
	}
	c := &Client{
		base:     u,
		http:     &http.Client{},
		pageSize: DefaultPageSize,
		lg:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches one page of products for the given filter and runs the
// post-filter and sort pipeline on it. Endpoint precedence: free-text search
// wins over category, category wins over the unfiltered listing.
//
// Upstream failures are swallowed: the caller always gets a renderable page,
// empty with a zero total on error. No retry is attempted and "no matches"
// is indistinguishable from "upstream down".
func (c *Client) List(ctx context.Context, f Filter) Page {
	page, err := c.fetchPage(ctx, c.listURL(f))
	if err != nil {
		c.lg.Warn("Catalog listing failed", zap.Error(err))
		return Page{Limit: c.pageSize}
	}
	page.Products = applyFilters(page.Products, f)
	applySort(page.Products, f.SortBy)
	return page
}

// listURL selects the endpoint and pagination window for a filter.
func (c *Client) listURL(f Filter) string {
	skip := (f.Page - 1) * c.pageSize
	window := url.Values{
		"limit": []string{strconv.Itoa(c.pageSize)},
		"skip":  []string{strconv.Itoa(skip)},
	}
	switch {
	case f.Search != "":
		window.Set("q", f.Search)
		return c.endpoint("/products/search", window)
	case f.Category != "":
		return c.endpoint("/products/category/"+url.PathEscape(f.Category), window)
	default:
		return c.endpoint("/products", window)
	}
}

// Search issues a raw free-text search, used by the typeahead flow.
func (c *Client) Search(ctx context.Context, query string, limit int) (Page, error) {
	v := url.Values{
		"q":     []string{query},
		"limit": []string{strconv.Itoa(limit)},
	}
	return c.fetchPage(ctx, c.endpoint("/products/search", v))
}

// Product fetches a single product by ID. A missing product yields
// ErrNotFound.
func (c *Client) Product(ctx context.Context, id int) (*Product, error) {
	data, err := c.get(ctx, c.endpoint("/products/"+strconv.Itoa(id), nil))
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get product")
	}
	p, err := decodeProduct(jx.DecodeBytes(data))
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Categories returns the category index.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	data, err := c.get(ctx, c.endpoint("/products/category-list", nil))
	if err != nil {
		return nil, errors.Wrap(err, "get categories")
	}
	var out []string
	d := jx.DecodeBytes(data)
	if err := d.Arr(func(d *jx.Decoder) error {
		s, err := d.Str()
		if err != nil {
			return err
		}
		out = append(out, s)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode categories")
	}
	return out, nil
}

// Ping checks upstream reachability with a minimal listing request.
func (c *Client) Ping(ctx context.Context) error {
	v := url.Values{"limit": []string{"1"}}
	_, err := c.get(ctx, c.endpoint("/products", v))
	return err
}

func (c *Client) fetchPage(ctx context.Context, u string) (Page, error) {
	data, err := c.get(ctx, u)
	if err != nil {
		return Page{}, err
	}
	return decodePage(data)
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// statusError reports a non-success upstream response.
type statusError struct {
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upstream status %d", e.Code)
}

// get performs a GET, collapsing concurrent identical requests into a single
// upstream call. The collapsed call runs under the first caller's context.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	v, err, _ := c.group.Do(u, func() (any, error) {
		return c.fetch(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Client) fetch(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{Code: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	return data, nil
}
