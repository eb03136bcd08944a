// Package overpass provides a client for the OSM Overpass API, the
// pipeline's external vector-data query collaborator. Queries are bounding
// box plus tag filters; results come back as raw elements for the vector
// layer builder to interpret.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Overpass API endpoint.
const DefaultBaseURL = "https://overpass-api.de/api/interpreter"

// Client defines the Overpass operations the pipeline needs.
type Client interface {
	// Query runs a bbox + tag-filter query and returns the raw elements.
	Query(ctx context.Context, q Query) (*Response, error)
}

// BBox is a geographic query window in WGS84 degrees.
type BBox struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// TagFilter selects features by OSM tag. An empty Value matches any value
// of the key.
type TagFilter struct {
	Key   string
	Value string
}

// Query describes one Overpass request.
type Query struct {
	BBox    BBox
	Filters []TagFilter
	// Timeout is the server-side query budget in seconds; 0 means 25.
	Timeout int
}

// LatLon is a geographic coordinate as Overpass returns it.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Element is one OSM feature. Nodes carry Lat/Lon; ways carry Geometry
// (from "out geom").
type Element struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Lat      float64           `json:"lat,omitempty"`
	Lon      float64           `json:"lon,omitempty"`
	Geometry []LatLon          `json:"geometry,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
}

// Response is the decoded Overpass payload.
type Response struct {
	Elements []Element `json:"elements"`
}

// Option configures the Overpass client.
type Option func(*httpClient)

// WithBaseURL sets a custom interpreter endpoint (for testing or mirrors).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps request frequency. Public Overpass instances throttle
// aggressively; default is one request per 2 seconds.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(r, burst)
	}
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(n int) Option {
	return func(c *httpClient) {
		c.retries = n
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retries int
}

// NewClient creates an Overpass client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 90 * time.Second},
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
		retries: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query implements Client.
func (c *httpClient) Query(ctx context.Context, q Query) (*Response, error) {
	if len(q.Filters) == 0 {
		return nil, eris.New("overpass: query needs at least one tag filter")
	}

	ql := buildQL(q)
	log := zap.L().With(zap.String("endpoint", c.baseURL))

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "overpass: rate limit wait")
		}

		resp, err := c.do(ctx, ql)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		log.Warn("overpass query failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return nil, eris.Wrapf(lastErr, "overpass: query failed after %d attempts", c.retries+1)
}

func (c *httpClient) do(ctx context.Context, ql string) (*Response, error) {
	form := url.Values{"data": {ql}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "post")
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, eris.Errorf("status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var out Response
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, eris.Wrap(err, "decode response")
	}
	return &out, nil
}

// buildQL renders a Query as Overpass QL, asking for way geometry inline.
func buildQL(q Query) string {
	timeout := q.Timeout
	if timeout == 0 {
		timeout = 25
	}

	bbox := fmt.Sprintf("(%g,%g,%g,%g)", q.BBox.South, q.BBox.West, q.BBox.North, q.BBox.East)

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", timeout)
	for _, f := range q.Filters {
		var tag string
		if f.Value == "" {
			tag = fmt.Sprintf("[%q]", f.Key)
		} else {
			tag = fmt.Sprintf("[%q=%q]", f.Key, f.Value)
		}
		fmt.Fprintf(&b, "  node%s%s;\n", tag, bbox)
		fmt.Fprintf(&b, "  way%s%s;\n", tag, bbox)
	}
	b.WriteString(");\nout geom;\n")
	return b.String()
}
