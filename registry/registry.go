// Package registry loads viewer capability manifests from HTTP endpoints and
// local files.
//
// Fetching follows an independent-failure model: every location is attempted
// on its own, one failure never cancels or blocks the others, and the caller
// receives every successfully loaded manifest together with a diagnostic list
// of failures. Documents failing structural validation are counted as
// failures and never surface in the result set, so downstream compatibility
// evaluation only ever sees usable declarations.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	capmanifest "github.com/BioImageTools/capability-manifest"
)

const fetchConcurrency = 8

// FetchFailure records one manifest location that could not be loaded.
type FetchFailure struct {
	Location string
	Err      error
}

func (f FetchFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Location, f.Err)
}

// Client fetches and validates capability manifests.
type Client struct {
	cfg        Config
	httpClient *http.Client
	cache      *gocache.Cache
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger attaches a logger. The default client is silent.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a manifest registry client.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg: cfg,
		// One attempt gets a third of the fetch budget so a stalled
		// connection leaves room for retries within FetchTimeout.
		httpClient: &http.Client{
			Timeout: cfg.FetchTimeout / 3,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if cfg.CacheTTL > 0 {
		c.cache = gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return c
}

// Fetch loads one manifest from an http(s) URL, retrying transient failures
// with exponential backoff. The document may be YAML or JSON. The returned
// manifest has passed structural validation.
func (c *Client) Fetch(ctx context.Context, url string) (*capmanifest.Manifest, error) {
	if c.cache != nil {
		if v, ok := c.cache.Get(url); ok {
			m := v.(capmanifest.Manifest)
			return &m, nil
		}
	}

	// FetchTimeout bounds the whole fetch, retries included.
	if c.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.FetchTimeout)
		defer cancel()
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.cfg.FetchTimeout
	b.InitialInterval = 200 * time.Millisecond

	var body []byte
	err := backoff.Retry(func() error {
		var err error
		body, err = c.get(ctx, url)
		return err
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manifest: %w", err)
	}

	m, err := ParseManifest(body)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(url, *m, gocache.DefaultExpiration)
	}
	return m, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/yaml, application/json")
	req.Header.Set("User-Agent", "capability-manifest")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e := fmt.Errorf("manifest endpoint returned status %d", resp.StatusCode)
		// Client errors will not heal on retry.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(e)
		}
		return nil, e
	}
	return io.ReadAll(resp.Body)
}

// LoadFile loads one manifest from a local YAML or JSON file.
func (c *Client) LoadFile(path string) (*capmanifest.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}
	return ParseManifest(data)
}

// Load fetches every manifest location in the client's configuration.
func (c *Client) Load(ctx context.Context) ([]capmanifest.Manifest, []FetchFailure) {
	return c.FetchAll(ctx, c.cfg.Manifests)
}

// FetchAll attempts every location concurrently and independently. It returns
// the successfully loaded manifests in input order, plus one FetchFailure per
// location that could not be loaded or did not validate.
func (c *Client) FetchAll(ctx context.Context, locations []string) ([]capmanifest.Manifest, []FetchFailure) {
	results := make([]*capmanifest.Manifest, len(locations))
	errs := make([]error, len(locations))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, loc := range locations {
		i, loc := i, loc
		g.Go(func() error {
			var m *capmanifest.Manifest
			var err error
			if isURL(loc) {
				m, err = c.Fetch(ctx, loc)
			} else {
				m, err = c.LoadFile(loc)
			}
			// Failures stay local to their slot so the other fetches
			// keep running.
			results[i], errs[i] = m, err
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors; failures stay in errs

	manifests := make([]capmanifest.Manifest, 0, len(locations))
	var failures []FetchFailure
	for i, loc := range locations {
		if errs[i] != nil {
			c.logger.Warn("manifest unavailable",
				zap.String("location", loc),
				zap.Error(errs[i]))
			failures = append(failures, FetchFailure{Location: loc, Err: errs[i]})
			continue
		}
		c.logger.Debug("manifest loaded",
			zap.String("location", loc),
			zap.String("viewer", results[i].Name),
			zap.String("version", results[i].Version))
		manifests = append(manifests, *results[i])
	}
	return manifests, failures
}

// ParseManifest decodes a manifest document (YAML or JSON) and applies the
// structural validation required before compatibility evaluation.
func ParseManifest(data []byte) (*capmanifest.Manifest, error) {
	jsonBytes, err := yamlToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	var m capmanifest.Manifest
	if err := json.Unmarshal(jsonBytes, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// yamlToJSON re-encodes a YAML document as JSON so manifests flow through the
// same lossless JSON model regardless of authoring format. JSON input passes
// through unchanged in meaning (YAML is a superset).
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	doc = normalizeYAML(doc)
	return json.Marshal(doc)
}

// normalizeYAML rewrites map[any]any values (produced for non-string YAML
// keys) into string-keyed maps so the document can be marshaled as JSON.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	default:
		return v
	}
}

func isURL(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}
