package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
name: napari
version: 0.5.1
repository: https://github.com/napari/napari
capabilities:
  ome_zarr_versions: [0.3, 0.4]
  compression_codecs: [blosc, zlib]
  axes: true
  channels: true
  timepoints: true
`

const validJSON = `{
  "name": "vizarr",
  "version": "0.3.0",
  "capabilities": {"ome_zarr_versions": [0.4], "channels": true}
}`

func testClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.FetchTimeout = 5 * time.Second
	cfg.CacheTTL = 0
	return NewClient(cfg, opts...)
}

func TestParseManifest_YAML(t *testing.T) {
	m, err := ParseManifest([]byte(validYAML))
	require.NoError(t, err)
	assert.Equal(t, "napari", m.Name)
	assert.Equal(t, "0.5.1", m.Version)
	assert.Equal(t, []float64{0.3, 0.4}, m.Capabilities.OMEZarrVersions)
	assert.True(t, m.Capabilities.Timepoints)
}

func TestParseManifest_JSON(t *testing.T) {
	m, err := ParseManifest([]byte(validJSON))
	require.NoError(t, err)
	assert.Equal(t, "vizarr", m.Name)
	assert.True(t, m.Capabilities.Channels)
}

func TestParseManifest_PreservesUnknownCapabilities(t *testing.T) {
	m, err := ParseManifest([]byte(validYAML + "  holographic_rendering: true\n"))
	require.NoError(t, err)
	assert.Contains(t, m.Capabilities.Unknown, "holographic_rendering")
}

func TestParseManifest_RejectsStructurallyInvalid(t *testing.T) {
	for name, doc := range map[string]string{
		"missing_name":         "version: 1.0\ncapabilities: {}\n",
		"missing_version":      "name: napari\ncapabilities: {}\n",
		"missing_capabilities": "name: napari\nversion: 1.0\n",
		"scalar_capabilities":  "name: napari\nversion: 1.0\ncapabilities: yes\n",
		"not_yaml":             "{{{{",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseManifest([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(validYAML))
	}))
	defer srv.Close()

	m, err := testClient(t).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "napari", m.Name)
}

func TestFetch_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(validYAML))
	}))
	defer srv.Close()

	m, err := testClient(t).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "napari", m.Name)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestFetch_NotFoundIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := testClient(t).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx responses must not be retried")
}

func TestFetch_TimeoutBoundsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.FetchTimeout = 300 * time.Millisecond
	cfg.CacheTTL = 0
	c := NewClient(cfg)

	start := time.Now()
	_, err := c.Fetch(context.Background(), srv.URL)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Less(t, elapsed, time.Second,
		"a stalled endpoint must not hold the fetch past its budget")
}

func TestFetch_UsesCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(validYAML))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.CacheTTL = time.Minute
	c := NewClient(cfg)

	for i := 0; i < 3; i++ {
		_, err := c.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchAll_IndependentFailures(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(validYAML))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer bad.Close()
	invalid := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("version: 1.0\ncapabilities: {}\n"))
	}))
	defer invalid.Close()
	alsoGood := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(validJSON))
	}))
	defer alsoGood.Close()

	manifests, failures := testClient(t).FetchAll(context.Background(),
		[]string{good.URL, bad.URL, invalid.URL, alsoGood.URL})

	require.Len(t, manifests, 2)
	assert.Equal(t, "napari", manifests[0].Name)
	assert.Equal(t, "vizarr", manifests[1].Name)

	require.Len(t, failures, 2)
	assert.Equal(t, bad.URL, failures[0].Location)
	assert.Equal(t, invalid.URL, failures[1].Location)
}

func TestFetchAll_Empty(t *testing.T) {
	manifests, failures := testClient(t).FetchAll(context.Background(), nil)
	assert.Empty(t, manifests)
	assert.Empty(t, failures)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "napari.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o644))

	m, err := testClient(t).LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "napari", m.Name)

	_, err = testClient(t).LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestFetchAll_MixesFilesAndURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(validJSON))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "napari.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o644))

	manifests, failures := testClient(t).FetchAll(context.Background(), []string{path, srv.URL})
	require.Empty(t, failures)
	require.Len(t, manifests, 2)
	assert.Equal(t, "napari", manifests[0].Name)
	assert.Equal(t, "vizarr", manifests[1].Name)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zarrcompat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
manifests:
  - https://viewers.example/napari.yaml
  - ./local/vizarr.yaml
fetch_timeout: 10s
cache_ttl: 1m
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Manifests, 2)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, time.Minute, cfg.CacheTTL)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
