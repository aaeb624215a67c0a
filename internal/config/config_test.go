package config

import (
	"errors"
	"testing"
	"time"

	"kr.dev/diff"

	"github.com/dshills/compactlog/internal/config/loader"
	"github.com/dshills/compactlog/internal/logging"
)

type mapLoader map[string]any

func (m mapLoader) Load() (map[string]any, error) { return m, nil }

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadLayers(t *testing.T) {
	memfs := newMemFS(map[string]string{
		"/c.toml": `
[store]
backend = "sqlite"
path = "/tmp/logs.db"

[log]
level = "info"
`,
	})

	env := mapLoader{
		"log":   map[string]any{"level": "debug"},
		"watch": map[string]any{"debounce": "1s"},
	}

	cfg, err := load(loader.NewTOMLLoaderWithFS(memfs, "/c.toml"), env)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	want := Default()
	want.Store = StoreConfig{Backend: "sqlite", Path: "/tmp/logs.db"}
	want.Log.Level = "debug"
	want.Watch.Debounce = "1s"
	diff.Test(t, t.Errorf, cfg, want)

	if cfg.Debounce() != time.Second {
		t.Errorf("Debounce() = %v, want 1s", cfg.Debounce())
	}
	if cfg.LogLevel() != logging.LevelDebug {
		t.Errorf("LogLevel() = %v, want debug", cfg.LogLevel())
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		src  mapLoader
		path string
	}{
		{"unknown section", mapLoader{"editor": map[string]any{"tab": int64(2)}}, ""},
		{"unknown setting", mapLoader{"engine": map[string]any{"speed": int64(2)}}, ""},
		{"wrong type", mapLoader{"engine": map[string]any{"min_payload_length": "two"}}, ""},
		{"zero payload length", mapLoader{"engine": map[string]any{"min_payload_length": int64(0)}}, "engine.min_payload_length"},
		{"backend", mapLoader{"store": map[string]any{"backend": "redis"}}, "store.backend"},
		{"missing path", mapLoader{"store": map[string]any{"path": ""}}, "store.path"},
		{"level", mapLoader{"log": map[string]any{"level": "loud"}}, "log.level"},
		{"color", mapLoader{"view": map[string]any{"highlight_bg": "plaid"}}, "view.highlight_bg"},
		{"marker", mapLoader{"view": map[string]any{"marker": ""}}, "view.marker"},
		{"debounce", mapLoader{"watch": map[string]any{"debounce": "soon"}}, "watch.debounce"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(tt.src)
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("load() error = %v, want ErrValidationFailed", err)
			}
			var verr *ValidationError
			if tt.path != "" && (!errors.As(err, &verr) || verr.Path != tt.path) {
				t.Errorf("load() error = %v, want path %s", err, tt.path)
			}
		})
	}
}

func TestMemoryBackendNeedsNoPath(t *testing.T) {
	cfg, err := load(mapLoader{"store": map[string]any{"backend": "memory", "path": ""}})
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("Store.Backend = %q", cfg.Store.Backend)
	}
}

type memFS map[string][]byte

func newMemFS(files map[string]string) memFS {
	m := make(memFS)
	for k, v := range files {
		m[k] = []byte(v)
	}
	return m
}

func (m memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}
