package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sample = `
llm:
  provider: ollama
  model: qwen2.5:1.5b
  timeout: 90s
search:
  provider: web
pipeline:
  source_denylist:
    - regulatory.gov
    - aml.gov
store:
  driver: sqlite
  dsn: "file::memory:?cache=shared"
  ttl: 1h
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("STORE_DSN", "")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.LLM.Provider != "ollama" || cfg.LLM.Timeout != 90*time.Second {
		t.Errorf("LLM = %+v", cfg.LLM)
	}
	if got := cfg.Pipeline.SourceDenylist; len(got) != 2 || got[1] != "aml.gov" {
		t.Errorf("SourceDenylist = %v", got)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.TTL != time.Hour {
		t.Errorf("Store = %+v", cfg.Store)
	}
	// 默认值
	if cfg.Pipeline.SynthesisBudget != 14000 {
		t.Errorf("SynthesisBudget = %d, want 14000", cfg.Pipeline.SynthesisBudget)
	}
	if cfg.Pipeline.SearchTimeout != 20*time.Second {
		t.Errorf("SearchTimeout = %v, want 20s", cfg.Pipeline.SearchTimeout)
	}
	if cfg.Store.Capacity != 500 {
		t.Errorf("Capacity = %d, want 500", cfg.Store.Capacity)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "tvly-test")
	t.Setenv("STORE_DSN", "postgres://radar@localhost/radar")

	var cfg Config
	cfg.ApplyEnv()
	cfg.SetDefaults()

	if cfg.Search.Tavily.APIKey != "tvly-test" {
		t.Errorf("Tavily.APIKey = %q", cfg.Search.Tavily.APIKey)
	}
	if cfg.Search.Provider != "tavily" {
		t.Errorf("Search.Provider = %q, want tavily", cfg.Search.Provider)
	}
	if cfg.Store.DSN != "postgres://radar@localhost/radar" {
		t.Errorf("Store.DSN = %q", cfg.Store.DSN)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadConfig() expected error for missing file")
	}
}
