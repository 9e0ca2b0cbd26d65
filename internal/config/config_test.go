package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/shelldash/internal/errors"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func noEnv(string) string { return "" }

func TestLoad_MissingFile(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if cfg != nil {
		t.Fatalf("Load() cfg = %+v, want nil", cfg)
	}
	if !errors.IsReadKind(err, errors.ReadMissing) {
		t.Fatalf("Load() error = %v, want ReadMissing", err)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{
		"openai": {"api_key": "sk-file", "model": "gpt-test"},
		"openweather": {"api_key": "ow-file", "city": "Bergen", "units": "imperial"},
		"rss_feeds": [" https://a.example/feed ", "", "https://a.example/feed", "https://b.example/rss"]
	}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-file" || cfg.OpenAI.Model != "gpt-test" {
		t.Errorf("OpenAI = %+v", cfg.OpenAI)
	}
	if cfg.OpenWeather.CityOrDefault() != "Bergen" || cfg.OpenWeather.UnitsOrDefault() != "imperial" {
		t.Errorf("OpenWeather = %+v", cfg.OpenWeather)
	}
	if len(cfg.RSSFeeds) != 2 {
		t.Fatalf("RSSFeeds = %v, want 2 deduplicated entries", cfg.RSSFeeds)
	}
	if cfg.RSSFeeds[0] != "https://a.example/feed" {
		t.Errorf("RSSFeeds[0] = %q", cfg.RSSFeeds[0])
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{not json}`)

	_, err := Load(tmpDir)
	if !errors.IsReadKind(err, errors.ReadCorrupt) {
		t.Fatalf("Load() error = %v, want ReadCorrupt", err)
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"disabled_tools": ["chat_send", "notes_save"]}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[0] != "chat_send" {
		t.Errorf("DisabledTools[0] = %q, want %q", cfg.DisabledTools[0], "chat_send")
	}
}

func TestResolve_DegradesToEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `[1, 2`)

	cfg, err := Load(tmpDir)
	got := Resolve(cfg, err, noEnv, nil)
	if got == nil {
		t.Fatal("Resolve() returned nil")
	}
	if got.OpenAI.APIKey != "" || len(got.RSSFeeds) != 0 {
		t.Errorf("Resolve() = %+v, want empty config", got)
	}
	if got.OpenWeather.CityOrDefault() != DefaultCity {
		t.Errorf("CityOrDefault() = %q, want %q", got.OpenWeather.CityOrDefault(), DefaultCity)
	}
}

func TestApplyEnv_OverridesKeys(t *testing.T) {
	base := &Config{
		OpenAI:      OpenAI{APIKey: "sk-file", Model: "m"},
		OpenWeather: OpenWeather{APIKey: "ow-file"},
		RSSFeeds:    []string{"https://a"},
	}
	env := map[string]string{
		EnvOpenAIKey:      "sk-env",
		EnvOpenWeatherKey: "  ",
	}

	got := ApplyEnv(base, func(k string) string { return env[k] })

	if got.OpenAI.APIKey != "sk-env" {
		t.Errorf("OpenAI.APIKey = %q, want env override", got.OpenAI.APIKey)
	}
	if got.OpenWeather.APIKey != "ow-file" {
		t.Errorf("OpenWeather.APIKey = %q, blank env must not override", got.OpenWeather.APIKey)
	}
	if base.OpenAI.APIKey != "sk-file" {
		t.Error("ApplyEnv must not mutate its input")
	}

	got.RSSFeeds[0] = "changed"
	if base.RSSFeeds[0] != "https://a" {
		t.Error("ApplyEnv must copy slices")
	}
}

func TestFileSource_ReadsFreshEachCall(t *testing.T) {
	tmpDir := t.TempDir()
	src := NewFileSource(tmpDir, nil)
	src.getenv = noEnv

	if got := src.Current().OpenAI.Model; got != "" {
		t.Fatalf("Model = %q before file exists, want empty", got)
	}

	writeConfig(t, tmpDir, `{"openai": {"model": "first"}}`)
	if got := src.Current().OpenAI.Model; got != "first" {
		t.Fatalf("Model = %q, want first", got)
	}

	writeConfig(t, tmpDir, `{"openai": {"model": "second"}}`)
	if got := src.Current().OpenAI.Model; got != "second" {
		t.Fatalf("Model = %q, want second", got)
	}
}

func TestStatic(t *testing.T) {
	if Static(nil).Current() == nil {
		t.Fatal("Static(nil).Current() returned nil")
	}
	cfg := &Config{RSSFeeds: []string{"x"}}
	if Static(cfg).Current() != cfg {
		t.Fatal("Static(cfg).Current() should return cfg")
	}
}
