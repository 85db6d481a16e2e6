package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig tests the default configuration values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default DemoDelay is 1 second", func(t *testing.T) {
		t.Parallel()
		if cfg.DemoDelay != 1*time.Second {
			t.Errorf("got %v, expected %v", cfg.DemoDelay, 1*time.Second)
		}
	})

	t.Run("default analysis delay range is 1 to 3 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.AnalysisDelayMin != 1*time.Second {
			t.Errorf("got %v, expected %v", cfg.AnalysisDelayMin, 1*time.Second)
		}
		if cfg.AnalysisDelayMax != 3*time.Second {
			t.Errorf("got %v, expected %v", cfg.AnalysisDelayMax, 3*time.Second)
		}
	})

	t.Run("default analysis is threat detection over the trailing day", func(t *testing.T) {
		t.Parallel()
		if cfg.AnalysisType != "threat-detection" {
			t.Errorf("got %q, expected %q", cfg.AnalysisType, "threat-detection")
		}
		if cfg.TimeRange != "24h" {
			t.Errorf("got %q, expected %q", cfg.TimeRange, "24h")
		}
	})

	t.Run("default report selection is an executive summary as JSON", func(t *testing.T) {
		t.Parallel()
		if cfg.ReportType != "executive-summary" {
			t.Errorf("got %q, expected %q", cfg.ReportType, "executive-summary")
		}
		if cfg.ReportFormat != "json" {
			t.Errorf("got %q, expected %q", cfg.ReportFormat, "json")
		}
	})

	t.Run("default severity filter keeps everything", func(t *testing.T) {
		t.Parallel()
		if cfg.SeverityFilter != "all" {
			t.Errorf("got %q, expected %q", cfg.SeverityFilter, "all")
		}
	})

	t.Run("default max upload size is 5MB", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxUploadSize != 5*1024*1024 {
			t.Errorf("got %d, expected %d", cfg.MaxUploadSize, 5*1024*1024)
		}
	})

	t.Run("default concurrency is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.Concurrency != 4 {
			t.Errorf("got %d, expected %d", cfg.Concurrency, 4)
		}
	})

	t.Run("default Verbose is false", func(t *testing.T) {
		t.Parallel()
		if cfg.Verbose {
			t.Error("expected Verbose to default to false")
		}
	})
}

// TestConfigValidate tests configuration validation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()

		if err := NewConfig().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("zero delays are valid", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.DemoDelay = 0
		cfg.AnalysisDelayMin = 0
		cfg.AnalysisDelayMax = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("negative demo delay returns ErrInvalidDemoDelay", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.DemoDelay = -1 * time.Second
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidDemoDelay) {
			t.Errorf("expected ErrInvalidDemoDelay, got %v", err)
		}
	})

	t.Run("negative analysis minimum returns ErrInvalidAnalysisDelay", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.AnalysisDelayMin = -1 * time.Second
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidAnalysisDelay) {
			t.Errorf("expected ErrInvalidAnalysisDelay, got %v", err)
		}
	})

	t.Run("analysis maximum below minimum returns ErrInvalidAnalysisDelay", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.AnalysisDelayMin = 3 * time.Second
		cfg.AnalysisDelayMax = 1 * time.Second
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidAnalysisDelay) {
			t.Errorf("expected ErrInvalidAnalysisDelay, got %v", err)
		}
	})

	t.Run("unknown analysis type returns ErrInvalidAnalysisType", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.AnalysisType = "sentiment-analysis"
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidAnalysisType) {
			t.Errorf("expected ErrInvalidAnalysisType, got %v", err)
		}
	})

	t.Run("every known analysis type is valid", func(t *testing.T) {
		t.Parallel()

		for _, typ := range []string{"threat-detection", "pattern-analysis", "anomaly-detection", "correlation-analysis"} {
			cfg := NewConfig()
			cfg.AnalysisType = typ
			if err := cfg.Validate(); err != nil {
				t.Errorf("type %q: unexpected error: %v", typ, err)
			}
		}
	})

	t.Run("unknown report type returns ErrInvalidReportType", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ReportType = "weekly-digest"
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidReportType) {
			t.Errorf("expected ErrInvalidReportType, got %v", err)
		}
	})

	t.Run("every known report type is valid", func(t *testing.T) {
		t.Parallel()

		for _, typ := range []string{"executive-summary", "technical-analysis", "threat-assessment", "incident-report"} {
			cfg := NewConfig()
			cfg.ReportType = typ
			if err := cfg.Validate(); err != nil {
				t.Errorf("type %q: unexpected error: %v", typ, err)
			}
		}
	})

	t.Run("unknown report format returns ErrInvalidReportFormat", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ReportFormat = "docx"
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidReportFormat) {
			t.Errorf("expected ErrInvalidReportFormat, got %v", err)
		}
	})

	t.Run("every known report format is valid", func(t *testing.T) {
		t.Parallel()

		for _, format := range []string{"pdf", "html", "json"} {
			cfg := NewConfig()
			cfg.ReportFormat = format
			if err := cfg.Validate(); err != nil {
				t.Errorf("format %q: unexpected error: %v", format, err)
			}
		}
	})

	t.Run("unknown severity filter returns ErrInvalidSeverityFilter", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.SeverityFilter = "catastrophic"
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidSeverityFilter) {
			t.Errorf("expected ErrInvalidSeverityFilter, got %v", err)
		}
	})

	t.Run("empty and named severity filters are valid", func(t *testing.T) {
		t.Parallel()

		for _, filter := range []string{"", "all", "low", "medium", "high", "critical"} {
			cfg := NewConfig()
			cfg.SeverityFilter = filter
			if err := cfg.Validate(); err != nil {
				t.Errorf("filter %q: unexpected error: %v", filter, err)
			}
		}
	})

	t.Run("negative max upload size returns ErrInvalidMaxUploadSize", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.MaxUploadSize = -1
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidMaxUploadSize) {
			t.Errorf("expected ErrInvalidMaxUploadSize, got %v", err)
		}
	})

	t.Run("zero concurrency returns ErrInvalidConcurrency", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Concurrency = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConcurrency) {
			t.Errorf("expected ErrInvalidConcurrency, got %v", err)
		}
	})
}

// TestFileNormalizedSources tests seed normalization against defaults.
func TestFileNormalizedSources(t *testing.T) {
	t.Parallel()

	t.Run("defaults fill empty seed fields", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: SourceSeed{Type: "osint", Status: "active", URL: "https://feeds.example.com"},
			Sources:  []SourceSeed{{Name: "news-feed"}},
		}

		seeds := cf.NormalizedSources()
		if len(seeds) != 1 {
			t.Fatalf("got %d seeds, expected 1", len(seeds))
		}
		if seeds[0].Type != "osint" {
			t.Errorf("type = %q, expected %q", seeds[0].Type, "osint")
		}
		if seeds[0].Status != "active" {
			t.Errorf("status = %q, expected %q", seeds[0].Status, "active")
		}
		if seeds[0].URL != "https://feeds.example.com" {
			t.Errorf("url = %q, expected %q", seeds[0].URL, "https://feeds.example.com")
		}
	})

	t.Run("seed fields win over defaults", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: SourceSeed{Type: "osint", Status: "inactive"},
			Sources:  []SourceSeed{{Name: "edge-firewall", Type: "network", Status: "active"}},
		}

		seeds := cf.NormalizedSources()
		if seeds[0].Type != "network" {
			t.Errorf("type = %q, expected %q", seeds[0].Type, "network")
		}
		if seeds[0].Status != "active" {
			t.Errorf("status = %q, expected %q", seeds[0].Status, "active")
		}
	})

	t.Run("config maps merge with seed priority", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: SourceSeed{Config: map[string]string{"region": "eu", "interval": "5m"}},
			Sources: []SourceSeed{
				{Name: "collector", Config: map[string]string{"region": "us"}},
			},
		}

		seeds := cf.NormalizedSources()
		if seeds[0].Config["region"] != "us" {
			t.Errorf("region = %q, expected %q", seeds[0].Config["region"], "us")
		}
		if seeds[0].Config["interval"] != "5m" {
			t.Errorf("interval = %q, expected %q", seeds[0].Config["interval"], "5m")
		}
	})

	t.Run("merge does not mutate the original seed map", func(t *testing.T) {
		t.Parallel()

		original := map[string]string{"region": "us"}
		cf := &File{
			Defaults: SourceSeed{Config: map[string]string{"interval": "5m"}},
			Sources:  []SourceSeed{{Name: "collector", Config: original}},
		}

		_ = cf.NormalizedSources()
		if _, ok := original["interval"]; ok {
			t.Error("normalization should not write into the seed's own map")
		}
	})

	t.Run("file order is preserved", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Sources: []SourceSeed{{Name: "first"}, {Name: "second"}, {Name: "third"}},
		}

		seeds := cf.NormalizedSources()
		for i, expected := range []string{"first", "second", "third"} {
			if seeds[i].Name != expected {
				t.Errorf("seed %d: name = %q, expected %q", i, seeds[i].Name, expected)
			}
		}
	})

	t.Run("no sources yields an empty slice", func(t *testing.T) {
		t.Parallel()

		cf := &File{}
		if seeds := cf.NormalizedSources(); len(seeds) != 0 {
			t.Errorf("got %d seeds, expected 0", len(seeds))
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cf, err := LoadConfigFile("/nonexistent/path/.threatdesk")
		if err == nil {
			t.Fatal("expected error for non-existent file")
		}
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cf != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".threatdesk")

		content := `defaults:
  type: custom
  status: inactive
sources:
  - name: osint-news
    type: osint
    status: active
    url: "https://feeds.example.com/news"
    config:
      interval: "15m"
  - name: edge-firewall
    type: network
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cf.Defaults.Type != "custom" {
			t.Errorf("expected default type custom, got %q", cf.Defaults.Type)
		}
		if len(cf.Sources) != 2 {
			t.Fatalf("expected 2 sources, got %d", len(cf.Sources))
		}
		if cf.Sources[0].Name != "osint-news" {
			t.Errorf("expected first source osint-news, got %q", cf.Sources[0].Name)
		}
		if cf.Sources[0].Config["interval"] != "15m" {
			t.Errorf("expected interval config, got %q", cf.Sources[0].Config["interval"])
		}
		if cf.Sources[1].Type != "network" {
			t.Errorf("expected second source type network, got %q", cf.Sources[1].Type)
		}

		seeds := cf.NormalizedSources()
		if seeds[1].Status != "inactive" {
			t.Errorf("expected default status inactive on second seed, got %q", seeds[1].Status)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".threatdesk")

		content := `invalid: yaml: content: [}`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfigFile(configPath)
		if err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Sources slice", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".threatdesk")

		content := `defaults:
  type: custom
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Sources == nil {
			t.Error("expected Sources slice to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "custom.yaml")

		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		result := FindConfigFile(configPath)
		if result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		result := FindConfigFile("/nonexistent/path/config.yaml")
		if result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("returns empty when no config found", func(_ *testing.T) {
		result := FindConfigFile("")
		// This may or may not find a config depending on the system
		// Just ensure it doesn't panic
		_ = result
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	t.Run("XDGDataDir returns non-empty path", func(t *testing.T) {
		t.Parallel()

		dir := XDGDataDir()
		if dir == "" {
			t.Error("expected non-empty data dir")
		}
		if !strings.HasSuffix(dir, AppName) {
			t.Errorf("expected dir to end with %q, got %q", AppName, dir)
		}
	})

	t.Run("XDGConfigDir returns non-empty path", func(t *testing.T) {
		t.Parallel()

		dir := XDGConfigDir()
		if dir == "" {
			t.Error("expected non-empty config dir")
		}
		if !strings.HasSuffix(dir, AppName) {
			t.Errorf("expected dir to end with %q, got %q", AppName, dir)
		}
	})

	t.Run("XDGCacheDir returns non-empty path", func(t *testing.T) {
		t.Parallel()

		dir := XDGCacheDir()
		if dir == "" {
			t.Error("expected non-empty cache dir")
		}
		if !strings.HasSuffix(dir, AppName) {
			t.Errorf("expected dir to end with %q, got %q", AppName, dir)
		}
	})
}
