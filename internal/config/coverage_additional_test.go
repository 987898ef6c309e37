package config

import (
	"testing"

	"github.com/loomrefactor/loom/internal/model"
)

func TestLoadFromBytesNormalizesBlankIgnoreEntries(t *testing.T) {
	data := []byte(`ignore:
  - ""
  - "  "
  - "vendor/**"
`)
	cfg, err := LoadFromBytes(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Ignore) != 1 || cfg.Ignore[0] != "vendor/**" {
		t.Fatalf("ignore = %v, want [vendor/**]", cfg.Ignore)
	}
}

func TestLoadFromBytesParsesPluginsList(t *testing.T) {
	data := []byte(`plugins:
  - ./plugins/custom.yml
`)
	cfg, err := LoadFromBytes(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Plugins) != 1 || cfg.Plugins[0] != "./plugins/custom.yml" {
		t.Fatalf("plugins = %v, want [./plugins/custom.yml]", cfg.Plugins)
	}
}

func TestLoadFromBytesDefaultVersionPreservedWhenBlank(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`version: "  "`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Version != "1.0" {
		t.Fatalf("version = %q, want 1.0", cfg.Version)
	}
}

func TestParseScanScopeCustomRequiresNoIncludeExclude(t *testing.T) {
	scope, err := parseScanScope("custom", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scope.Kind != model.ScopeCustom {
		t.Fatalf("scope = %q, want custom", scope.Kind)
	}
}
