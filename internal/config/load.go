// load.go - .loom.yml loading and normalization.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/loomrefactor/loom/internal/model"
	"gopkg.in/yaml.v3"
)

// Config is the normalized representation of .loom.yml: which files a
// rename/move sweep should skip, the default ScanScope, and the defaults
// for the apply executor's post-apply validation command.
type Config struct {
	Version    string
	Ignore     []string
	ScanScope  model.ScanScope
	Validation *ValidationDefaults
	Plugins    []string
}

// ValidationDefaults seeds apply.ValidationCommand when a tool call omits
// its own options.validation.
type ValidationDefaults struct {
	Args    []string
	Dir     string
	Timeout time.Duration
}

// Default returns the configuration used when no .loom.yml is present:
// code-only scope, no ignore patterns beyond .gitignore, no validation
// command.
func Default() *Config {
	return &Config{
		Version:   "1.0",
		ScanScope: model.DefaultScanScope(),
	}
}

// Load reads and parses .loom.yml from path. A missing file is not an
// error — it yields Default(), since every field here has a sensible
// default and the file is optional project-level configuration, not a
// required manifest.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("%w: %v", model.ErrConfigInvalid, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses .loom.yml content.
func LoadFromBytes(data []byte) (*Config, error) {
	if strings.TrimSpace(string(data)) == "" {
		return Default(), nil
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrConfigInvalid, err)
	}

	cfg := Default()
	if strings.TrimSpace(raw.Version) != "" {
		cfg.Version = strings.TrimSpace(raw.Version)
	}
	cfg.Ignore = normalizeIgnore(raw.Ignore)
	cfg.Plugins = normalizeIgnore(raw.Plugins)

	scope, err := parseScanScope(raw.ScanScope, raw.Include, raw.Exclude)
	if err != nil {
		return nil, err
	}
	cfg.ScanScope = scope

	if raw.Validation != nil {
		validation, err := parseValidation(*raw.Validation)
		if err != nil {
			return nil, err
		}
		cfg.Validation = validation
	}

	return cfg, nil
}

type rawConfig struct {
	Version    string             `yaml:"version"`
	Ignore     []string           `yaml:"ignore"`
	ScanScope  string             `yaml:"scan_scope"`
	Include    []string           `yaml:"include"`
	Exclude    []string           `yaml:"exclude"`
	Validation *rawValidationSpec `yaml:"validation"`
	Plugins    []string           `yaml:"plugins"`
}

type rawValidationSpec struct {
	Args           []string `yaml:"args"`
	Dir            string   `yaml:"dir"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

func normalizeIgnore(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func parseScanScope(kind string, include, exclude []string) (model.ScanScope, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		if len(include) > 0 || len(exclude) > 0 {
			kind = string(model.ScopeCustom)
		} else {
			kind = string(model.ScopeCodeOnly)
		}
	}

	switch model.ScanScopeKind(kind) {
	case model.ScopeCodeOnly, model.ScopeAll, model.ScopeCustom:
		return model.ScanScope{Kind: model.ScanScopeKind(kind), Include: include, Exclude: exclude}, nil
	default:
		return model.ScanScope{}, fmt.Errorf("%w: scan_scope must be one of code-only|all|custom, got %q", model.ErrConfigInvalid, kind)
	}
}

func parseValidation(raw rawValidationSpec) (*ValidationDefaults, error) {
	if len(raw.Args) == 0 {
		return nil, fmt.Errorf("%w: validation requires a non-empty args list", model.ErrConfigInvalid)
	}
	timeout := 30 * time.Second
	if raw.TimeoutSeconds > 0 {
		timeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}
	return &ValidationDefaults{Args: raw.Args, Dir: raw.Dir, Timeout: timeout}, nil
}
