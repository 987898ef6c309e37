// fuzz_test.go — Fuzz tests for the .loom.yml loader.
//
// Feeds random YAML to the config parser. Must never panic.
// Run: go test -fuzz=FuzzConfigLoad -fuzztime=30s ./internal/config/...

package config

import (
	"testing"
)

func FuzzConfigLoad(f *testing.F) {
	seeds := []string{
		`version: "1.0"
scan_scope: all`,

		`version: "1.0"
ignore:
  - "vendor/**"
validation:
  args: ["go", "build", "./..."]
  timeout_seconds: 30`,

		``,
		`# nothing here`,
		`{{{`,
		`version: 123
ignore: "not a list"`,
		`scan_scope: everything`,
		`validation:
  dir: "."`,
		`include:
  - "**/*.md"
exclude:
  - "CHANGELOG.md"`,
	}

	for _, seed := range seeds {
		f.Add([]byte(seed))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = LoadFromBytes(data)
	})
}
