// registry_test.go — extension dispatch and priority ordering.
package registry

import (
	"testing"

	"github.com/loomrefactor/loom/internal/adapter"
	"github.com/loomrefactor/loom/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlugin struct {
	name     string
	exts     []string
	priority int
}

func (f *fakePlugin) Name() string                  { return f.name }
func (f *fakePlugin) Extensions() []string           { return f.exts }
func (f *fakePlugin) Priority() int                  { return f.priority }
func (f *fakePlugin) Capabilities() model.Capabilities { return model.Capabilities{} }
func (f *fakePlugin) Parse(string, []byte, adapter.AdapterConfig) (*model.UnifiedFileModel, error) {
	return nil, nil
}
func (f *fakePlugin) IsTestFile(string) bool { return false }

func TestRegistryHighestPriorityWins(t *testing.T) {
	r := New()
	low := &fakePlugin{name: "low", exts: []string{".ts"}, priority: 1}
	high := &fakePlugin{name: "high", exts: []string{".ts"}, priority: 10}

	r.Register(low)
	r.Register(high)

	got, ok := r.ForExtension(".ts")
	require.True(t, ok)
	assert.Equal(t, "high", got.Name())
}

func TestRegistryForPathNormalizesExtension(t *testing.T) {
	r := New()
	r.Register(&fakePlugin{name: "go", exts: []string{".go"}, priority: 1})

	got, ok := r.ForPath("/tmp/main.go")
	require.True(t, ok)
	assert.Equal(t, "go", got.Name())

	_, ok = r.ForPath("/tmp/main.unknown")
	assert.False(t, ok)
}

func TestRegistryAllDeduplicates(t *testing.T) {
	r := New()
	p := &fakePlugin{name: "multi", exts: []string{".ts", ".tsx"}, priority: 1}
	r.Register(p)

	all := r.All()
	assert.Len(t, all, 1)
}
