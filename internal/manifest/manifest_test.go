// manifest_test.go — Cargo workspace member/name edit correctness.
package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cargoWorkspace = `[workspace]
members = ["crates/foo", "crates/bar"]
resolver = "2"
`

const cargoPackage = `[package]
name = "foo"
version = "0.1.0"

[dependencies]
serde = "1"
`

func TestListCargoWorkspaceMembers(t *testing.T) {
	members, err := ListCargoWorkspaceMembers([]byte(cargoWorkspace))
	require.NoError(t, err)
	assert.Equal(t, []string{"crates/foo", "crates/bar"}, members)
}

func TestAddRemoveCargoWorkspaceMember(t *testing.T) {
	added, err := AddCargoWorkspaceMember([]byte(cargoWorkspace), "crates/baz")
	require.NoError(t, err)
	members, err := ListCargoWorkspaceMembers(added)
	require.NoError(t, err)
	assert.Contains(t, members, "crates/baz")

	removed, err := RemoveCargoWorkspaceMember(added, "crates/bar")
	require.NoError(t, err)
	members, err = ListCargoWorkspaceMembers(removed)
	require.NoError(t, err)
	assert.NotContains(t, members, "crates/bar")
	assert.Contains(t, members, "crates/foo")
}

func TestUpdateCargoPackageName(t *testing.T) {
	out, err := UpdateCargoPackageName([]byte(cargoPackage), "renamed")
	require.NoError(t, err)
	assert.Contains(t, string(out), `name = "renamed"`)
	assert.Contains(t, string(out), "serde")
}

func TestPlanCargoDirectoryMoveUpdatesWorkspaceAndPackageName(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Cargo.toml"), []byte(cargoWorkspace), 0o644))

	fooDir := filepath.Join(root, "crates", "foo")
	require.NoError(t, os.MkdirAll(fooDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(fooDir, "Cargo.toml"), []byte(cargoPackage), 0o644))

	newDir := filepath.Join(root, "crates", "renamed")
	plan, err := PlanCargoDirectoryMove(fooDir, newDir, root)
	require.NoError(t, err)

	assert.Equal(t, "renamed", plan.NewPackageName)
	require.GreaterOrEqual(t, len(plan.ManifestEdits), 2)

	var touchedRoot, touchedPackage bool
	for _, e := range plan.ManifestEdits {
		if e.ManifestPath == filepath.Join(root, "Cargo.toml") {
			touchedRoot = true
			assert.Contains(t, e.NewText, "crates/renamed")
		}
		if e.ManifestPath == filepath.Join(fooDir, "Cargo.toml") {
			touchedPackage = true
			assert.Equal(t, "renamed", e.NewText)
		}
	}
	assert.True(t, touchedRoot)
	assert.True(t, touchedPackage)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	ok, err := Exists(dir, KindCargo)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(cargoPackage), 0o644))
	ok, err = Exists(dir, KindCargo)
	require.NoError(t, err)
	assert.True(t, ok)
}
