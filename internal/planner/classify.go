// classify.go — classifies a rename/move per spec.md §4.2 step 1.
package planner

import (
	"os"
	"path/filepath"

	"github.com/loomrefactor/loom/internal/adapter"
	"github.com/loomrefactor/loom/internal/model"
)

// Classify determines the MoveClass for a rename/move from oldPath to
// newPath. workspaceAware plugins are consulted for package-root
// detection; with none, the class follows from the parent directories only.
func Classify(oldPath, newPath string, workspaceAware []adapter.WorkspaceAware) (model.MoveClass, error) {
	oldParent := filepath.Dir(oldPath)
	newParent := filepath.Dir(newPath)

	isOldPackage, err := anyIsPackage(oldPath, workspaceAware)
	if err != nil {
		return "", err
	}
	if isOldPackage {
		if liesInsideAnotherPackage(newPath, oldPath, workspaceAware) {
			return model.MoveConsolidation, nil
		}
		return model.MovePackageRename, nil
	}

	if oldParent == newParent {
		return model.MoveSimpleRename, nil
	}
	return model.MoveCrossDirectory, nil
}

func anyIsPackage(dir string, workspaceAware []adapter.WorkspaceAware) (bool, error) {
	for _, wa := range workspaceAware {
		ok, err := wa.IsPackage(dir)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// liesInsideAnotherPackage reports whether newPath sits inside a package
// directory other than oldPath itself — the consolidation case from
// spec.md §4.2 step 1 ("new destination lies inside another package's
// source tree").
func liesInsideAnotherPackage(newPath, oldPath string, workspaceAware []adapter.WorkspaceAware) bool {
	dir := filepath.Dir(newPath)
	for {
		if dir == "" || dir == string(filepath.Separator) || dir == "." {
			return false
		}
		if dir == oldPath {
			return false
		}
		if ok, _ := anyIsPackage(dir, workspaceAware); ok {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}

// IsDirectory reports whether path names an existing directory.
func IsDirectory(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
