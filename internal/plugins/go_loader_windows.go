//go:build windows

package plugins

import "fmt"

func loadGoPluginTransforms(pathValue string) ([]Transform, error) {
	return nil, fmt.Errorf("go plugins are not supported on windows: %s", pathValue)
}
