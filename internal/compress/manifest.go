// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compress

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfebc-cli/pkg/types"
)

// ManifestName is the filename of the run manifest inside the output
// directory. send and history locate a run through it.
const ManifestName = "pdfebc-manifest.yaml"

// ManifestPath returns the manifest location for an output directory.
func ManifestPath(outDir string) string {
	return filepath.Join(outDir, ManifestName)
}

// WriteManifest writes the run manifest into the manifest's output directory.
func WriteManifest(m *types.Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	path := ManifestPath(m.OutDir)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

// ReadManifest reads the run manifest from an output directory.
func ReadManifest(outDir string) (*types.Manifest, error) {
	path := ManifestPath(outDir)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	var m types.Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}
