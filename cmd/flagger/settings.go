package main

import (
	"fmt"
	"os"
	"path/filepath"

	"flagger/internal/project"
	"flagger/internal/version"
)

// loadSettings merges flagger.toml found above path with the CLI overrides
// and checks the manifest's tool version constraint.
func loadSettings(path string, o project.Overrides) (project.Settings, *project.Manifest, error) {
	start := path
	if st, err := os.Stat(path); err == nil && !st.IsDir() {
		start = filepath.Dir(path)
	}
	manifest, ok, err := project.LoadManifest(start)
	if err != nil {
		return project.Settings{}, nil, err
	}
	s := project.DefaultSettings()
	if ok {
		if err := manifest.Config.CheckVersion(version.Version); err != nil {
			return project.Settings{}, nil, fmt.Errorf("%s: %w", manifest.Path, err)
		}
		s = manifest.Config.Settings()
	}
	return s.Apply(o), manifest, nil
}
