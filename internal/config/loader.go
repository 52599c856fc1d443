package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the per-project configuration file name.
const DefaultConfigFile = ".shopaudit"

// ErrConfigNotFound reports a configuration path with no file behind it.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile reads a YAML configuration. Thresholds the file leaves out
// keep their defaults, and the merged set must pass Validate.
func LoadConfigFile(path string) (*File, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, ErrConfigNotFound
	case err != nil:
		return nil, err
	}

	file := NewFile()
	if err := yaml.Unmarshal(raw, file); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if file.Sites == nil {
		file.Sites = map[string]SiteConfig{}
	}
	if err := file.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// FindConfigFile resolves the configuration to load. An explicit path wins
// and yields "" when missing. Otherwise the first existing file among
// ./.shopaudit, $XDG_CONFIG_HOME/shopaudit/config.yaml and ~/.shopaudit
// is used, and "" means none was found.
func FindConfigFile(explicit string) string {
	if explicit != "" {
		if fileExists(explicit) {
			return explicit
		}
		return ""
	}

	for _, candidate := range searchPaths() {
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

func searchPaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, DefaultConfigFile))
	}
	paths = append(paths, filepath.Join(XDGConfigDir(), "config.yaml"))
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, DefaultConfigFile))
	}
	return paths
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
