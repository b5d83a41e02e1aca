package home

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

const (
	// DefaultDirName is the default name for the promptist home directory.
	DefaultDirName = ".promptist"

	// TemplatesFileName holds the template library.
	TemplatesFileName = "templates.json"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the promptist home directory.
type Dir struct {
	path string
}

// New creates a Dir at path, or at ~/.promptist when path is empty.
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get user home directory")
		}
		path = filepath.Join(home, DefaultDirName)
	}
	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// TemplatesPath returns the default template library file.
func (d *Dir) TemplatesPath() string {
	return filepath.Join(d.path, TemplatesFileName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory if it doesn't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", d.path)
	}
	return nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
