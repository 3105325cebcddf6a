// Package storage provides object storage adapters for observation
// description files.
package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jobrunner/skyline/internal/adapters/observation"
)

// isObservationFile reports whether a key names an observation
// description file.
func isObservationFile(key string) bool {
	return strings.HasSuffix(strings.ToLower(key), observation.FileSuffix)
}

// writeFile streams an object body into a local file, creating parent
// directories as needed.
func writeFile(dest string, body io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return err
	}
	f, err := os.Create(dest) //#nosec G304 -- dest is a controlled local path
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = io.Copy(f, body)
	return err
}
