// Package workspace validates that a directory holds a ComfyUI source tree.
package workspace

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bentoml/bentoml-comfyui/pkg/constants"
	"github.com/spf13/afero"
)

// InvalidArgumentError reports a directory that failed the fingerprint check.
type InvalidArgumentError struct {
	Path    string
	Missing string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%q does not look like a ComfyUI workspace (missing %q). Please give a correct path.", e.Path, e.Missing)
}

// IsInvalidArgument reports whether err is an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var iae *InvalidArgumentError
	return errors.As(err, &iae)
}

// Check verifies that path contains the ComfyUI fingerprint subentries.
// It has no side effects.
func Check(path string) error {
	return CheckFs(afero.NewOsFs(), path)
}

// CheckFs is Check against an arbitrary filesystem.
func CheckFs(fsys afero.Fs, path string) error {
	for _, fingerprint := range constants.WorkspaceFingerprints {
		exists, err := afero.Exists(fsys, filepath.Join(path, fingerprint))
		if err != nil {
			return err
		}
		if !exists {
			return &InvalidArgumentError{Path: path, Missing: fingerprint}
		}
	}
	return nil
}
