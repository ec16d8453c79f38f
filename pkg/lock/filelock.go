// Package lock serializes store mutations between concurrent CLI invocations.
package lock

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// Acquire creates the lock file exclusively. A second invocation mutating the
// same store fails fast instead of interleaving writes.
func Acquire(fsys afero.Fs, lockFilePath string) (release func(), err error) {
	lockFile, err := fsys.OpenFile(lockFilePath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("store is locked by another process (remove %s if stale)", lockFilePath)
		}
		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}
	_ = lockFile.Close()

	return func() {
		_ = fsys.Remove(lockFilePath)
	}, nil
}
