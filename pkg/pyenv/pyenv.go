// Package pyenv queries a Python interpreter for its installed packages.
package pyenv

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultInterpreter resolves the python executable from PATH.
func DefaultInterpreter() (string, error) {
	for _, candidate := range []string{"python3", "python"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no python interpreter found in PATH, use --python to point at one")
}

// Freeze returns the `pip freeze` output of the given interpreter. With an
// empty interpreter the PATH default is used. Interpreter failures propagate
// with pip's stderr attached.
func Freeze(ctx context.Context, interpreter string) (string, error) {
	if interpreter == "" {
		var err error
		interpreter, err = DefaultInterpreter()
		if err != nil {
			return "", err
		}
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, interpreter, "-m", "pip", "freeze")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%s -m pip freeze: %w: %s", interpreter, err, msg)
		}
		return "", fmt.Errorf("%s -m pip freeze: %w", interpreter, err)
	}
	return stdout.String(), nil
}
