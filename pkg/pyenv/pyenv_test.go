package pyenv

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeInterpreter writes an executable that ignores its arguments and prints
// a fixed freeze listing.
func fakeInterpreter(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub not portable to windows")
	}
	path := filepath.Join(t.TempDir(), "python")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return path
}

func TestFreeze(t *testing.T) {
	py := fakeInterpreter(t, "echo 'torch==2.1.0'\necho 'numpy==1.26.4'\n")

	out, err := Freeze(context.Background(), py)
	require.NoError(t, err)
	require.Equal(t, "torch==2.1.0\nnumpy==1.26.4\n", out)
}

func TestFreezeInterpreterFailure(t *testing.T) {
	py := fakeInterpreter(t, "echo 'No module named pip' >&2\nexit 1\n")

	_, err := Freeze(context.Background(), py)
	require.Error(t, err)
	require.Contains(t, err.Error(), "No module named pip")
}

func TestFreezeMissingInterpreter(t *testing.T) {
	_, err := Freeze(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
