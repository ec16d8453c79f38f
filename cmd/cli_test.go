package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/bentoml/bentoml-comfyui/pkg/configuration"
	"github.com/bentoml/bentoml-comfyui/pkg/workspace"
	"github.com/stretchr/testify/require"
)

// testConfig points the CLI at a throwaway config and store.
func testConfig(t *testing.T) (storeRoot string) {
	t.Helper()
	dir := t.TempDir()
	storeRoot = filepath.Join(dir, "store")
	cfgPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`{"storeRoot": %q}`, storeRoot)), 0600))
	t.Setenv(configuration.ConfigEnv, cfgPath)
	return storeRoot
}

func makeWorkspace(t *testing.T) string {
	t.Helper()
	ws := t.TempDir()
	for _, dir := range []string{"comfy", "comfy_execution", "comfy_extras"} {
		require.NoError(t, os.MkdirAll(filepath.Join(ws, dir), 0755))
	}
	return ws
}

func fakeInterpreter(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub not portable to windows")
	}
	path := filepath.Join(t.TempDir(), "python")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho 'torch==2.1.0'\n"), 0755))
	return path
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := NewComfyUICommand()
	root.SetArgs(args)
	return root.Execute()
}

func TestPackRejectsInvalidWorkspace(t *testing.T) {
	testConfig(t)
	notAWorkspace := t.TempDir()

	err := execute(t, "pack", notAWorkspace)
	require.Error(t, err)
	require.True(t, workspace.IsInvalidArgument(err))
	require.Contains(t, err.Error(), notAWorkspace)
}

func TestPackAndBuild(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)
	storeRoot := testConfig(t)
	ws := makeWorkspace(t)

	require.NoError(t, execute(t, "pack", "--name", "comfyui", "--version", "v1", ws))
	_, err := os.Stat(filepath.Join(storeRoot, "models", "comfyui", "v1", "model.tar"))
	require.NoError(t, err)

	wf := filepath.Join(t.TempDir(), "workflow.json")
	require.NoError(t, os.WriteFile(wf, []byte(`{"3": {"class_type": "KSampler"}}`), 0644))

	require.NoError(t, execute(t,
		"build",
		"--name", "comfyui-service",
		"--version", "v1",
		"--model", "comfyui:v1",
		"--python", fakeInterpreter(t),
		"--extra-python-packages", "opencv-python",
		wf,
	))
	_, err = os.Stat(filepath.Join(storeRoot, "bentos", "comfyui-service", "v1", "bento.tar"))
	require.NoError(t, err)

	// the scaffold temp dir is gone once the command returns
	leftovers, err := filepath.Glob(filepath.Join(tmp, "bentoml-comfyui-*-bento"))
	require.NoError(t, err)
	require.Empty(t, leftovers)
}

func TestBuildUnknownModel(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)
	testConfig(t)

	wf := filepath.Join(t.TempDir(), "workflow.json")
	require.NoError(t, os.WriteFile(wf, []byte(`{}`), 0644))

	err := execute(t, "build", "--model", "nonexistent", wf)
	require.Error(t, err)
	require.Contains(t, err.Error(), "nonexistent")

	leftovers, globErr := filepath.Glob(filepath.Join(tmp, "bentoml-comfyui-*-bento"))
	require.NoError(t, globErr)
	require.Empty(t, leftovers)
}

func TestBuildRejectsBadTag(t *testing.T) {
	testConfig(t)

	wf := filepath.Join(t.TempDir(), "workflow.json")
	require.NoError(t, os.WriteFile(wf, []byte(`{}`), 0644))

	err := execute(t, "build", "--model", "Not A Tag", wf)
	require.Error(t, err)
}
