package modelstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func makeWorkspace(t *testing.T) string {
	t.Helper()
	ws := t.TempDir()
	for _, dir := range []string{"comfy", "comfy_execution", "comfy_extras"} {
		require.NoError(t, os.MkdirAll(filepath.Join(ws, dir), 0755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(ws, "comfy", "model_management.py"), []byte("# stub\n"), 0644))
	return ws
}

func TestPackWithExplicitVersion(t *testing.T) {
	ws := makeWorkspace(t)
	st := New(t.TempDir())

	m, err := st.Pack(context.Background(), Tag{Name: "comfyui", Version: "v1"}, ws)
	require.NoError(t, err)
	require.Equal(t, "comfyui:v1", m.Tag().String())
	require.Equal(t, ws, m.SourcePath)
	require.Greater(t, m.SizeBytes, int64(0))

	info, err := os.Stat(st.ArchivePath(m))
	require.NoError(t, err)
	require.Equal(t, m.SizeBytes, info.Size())

	got, err := st.Get(Tag{Name: "comfyui", Version: "v1"})
	require.NoError(t, err)
	require.Equal(t, m.Tag(), got.Tag())
}

func TestPackGeneratesVersion(t *testing.T) {
	ws := makeWorkspace(t)
	st := New(t.TempDir())

	m, err := st.Pack(context.Background(), Tag{Name: "comfyui"}, ws)
	require.NoError(t, err)
	require.Equal(t, "comfyui", m.Name)
	require.NotEmpty(t, m.Version)
}

func TestPackDuplicateVersionRejected(t *testing.T) {
	ws := makeWorkspace(t)
	st := New(t.TempDir())

	_, err := st.Pack(context.Background(), Tag{Name: "comfyui", Version: "v1"}, ws)
	require.NoError(t, err)
	_, err = st.Pack(context.Background(), Tag{Name: "comfyui", Version: "v1"}, ws)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")
}

func TestPackReleasesLock(t *testing.T) {
	ws := makeWorkspace(t)
	root := t.TempDir()
	st := New(root)

	_, err := st.Pack(context.Background(), Tag{Name: "a", Version: "v1"}, ws)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "store.lock"))
	require.True(t, os.IsNotExist(err))

	// a failed pack must release the lock too
	_, err = st.Pack(context.Background(), Tag{Name: "a", Version: "v1"}, ws)
	require.Error(t, err)
	_, err = os.Stat(filepath.Join(root, "store.lock"))
	require.True(t, os.IsNotExist(err))
}

func seedManifest(t *testing.T, fsys afero.Fs, root, name, version string, created time.Time) {
	t.Helper()
	st := NewWithFs(fsys, root)
	dir := st.modelDir(Tag{Name: name, Version: version})
	require.NoError(t, fsys.MkdirAll(dir, 0755))
	require.NoError(t, st.writeManifest(dir, Manifest{
		Name:      name,
		Version:   version,
		CreatedAt: created,
	}))
}

func TestGetLatestVersion(t *testing.T) {
	fsys := afero.NewMemMapFs()
	now := time.Now().UTC()
	seedManifest(t, fsys, "/store", "comfyui", "old", now.Add(-time.Hour))
	seedManifest(t, fsys, "/store", "comfyui", "new", now)

	st := NewWithFs(fsys, "/store")
	m, err := st.Get(Tag{Name: "comfyui"})
	require.NoError(t, err)
	require.Equal(t, "new", m.Version)
}

func TestGetMissing(t *testing.T) {
	st := NewWithFs(afero.NewMemMapFs(), "/store")
	_, err := st.Get(Tag{Name: "comfyui"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "comfyui")

	_, err = st.Get(Tag{Name: "comfyui", Version: "v1"})
	require.Error(t, err)
}

func TestListNewestFirst(t *testing.T) {
	fsys := afero.NewMemMapFs()
	now := time.Now().UTC()
	seedManifest(t, fsys, "/store", "alpha", "v1", now.Add(-2*time.Hour))
	seedManifest(t, fsys, "/store", "beta", "v1", now.Add(-time.Hour))
	seedManifest(t, fsys, "/store", "alpha", "v2", now)

	st := NewWithFs(fsys, "/store")
	all, err := st.List()
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "alpha:v2", all[0].Tag().String())
	require.Equal(t, "beta:v1", all[1].Tag().String())
	require.Equal(t, "alpha:v1", all[2].Tag().String())
}

func TestListEmptyStore(t *testing.T) {
	st := NewWithFs(afero.NewMemMapFs(), "/store")
	all, err := st.List()
	require.NoError(t, err)
	require.Empty(t, all)
}
