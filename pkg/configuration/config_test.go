package configuration

import (
	"os"
	"path/filepath"
	"testing"

	regConfig "github.com/regclient/regclient/config"
	"github.com/stretchr/testify/require"
)

func TestConfigLoadDefaultMissingFile(t *testing.T) {
	t.Setenv(ConfigEnv, filepath.Join(t.TempDir(), "config.json"))

	c, err := ConfigLoadDefault()
	require.NoError(t, err)
	require.NotNil(t, c)
	require.Empty(t, c.Hosts)
	require.NotEmpty(t, c.Filename)
}

func TestConfigSaveLoadRoundtrip(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	t.Setenv(ConfigEnv, cfgPath)

	c, err := ConfigLoadDefault()
	require.NoError(t, err)
	c.Registry = "registry.example.org"
	c.Repository = "team/bentos"
	c.BaseImage = "docker.io/library/python:3.11-slim"
	c.Hosts["registry.example.org"] = &regConfig.Host{
		Name: "registry.example.org",
		User: "bob",
	}
	require.NoError(t, c.ConfigSave())

	loaded, err := ConfigLoadDefault()
	require.NoError(t, err)
	require.Equal(t, "registry.example.org", loaded.Registry)
	require.Equal(t, "team/bentos", loaded.Repository)
	require.Equal(t, "bob", loaded.Hosts["registry.example.org"].User)
	// TLS defaults applied on load
	require.Equal(t, regConfig.TLSEnabled, loaded.Hosts["registry.example.org"].TLS)
}

func TestConfigLoadNormalizesHostKeys(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	t.Setenv(ConfigEnv, cfgPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"hosts": {"reg.example.org": {}}}`), 0600))

	c, err := ConfigLoadDefault()
	require.NoError(t, err)
	h := c.Hosts["reg.example.org"]
	require.NotNil(t, h)
	require.Equal(t, "reg.example.org", h.Name)
	require.Equal(t, "reg.example.org", h.Hostname)
}

func TestConfigUnsupportedVersion(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	t.Setenv(ConfigEnv, cfgPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"version": 99}`), 0600))

	_, err := ConfigLoadDefault()
	require.Error(t, err)
}

func TestResolveStoreRoot(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	t.Setenv(ConfigEnv, cfgPath)

	c, err := ConfigLoadDefault()
	require.NoError(t, err)

	root, err := c.ResolveStoreRoot()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(filepath.Dir(cfgPath), "store"), root)

	c.StoreRoot = "/var/lib/comfyui-store"
	root, err = c.ResolveStoreRoot()
	require.NoError(t, err)
	require.Equal(t, "/var/lib/comfyui-store", root)
}
