package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setGlobals(t *testing.T, file, prof, srv string) {
	t.Helper()
	oldFile, oldProf, oldSrv := cfgFile, profile, server
	cfgFile, profile, server = file, prof, srv
	t.Cleanup(func() { cfgFile, profile, server = oldFile, oldProf, oldSrv })
}

func writeProfiles(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `profiles:
  - name: local
    endpoint: http://localhost:5113
    default: true
  - name: prod
    endpoint: https://files.example.com
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestBuildConfig(t *testing.T) {
	t.Setenv("SHOPAPP_ENDPOINT", "")
	t.Setenv("SHOPAPP_PROFILE", "")
	t.Setenv("SHOPAPP_CONFIG", "")
	path := writeProfiles(t)

	t.Run("default profile", func(t *testing.T) {
		setGlobals(t, path, "", "")
		cfg, err := buildConfig()
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:5113", cfg.Endpoint)
	})

	t.Run("named profile", func(t *testing.T) {
		setGlobals(t, path, "prod", "")
		cfg, err := buildConfig()
		require.NoError(t, err)
		assert.Equal(t, "https://files.example.com", cfg.Endpoint)
	})

	t.Run("server flag wins", func(t *testing.T) {
		t.Setenv("SHOPAPP_ENDPOINT", "http://env:5113")
		setGlobals(t, path, "prod", "http://flag:5113")
		cfg, err := buildConfig()
		require.NoError(t, err)
		assert.Equal(t, "http://flag:5113", cfg.Endpoint)
	})

	t.Run("env over profile", func(t *testing.T) {
		t.Setenv("SHOPAPP_ENDPOINT", "http://env:5113")
		setGlobals(t, path, "", "")
		cfg, err := buildConfig()
		require.NoError(t, err)
		assert.Equal(t, "http://env:5113", cfg.Endpoint)
	})

	t.Run("explicit missing file", func(t *testing.T) {
		setGlobals(t, filepath.Join(t.TempDir(), "missing.yaml"), "", "")
		_, err := buildConfig()
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestRootCmd_Subcommands(t *testing.T) {
	for _, name := range []string{"upload", "download", "delete", "list", "health", "configure"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
