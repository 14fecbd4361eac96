package clientcli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laropanostra/shopapp/clientcli"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		wantErr  error
	}{
		{name: "http", endpoint: "http://localhost:5113"},
		{name: "https", endpoint: "https://files.example.com"},
		{name: "empty", endpoint: "", wantErr: clientcli.ErrEndpointRequired},
		{name: "no scheme", endpoint: "localhost:5113", wantErr: clientcli.ErrInvalidEndpoint},
		{name: "ftp", endpoint: "ftp://files.example.com", wantErr: clientcli.ErrInvalidEndpoint},
		{name: "no host", endpoint: "http://", wantErr: clientcli.ErrInvalidEndpoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &clientcli.Config{Endpoint: tt.endpoint}
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := &clientcli.Config{}
	got := cfg.WithDefaults()

	assert.Equal(t, clientcli.DefaultEndpoint, got.Endpoint)
	assert.Empty(t, cfg.Endpoint, "original must not be mutated")

	custom := (&clientcli.Config{Endpoint: "http://other:9000"}).WithDefaults()
	assert.Equal(t, "http://other:9000", custom.Endpoint)
}

func TestConfigFile_Profiles(t *testing.T) {
	cf := &clientcli.ConfigFile{}

	_, err := cf.GetProfile("")
	assert.ErrorIs(t, err, clientcli.ErrNoProfiles)

	require.NoError(t, cf.AddProfile(clientcli.Profile{Name: "local", Endpoint: "http://localhost:5113"}))
	require.NoError(t, cf.AddProfile(clientcli.Profile{Name: "prod", Endpoint: "https://files.example.com"}))
	assert.ErrorIs(t, cf.AddProfile(clientcli.Profile{Name: "local"}), clientcli.ErrProfileExists)

	p, err := cf.GetProfile("")
	require.NoError(t, err)
	assert.Equal(t, "local", p.Name, "first profile is the default when none is marked")

	require.NoError(t, cf.SetDefault("prod"))
	p, err = cf.GetDefaultProfile()
	require.NoError(t, err)
	assert.Equal(t, "prod", p.Name)
	assert.ErrorIs(t, cf.SetDefault("missing"), clientcli.ErrProfileNotFound)

	require.NoError(t, cf.UpdateProfile(clientcli.Profile{Name: "local", Endpoint: "http://127.0.0.1:5113"}))
	p, err = cf.GetProfile("local")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:5113", p.Endpoint)
	assert.ErrorIs(t, cf.UpdateProfile(clientcli.Profile{Name: "missing"}), clientcli.ErrProfileNotFound)

	require.NoError(t, cf.RemoveProfile("local"))
	assert.Equal(t, []string{"prod"}, cf.ProfileNames())
	assert.ErrorIs(t, cf.RemoveProfile("local"), clientcli.ErrProfileNotFound)

	_, err = cf.GetProfile("local")
	assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)
}

func TestConfigFile_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cf := &clientcli.ConfigFile{Profiles: []clientcli.Profile{
		{Name: "local", Endpoint: "http://localhost:5113", Default: true},
		{Name: "prod", Endpoint: "https://files.example.com"},
	}}

	require.NoError(t, cf.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := clientcli.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, cf, loaded)
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("valid config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `profiles:
  - name: local
    endpoint: http://localhost:5113
    default: true
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cf, err := clientcli.LoadConfigFile(path)
		require.NoError(t, err)
		require.Len(t, cf.Profiles, 1)
		assert.Equal(t, "http://localhost:5113", cf.Profiles[0].Endpoint)
		assert.True(t, cf.Profiles[0].Default)
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := clientcli.LoadConfigFile("/nonexistent/path/config.yaml")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`profiles: [yaml: content`), 0o600))

		_, err := clientcli.LoadConfigFile(path)
		assert.Error(t, err)
	})
}

func TestMergeConfig(t *testing.T) {
	tests := []struct {
		name     string
		configs  []*clientcli.Config
		expected *clientcli.Config
	}{
		{
			name:     "empty configs",
			configs:  []*clientcli.Config{},
			expected: &clientcli.Config{},
		},
		{
			name:     "later config overrides",
			configs:  []*clientcli.Config{{Endpoint: "http://a.com"}, {Endpoint: "http://b.com"}},
			expected: &clientcli.Config{Endpoint: "http://b.com"},
		},
		{
			name:     "empty strings do not override",
			configs:  []*clientcli.Config{{Endpoint: "http://a.com"}, {Endpoint: ""}},
			expected: &clientcli.Config{Endpoint: "http://a.com"},
		},
		{
			name:     "nil config is skipped",
			configs:  []*clientcli.Config{{Endpoint: "http://a.com"}, nil},
			expected: &clientcli.Config{Endpoint: "http://a.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, clientcli.MergeConfig(tt.configs...))
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SHOPAPP_ENDPOINT", "http://test.example.com")
	t.Setenv("SHOPAPP_PROFILE", "prod")
	t.Setenv("SHOPAPP_CONFIG", "/etc/shopapp/config.yaml")

	assert.Equal(t, "http://test.example.com", clientcli.ConfigFromEnv().Endpoint)
	assert.Equal(t, "prod", clientcli.ProfileFromEnv())
	assert.Equal(t, "/etc/shopapp/config.yaml", clientcli.ConfigPathFromEnv())
}

func TestConfigFromProfile(t *testing.T) {
	assert.Equal(t, &clientcli.Config{}, clientcli.ConfigFromProfile(nil))
	assert.Equal(t, &clientcli.Config{Endpoint: "http://a.com"},
		clientcli.ConfigFromProfile(&clientcli.Profile{Name: "a", Endpoint: "http://a.com"}))
}
