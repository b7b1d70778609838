package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr)
	assert.Equal(t, "HS256", cfg.Auth.Algorithm)
	assert.Equal(t, 60, cfg.Auth.ExpireMinutes)
	assert.Equal(t, 10, cfg.Paging.DefaultPerPage)
	assert.Equal(t, 100, cfg.Paging.MaxPerPage)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, "info", cfg.Log.Level)

	// no secret key configured
	assert.Error(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("QRCODE_AUTH_SECRETKEY", "s3cr3t")
	t.Setenv("QRCODE_AUTH_ALGORITHM", "hs512")
	t.Setenv("QRCODE_PAGING_MAXPERPAGE", "25")
	t.Setenv("QRCODE_PAGING_DEFAULTPERPAGE", "5")
	t.Setenv("QRCODE_STORAGE_DRIVER", "S3")
	t.Setenv("QRCODE_STORAGE_BUCKET", "codes")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "s3cr3t", cfg.Auth.SecretKey)
	assert.Equal(t, "HS512", cfg.Auth.Algorithm)
	assert.Equal(t, 25, cfg.Paging.MaxPerPage)
	assert.Equal(t, 5, cfg.Paging.DefaultPerPage)
	assert.Equal(t, "s3", cfg.Storage.Driver)
	require.NoError(t, cfg.Validate())
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("QRCODE_LOG_LEVEL", "warn")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("# comment\nQRCODE_LOG_LEVEL=debug\nQRCODE_SUPERUSER_USERNAME=\"root\"\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("QRCODE_SUPERUSER_USERNAME") })

	loadDotEnv(filepath.Join(dir, ".env"))
	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "root", cfg.Superuser.Username)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var c Config
		c.Auth.SecretKey = "k"
		c.Auth.Algorithm = "HS256"
		c.Auth.ExpireMinutes = 30
		c.Paging.DefaultPerPage = 10
		c.Paging.MaxPerPage = 100
		c.Storage.Driver = "local"
		c.Storage.LocalDir = "static"
		return c
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(*Config){
		"algorithm":    func(c *Config) { c.Auth.Algorithm = "none" },
		"ttl":          func(c *Config) { c.Auth.ExpireMinutes = 0 },
		"default page": func(c *Config) { c.Paging.DefaultPerPage = 101 },
		"max page":     func(c *Config) { c.Paging.MaxPerPage = 0 },
		"s3 bucket":    func(c *Config) { c.Storage.Driver = "s3" },
		"driver":       func(c *Config) { c.Storage.Driver = "ftp" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
