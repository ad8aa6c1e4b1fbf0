package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// definedFieldsCount is the number of keys Config maps.
const definedFieldsCount = 10

func TestDefaultsCoverEveryKey(t *testing.T) {
	assert.Len(t, Default, definedFieldsCount)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(NewViper(afero.NewMemMapFs()), "")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.JSON)
	assert.Equal(t, "harvest", cfg.Output.Directory)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 4, cfg.Download.Workers)
	assert.Equal(t, 3, cfg.Download.Retries)
	assert.Equal(t, 100*time.Millisecond, cfg.Download.RetryDelay)
	assert.Equal(t, ":8080", cfg.Serve.Listen)
	assert.Equal(t, time.Minute, cfg.Serve.CacheTTL)
}

func TestLoadFileAndEnv(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/mpdharvest.toml", []byte(`
[log]
level = "debug"

[http]
user_agent = "harvester/1.0"
timeout = "5s"

[download]
workers = 8
`), 0o644))
	t.Setenv("MPDHARVEST_DOWNLOAD_WORKERS", "16")
	t.Setenv("MPDHARVEST_OUTPUT_DIRECTORY", "/tmp/out")

	cfg, err := Load(NewViper(fs), "/etc/mpdharvest.toml")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "harvester/1.0", cfg.HTTP.UserAgent)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 16, cfg.Download.Workers, "environment overrides the file")
	assert.Equal(t, "/tmp/out", cfg.Output.Directory)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(NewViper(afero.NewMemMapFs()), "/nope.yaml")
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	v := NewViper(afero.NewMemMapFs())
	v.Set(DownloadWorkers, 0)
	v.Set(DownloadRetries, 0)

	_, err := Load(v, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), DownloadWorkers)
	assert.Contains(t, err.Error(), DownloadRetries)
}

func TestEnvKeyReplacer(t *testing.T) {
	assert.Equal(t, "download_retry_delay", EnvKeyReplacer.Replace(DownloadRetryDelay))
}
