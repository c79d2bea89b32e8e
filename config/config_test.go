package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/portfoy/portfolio"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvConfig, "")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DriverFile, c.Store.Driver)
	assert.Equal(t, filepath.Join(home, ".pcs"), c.Store.Path)
	assert.Equal(t, filepath.Join(home, ".pcs"), c.DSN())
	assert.Equal(t, "localhost:8080", c.Server.Addr)
	assert.Equal(t, 10*time.Second, c.Server.ReadTimeout)

	rates, err := c.DefaultRates()
	require.NoError(t, err)
	assert.True(t, rates.Equal(portfolio.DefaultRates()))
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
store:
  driver: sqlite
  path: /var/lib/pcs
log:
  level: debug
rates:
  defaults:
    USD: "34,10"
agent:
  language: English
  top: 3
server:
  addr: ":9000"
  write_timeout: 1m
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite:/var/lib/pcs/portfolio.db", c.DSN())
	assert.Equal(t, logrus.DebugLevel, c.Logger().GetLevel())
	assert.Equal(t, "English", c.Agent.Language)
	assert.Equal(t, 3, c.Agent.Top)
	assert.Equal(t, ":9000", c.Server.Addr)
	assert.Equal(t, time.Minute, c.Server.WriteTimeout)
	// untouched fields keep their defaults
	assert.Equal(t, 30, c.Server.Burst)

	rates, err := c.DefaultRates()
	require.NoError(t, err)
	assert.True(t, rates.Rate(portfolio.USD).Equal(decimal.RequireFromString("34.1")))
	// only USD is configured, EUR reads as 1
	assert.True(t, rates.Rate(portfolio.EUR).Equal(decimal.NewFromInt(1)))
}

func TestLoadFromEnvPath(t *testing.T) {
	t.Setenv(EnvConfig, writeConfig(t, "agent:\n  top: 4\n"))
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, c.Agent.Top)
}

func TestLoadEnv(t *testing.T) {
	path := writeConfig(t, "store:\n  path: /from/file\n")
	t.Setenv(EnvStoreDriver, "sqlite")
	t.Setenv(EnvStorePath, "/from/env/book.db")
	t.Setenv(EnvServerBurst, "5")
	t.Setenv(EnvLogLevel, "")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite:/from/env/book.db", c.DSN())
	assert.Equal(t, 5, c.Server.Burst)
	// empty variables are ignored
	assert.Equal(t, "info", c.Log.Level)

	t.Setenv(EnvServerBurst, "many")
	_, err = Load(path)
	assert.ErrorContains(t, err, EnvServerBurst)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "store: [not, a, map]"))
	assert.ErrorContains(t, err, "invalid config")
}

func TestValidate(t *testing.T) {
	c := Default(t.TempDir())
	require.NoError(t, c.Validate())

	c.Store.Driver = "postgres"
	c.Log.Level = "chatty"
	c.Rates.Defaults["JPY"] = "0.2"
	c.Agent.Top = 0
	err := c.Validate()
	require.Error(t, err)
	for _, want := range []string{"store.driver", "log.level", "rates.defaults", "agent.top"} {
		assert.ErrorContains(t, err, want)
	}
	assert.ErrorIs(t, err, portfolio.ErrUnknownCurrency)
}
