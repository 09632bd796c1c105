package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skin-trade-dashboard-go/internal/matcher"
)

func writeConfig(t *testing.T, body string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := writeConfig(t, "server:\n  port: 8080\n")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data", cfg.Ledger.DataDir)
	assert.Equal(t, matcher.DefaultBulkMarkers, cfg.Matcher.BulkMarkers)
	assert.InDelta(t, 0.99, cfg.Valuation.BalanceFactor, 1e-9)
	assert.InDelta(t, 0.965, cfg.Valuation.InventoryFactor, 1e-9)
	assert.Equal(t, 15*time.Second, cfg.Platforms.Timeout)
	assert.Equal(t, "http://openapi.c5game.com", cfg.Platforms.C5.BaseURL)
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: postgres
  dsn: "host=localhost user=skins dbname=skins"
matcher:
  bulk_markers: ["Sticker", "Case"]
platforms:
  timeout: 3s
  c5:
    app_key: abc
    steam_id: "7656"
  buff:
    cookie: "session=1"
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, []string{"Sticker", "Case"}, cfg.Matcher.BulkMarkers)
	assert.Equal(t, 3*time.Second, cfg.Platforms.Timeout)
	assert.Equal(t, "abc", cfg.Platforms.C5.AppKey)
	assert.Equal(t, "7656", cfg.Platforms.C5.SteamID)
	assert.Equal(t, "session=1", cfg.Platforms.Buff.Cookie)
	assert.Equal(t, "https://buff.163.com", cfg.Platforms.Buff.BaseURL)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := writeConfig(t, "server:\n  port: 8080\n")
	t.Setenv("PLATFORMS_BUFF_COOKIE", "session=env")
	t.Setenv("PLATFORMS_C5_APP_KEY", "env-key")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "session=env", cfg.Platforms.Buff.Cookie)
	assert.Equal(t, "env-key", cfg.Platforms.C5.AppKey)
}

func TestLoadConfig_ShippedExample(t *testing.T) {
	cfg, err := LoadConfig("../../configs")
	require.NoError(t, err)

	// No front end ships with the repository.
	assert.Empty(t, cfg.Server.StaticDir)
	assert.Empty(t, cfg.Server.IndexFile)
	assert.Equal(t, matcher.DefaultBulkMarkers, cfg.Matcher.BulkMarkers)
	assert.Equal(t, "0 */10 * * * *", cfg.Refresh.ImportSpec)
}
