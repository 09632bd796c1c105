package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skin-trade-dashboard-go/internal/config"
	"skin-trade-dashboard-go/internal/models"
)

func TestNewDatabase(t *testing.T) {
	t.Run("SQLite", func(t *testing.T) {
		db, err := NewDatabase(&config.Database{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "trades.db")})
		require.NoError(t, err)

		assert.True(t, db.Migrator().HasTable(&models.TradeRecord{}))
		assert.True(t, db.Migrator().HasTable(&models.PlatformBalance{}))
		assert.True(t, db.Migrator().HasTable(&models.Setting{}))
	})

	t.Run("UnknownDriver", func(t *testing.T) {
		_, err := NewDatabase(&config.Database{Driver: "oracle", DSN: "x"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database driver")
	})
}
