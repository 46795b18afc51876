package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/kryptohire/internal/models"
)

func TestInitDatabase_SQLite(t *testing.T) {
	cfg := Load()
	cfg.Server.Env = "test"
	cfg.Database.Driver = "sqlite"
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "kryptohire.db")

	db, err := InitDatabase(cfg)
	require.NoError(t, err)

	for _, model := range models.All() {
		assert.True(t, db.Migrator().HasTable(model))
	}
}
