package database

import (
	"testing"

	"agora/internal/config"
	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}

	err = configurePool(db, cfg)
	assert.NoError(t, err)

	_, err = db.DB()
	assert.NoError(t, err)
}

func TestPersistentModels_IncludesVote(t *testing.T) {
	found := false
	for _, model := range PersistentModels() {
		if _, ok := model.(*models.Vote); ok {
			found = true
			break
		}
	}
	require.True(t, found, "PersistentModels should include Vote")
}

func TestRegisteredMigrations_PairedAndOrdered(t *testing.T) {
	ms := GetMigrations()
	require.NotEmpty(t, ms)

	prev := 0
	for _, m := range ms {
		assert.Greater(t, m.Version, prev)
		assert.NotEmpty(t, m.UpScript)
		assert.NotEmpty(t, m.DownScript)
		prev = m.Version
	}
}
