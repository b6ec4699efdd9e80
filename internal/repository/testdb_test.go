package repository

import (
	"fmt"
	"testing"

	"agora/internal/database"
	"agora/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Name:     username,
		Password: "hashed-password",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, userID uint, visibility models.Visibility) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:      userID,
		Description: "a post",
		Latitude:    37.9838,
		Longitude:   23.7275,
		Visibility:  visibility,
		Photos: []models.Photo{
			{URL: "/media/one.webp", Position: 0},
		},
	}
	require.NoError(t, db.Create(post).Error)
	return post
}
