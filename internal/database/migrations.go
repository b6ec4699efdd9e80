package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"agora/internal/config"
	"agora/internal/middleware"

	"gorm.io/gorm"
)

// Migration is a versioned pair of SQL scripts.
type Migration struct {
	Version    int
	Name       string
	UpScript   string
	DownScript string
}

func (m *Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

//go:embed migrations/*.sql
var migrationFS embed.FS

var migrations []Migration

func init() {
	if err := registerMigrations(migrationFS); err != nil {
		panic(fmt.Sprintf("failed to register migrations: %v", err))
	}
}

func registerMigrations(efs embed.FS) error {
	entries, err := efs.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}

		base := strings.TrimSuffix(name, ".up.sql")
		parts := strings.SplitN(base, "_", 2)
		if len(parts) != 2 {
			return fmt.Errorf("migration %s does not follow NNNNNN_name.up.sql", name)
		}

		var version int
		if _, err := fmt.Sscanf(parts[0], "%d", &version); err != nil {
			return fmt.Errorf("migration %s has a non-numeric version: %w", name, err)
		}

		upBytes, err := efs.ReadFile(filepath.Join("migrations", name))
		if err != nil {
			return fmt.Errorf("failed to read up migration %s: %w", name, err)
		}
		downBytes, err := efs.ReadFile(filepath.Join("migrations", base+".down.sql"))
		if err != nil {
			return fmt.Errorf("failed to read down migration %s: %w", base+".down.sql", err)
		}

		migrations = append(migrations, Migration{
			Version:    version,
			Name:       parts[1],
			UpScript:   string(upBytes),
			DownScript: string(downBytes),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return nil
}

// GetMigrations returns all registered migrations ordered by version.
func GetMigrations() []Migration {
	return migrations
}

// MigrationLog records an applied migration.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the database table name for MigrationLog.
func (MigrationLog) TableName() string {
	return "migration_logs"
}

func appliedVersions(ctx context.Context, db *gorm.DB) (map[int]bool, error) {
	if err := db.WithContext(ctx).AutoMigrate(&MigrationLog{}); err != nil {
		return nil, fmt.Errorf("failed to ensure migration_logs table: %w", err)
	}

	var versions []int
	err := db.WithContext(ctx).Model(&MigrationLog{}).Order("version ASC").Pluck("version", &versions).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}

	applied := make(map[int]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

// RunMigrations applies all pending SQL migrations in version order.
// Each migration runs in its own transaction together with its log record.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		m := m
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(m.UpScript).Error; err != nil {
				return fmt.Errorf("apply %s: %w", m.String(), err)
			}
			return tx.Create(&MigrationLog{Version: m.Version, Name: m.Name}).Error
		})
		if err != nil {
			return err
		}
		middleware.Logger.Info("Applied migration", slog.String("migration", m.String()))
	}
	return nil
}

// RollbackLastMigration reverts the most recently applied migration.
func RollbackLastMigration(ctx context.Context, db *gorm.DB) error {
	var last MigrationLog
	err := db.WithContext(ctx).Order("version DESC").First(&last).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("no migrations to roll back")
		}
		return fmt.Errorf("failed to find last migration: %w", err)
	}

	for _, m := range migrations {
		if m.Version != last.Version {
			continue
		}
		m := m
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(m.DownScript).Error; err != nil {
				return fmt.Errorf("roll back %s: %w", m.String(), err)
			}
			return tx.Delete(&MigrationLog{}, "version = ?", m.Version).Error
		})
		if err != nil {
			return err
		}
		middleware.Logger.Info("Rolled back migration", slog.String("migration", m.String()))
		return nil
	}
	return fmt.Errorf("migration %d is recorded but not registered", last.Version)
}

func isProdLikeEnv(env string) bool {
	e := strings.ToLower(strings.TrimSpace(env))
	return e == "production" || e == "prod" || e == "staging" || e == "stage"
}

// ApplySchema manages the database schema: SQL migrations are applied in
// every environment, and GORM AutoMigrate additionally runs outside
// production-like environments for developer and test ergonomics.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	if err := RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("run sql migrations: %w", err)
	}

	if !isProdLikeEnv(cfg.Env) {
		middleware.Logger.Info("Running GORM AutoMigrate", slog.String("env", cfg.Env))
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return nil
}
