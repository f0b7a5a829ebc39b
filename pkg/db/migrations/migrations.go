package migrations

import (
	"context"
	"fmt"
	"slices"

	"github.com/mwantia/screener/pkg/db/models"
	"gorm.io/gorm"
)

// Migration is one versioned schema step
type Migration struct {
	Version     int
	Description string
	Up          func(*gorm.DB) error
	Down        func(*gorm.DB) error
}

// MigrationStatus reports whether a migration has been applied
type MigrationStatus struct {
	Version     int
	Description string
	Applied     bool
}

type schemaMigration struct {
	ID          uint   `gorm:"primaryKey"`
	Version     int    `gorm:"uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	AppliedAt   int64  `gorm:"autoCreateTime"`
}

func (schemaMigration) TableName() string {
	return "schema_migrations"
}

// Migrator applies and reverts the store schema
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

func NewMigrator(db *gorm.DB) *Migrator {
	return NewMigratorWith(db, allMigrations())
}

// NewMigratorWith uses a custom migration list, ordered by version
func NewMigratorWith(db *gorm.DB, migrations []Migration) *Migrator {
	sorted := slices.Clone(migrations)
	slices.SortFunc(sorted, func(a, b Migration) int {
		return a.Version - b.Version
	})
	return &Migrator{db: db, migrations: sorted}
}

// Migrate applies every pending migration in version order
func (m *Migrator) Migrate(ctx context.Context) error {
	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if applied[migration.Version] {
			continue
		}
		if err := m.apply(ctx, migration); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Description, err)
		}
	}
	return nil
}

// Rollback reverts the most recently applied migration
func (m *Migrator) Rollback(ctx context.Context) (*MigrationStatus, error) {
	if err := m.ensureHistory(ctx); err != nil {
		return nil, err
	}

	var last schemaMigration
	if err := m.db.WithContext(ctx).Order("version DESC").First(&last).Error; err != nil {
		return nil, fmt.Errorf("no migrations to rollback: %w", err)
	}

	idx := slices.IndexFunc(m.migrations, func(migration Migration) bool {
		return migration.Version == last.Version
	})
	if idx < 0 {
		return nil, fmt.Errorf("migration %d not found", last.Version)
	}
	migration := m.migrations[idx]

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := migration.Down(tx); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		return tx.Delete(&last).Error
	})
	if err != nil {
		return nil, err
	}

	return &MigrationStatus{Version: migration.Version, Description: migration.Description}, nil
}

// Status lists every known migration with its applied flag
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(m.migrations))
	for _, migration := range m.migrations {
		statuses = append(statuses, MigrationStatus{
			Version:     migration.Version,
			Description: migration.Description,
			Applied:     applied[migration.Version],
		})
	}
	return statuses, nil
}

func (m *Migrator) ensureHistory(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&schemaMigration{}); err != nil {
		return fmt.Errorf("failed to create migration history table: %w", err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[int]bool, error) {
	if err := m.ensureHistory(ctx); err != nil {
		return nil, err
	}

	var history []schemaMigration
	if err := m.db.WithContext(ctx).Find(&history).Error; err != nil {
		return nil, fmt.Errorf("failed to query migration history: %w", err)
	}

	applied := make(map[int]bool, len(history))
	for _, h := range history {
		applied[h.Version] = true
	}
	return applied, nil
}

func (m *Migrator) apply(ctx context.Context, migration Migration) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := migration.Up(tx); err != nil {
			return err
		}
		return tx.Create(&schemaMigration{
			Version:     migration.Version,
			Description: migration.Description,
		}).Error
	})
}

func allMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create key-value entries",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(&models.Entry{})
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.Entry{})
			},
		},
	}
}
