/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// MigrationManager applies versioned schema migrations and records each
// applied version in the migrations table, so reruns are no-ops.
type MigrationManager struct {
	db     *bun.DB
	logger Logger
}

// Migration is one row of the tracking table.
type Migration struct {
	bun.BaseModel `bun:"table:migrations"`

	Version     string    `bun:"version,pk"`
	Name        string    `bun:"name"`
	AppliedAt   time.Time `bun:"applied_at"`
	Description string    `bun:"description"`
}

// MigrationFunc is a migration step executed within a transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationItem describes a single migration version.
type MigrationItem struct {
	Version     string
	Name        string
	Description string
	Up          MigrationFunc
	Down        MigrationFunc
}

func NewMigrationManager(db *bun.DB, logger Logger) *MigrationManager {
	return &MigrationManager{db: db, logger: logger}
}

// RunMigrations creates the tracking table if needed and applies every
// pending migration in ascending version order. Statement logging stays
// off during the run unless BUNDEBUG_MIGRATION is set.
func (m *MigrationManager) RunMigrations(ctx context.Context) error {
	if m.db == nil {
		return fmt.Errorf("database not initialized")
	}
	if _, ok := os.LookupEnv("BUNDEBUG_MIGRATION"); !ok {
		EnableBunSqlSilent(true)
		defer EnableBunSqlSilent(false)
	}

	if err := m.ensureTrackingTable(ctx); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	items := m.catalog()
	slices.SortFunc(items, func(a, b MigrationItem) int {
		return strings.Compare(a.Version, b.Version)
	})
	for _, item := range items {
		if err := m.apply(ctx, item); err != nil {
			return fmt.Errorf("apply migration %s: %w", item.Version, err)
		}
	}

	if m.logger != nil {
		m.logger.Info("Database migrations completed!")
	}
	return nil
}

func (m *MigrationManager) ensureTrackingTable(ctx context.Context) error {
	_, err := m.db.NewCreateTable().
		Model((*Migration)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (m *MigrationManager) catalog() []MigrationItem {
	return []MigrationItem{
		{
			Version:     "001",
			Name:        "create_base_tables",
			Description: "Create base table structure",
			Up:          m.createRegisteredTables,
		},
	}
}

// apply runs one migration and its tracking insert in a single
// transaction. Already applied versions are skipped.
func (m *MigrationManager) apply(ctx context.Context, item MigrationItem) error {
	done, err := m.db.NewSelect().
		Model((*Migration)(nil)).
		Where("version = ?", item.Version).
		Exists(ctx)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	err = m.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := item.Up(ctx, tx); err != nil {
			return err
		}
		record := &Migration{
			Version:     item.Version,
			Name:        item.Name,
			AppliedAt:   time.Now(),
			Description: item.Description,
		}
		_, err := tx.NewInsert().Model(record).Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if m.logger != nil {
		m.logger.Info("Migration executed successfully", "version", item.Version, "name", item.Name)
	}
	return nil
}

func (m *MigrationManager) createRegisteredTables(ctx context.Context, db bun.IDB) error {
	for _, model := range RegisteredModelInstances() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return nil
}

// GetAppliedMigrations returns the tracking rows ordered by version.
func (m *MigrationManager) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	var applied []Migration
	err := m.db.NewSelect().
		Model(&applied).
		Order("version ASC").
		Scan(ctx)
	return applied, err
}

func (m *MigrationManager) RollbackMigration(ctx context.Context, version string) error {
	return fmt.Errorf("rollback of migration %s is not supported", version)
}
