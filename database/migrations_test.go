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
	"database/sql"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type journalEntry struct {
	bun.BaseModel `bun:"table:journal_entries"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Note string `bun:"note,notnull"`
}

func init() {
	RegisterModelInstance((*journalEntry)(nil), 5)
}

func openMigrationDB(t *testing.T, name string) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunMigrationsAppliesOnce(t *testing.T) {
	ctx := context.Background()
	db := openMigrationDB(t, "migrations_once")
	m := NewMigrationManager(db, nil)

	if err := m.RunMigrations(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("list applied: %v", err)
	}
	if len(applied) != 1 {
		t.Fatalf("applied = %d, want 1", len(applied))
	}
	if applied[0].Version != "001" || applied[0].Name != "create_base_tables" {
		t.Fatalf("applied[0] = %+v", applied[0])
	}
	if applied[0].AppliedAt.IsZero() {
		t.Fatal("applied_at not recorded")
	}

	if err := m.RunMigrations(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}
	applied, err = m.GetAppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("list applied again: %v", err)
	}
	if len(applied) != 1 {
		t.Fatalf("rerun duplicated tracking rows: %d", len(applied))
	}
}

func TestRunMigrationsCreatesRegisteredTables(t *testing.T) {
	ctx := context.Background()
	db := openMigrationDB(t, "migrations_tables")

	if err := NewMigrationManager(db, nil).RunMigrations(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	if _, err := db.NewInsert().Model(&journalEntry{Note: "schema ready"}).Exec(ctx); err != nil {
		t.Fatalf("insert into migrated table: %v", err)
	}
	count, err := db.NewSelect().Model((*journalEntry)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestRunMigrationsWithoutDB(t *testing.T) {
	if err := NewMigrationManager(nil, nil).RunMigrations(context.Background()); err == nil {
		t.Fatal("nil db must error")
	}
}

func TestRollbackMigrationUnsupported(t *testing.T) {
	db := openMigrationDB(t, "migrations_rollback")
	if err := NewMigrationManager(db, nil).RollbackMigration(context.Background(), "001"); err == nil {
		t.Fatal("rollback must report unsupported")
	}
}
