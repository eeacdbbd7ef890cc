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

package tests

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"github.com/tomoncle/sieve"
	"github.com/tomoncle/sieve/database"
	"github.com/tomoncle/sieve/filter"
	"github.com/tomoncle/sieve/types"
)

// Account is the integration model created by the startup migration.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:ac"`

	ID        int64         `bun:"id,pk,autoincrement"`
	Email     string        `bun:"email,notnull,unique"`
	Plan      string        `bun:"plan,notnull,default:'free'"`
	Active    bool          `bun:"active,notnull,default:true"`
	Metadata  types.JSONMap `bun:"metadata"`
	CreatedAt time.Time     `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type accountPatch struct {
	Plan   types.Optional[string] `json:"plan,omitzero"`
	Active types.Optional[bool]   `json:"active,omitzero"`
}

func (p *accountPatch) Assignments() map[string]types.AnyOptional {
	return map[string]types.AnyOptional{
		"plan":   p.Plan,
		"active": p.Active,
	}
}

func init() {
	database.RegisterModelInstance((*Account)(nil), 1)
}

func sqliteConfig() *database.Config {
	cfg := &database.Config{
		ConnectionConfig:  *database.DefaultConnectionConfig(),
		DataMigrateConfig: database.DataMigrateConfig{EnableMigrateOnStartup: true},
	}
	cfg.ConnectionConfig.Type = "sqlite"
	return cfg
}

func TestInitDatabaseFromFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "conf", "database.yaml")
	if err := database.SaveConfig(sqliteConfig(), path); err != nil {
		t.Fatalf("save config error: %v", err)
	}

	db, err := database.InitDBFromFile(path)
	if err != nil {
		t.Fatalf("init database error: %v", err)
	}
	defer func() { _ = database.CloseDB() }()
	if db == nil || database.GetDB() == nil {
		t.Fatal("global database not initialized")
	}

	mm := database.NewMigrationManager(db, database.GetLogger())
	applied, err := mm.GetAppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("query migrations error: %v", err)
	}
	if len(applied) == 0 || applied[0].Version != "001" {
		t.Fatalf("applied migrations = %+v", applied)
	}
	t.Logf("applied migrations: %d", len(applied))

	health := database.GetHealthStatus(ctx)
	if !health.Connected || !health.Healthy {
		t.Fatalf("health = %+v", health)
	}
	stats := database.GetDatabaseStats()
	t.Logf("open connections: %d", stats.OpenConns)
}

func TestGlobalServiceFlow(t *testing.T) {
	ctx := context.Background()
	if _, err := database.InitDB(sqliteConfig()); err != nil {
		t.Fatalf("init database error: %v", err)
	}
	defer func() { _ = database.CloseDB() }()

	svc := sieve.NewService[Account]()

	accounts := []*Account{
		{Email: "ada@example.com", Plan: "pro", Metadata: types.JSONMap{"tier": "gold"}},
		{Email: "bob@example.com", Plan: "free"},
		{Email: "cleo@example.com", Plan: "pro", Active: true},
	}
	if _, err := svc.CreateBulk(ctx, accounts); err != nil {
		t.Fatalf("bulk create error: %v", err)
	}
	rows, err := svc.Find(ctx, filter.NewBuilder().SortBy(filter.SortAsc("email")).Params())
	if err != nil || len(rows) != 3 {
		t.Fatalf("seed rows = %d, %v", len(rows), err)
	}
	if rows[0].Metadata["tier"] != "gold" {
		t.Fatalf("metadata = %+v", rows[0].Metadata)
	}

	// Duplicate emails surface as a classified constraint violation.
	_, err = svc.Create(ctx, &Account{Email: "ada@example.com"})
	if err == nil {
		t.Fatal("duplicate email must fail")
	}
	if is, kind := database.IsSqlError(err); !is || kind != database.DuplicateKeyErr {
		t.Fatalf("duplicate classified as (%v, %v): %v", is, kind, err)
	}

	pro, err := svc.Find(ctx, filter.NewBuilder().
		Eq("plan", "pro").
		EndsWith("email", "@example.com").
		SortBy(filter.SortAsc("email")).
		Params())
	if err != nil {
		t.Fatalf("find error: %v", err)
	}
	if len(pro) != 2 || pro[0].Email != "ada@example.com" {
		t.Fatalf("find result = %+v", pro)
	}
	t.Logf("pro accounts: %d", len(pro))

	page, err := svc.Paginate(ctx, 1, 2, filter.NewBuilder().
		SortBy(filter.SortAsc("id")).
		Params())
	if err != nil {
		t.Fatalf("paginate error: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 2 || page.Pages() != 2 {
		t.Fatalf("page = %+v", page)
	}

	var patch accountPatch
	if err := json.Unmarshal([]byte(`{"plan": "enterprise", "active": false}`), &patch); err != nil {
		t.Fatalf("decode patch error: %v", err)
	}
	updated, err := svc.UpdateByID(ctx, rows[1].ID, &patch, false)
	if err != nil {
		t.Fatalf("update error: %v", err)
	}
	if updated.Plan != "enterprise" || updated.Active {
		t.Fatalf("updated = %+v", updated)
	}

	existing, err := svc.DeleteByIDs(ctx, []any{rows[0].ID, rows[2].ID, int64(404)})
	if err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if existing != 2 {
		t.Fatalf("existing = %d, want 2", existing)
	}
	left, err := svc.Count(ctx, nil)
	if err != nil || left != 1 {
		t.Fatalf("count after delete = %d, %v", left, err)
	}
}
