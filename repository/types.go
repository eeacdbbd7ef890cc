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

package repository

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/sieve/query"
)

// CrudRepository defines id-based CRUD operations for a generic entity
// type. Lookups that match nothing return empty results, never errors;
// writes that match nothing succeed silently. Every id is validated against
// the supported key kinds before touching the database.
type CrudRepository[T any] interface {
	// FindByID returns the entity with the given primary key, or nil when
	// no row matches.
	FindByID(ctx context.Context, id any) (*T, error)

	// FindByIDs returns the entities matching ids. The empty input returns
	// an empty slice without querying; result order follows the database,
	// not the input.
	FindByIDs(ctx context.Context, ids []any) ([]*T, error)

	// Create inserts one entity.
	Create(ctx context.Context, entity *T) error

	// CreateBulk inserts all entities in a single statement. An empty
	// slice is a no-op.
	CreateBulk(ctx context.Context, entities []*T) error

	// UpdateByID applies the column to value assignments to one row. An
	// empty map is a no-op.
	UpdateByID(ctx context.Context, id any, values map[string]any) error

	// UpdateByIDs applies the assignments to every row matching ids.
	UpdateByIDs(ctx context.Context, ids []any, values map[string]any) error

	// DeleteByID removes one row; removing an absent id succeeds.
	DeleteByID(ctx context.Context, id any) error

	// DeleteByIDs removes every row matching ids.
	DeleteByIDs(ctx context.Context, ids []any) error

	// ExistsByID reports whether a row with the given id exists.
	ExistsByID(ctx context.Context, id any) (bool, error)
}

// QueryRepository hands out single-use query builders scoped to the entity
// model. Every call returns a fresh builder; builders are never shared.
type QueryRepository[T any] interface {
	Query() *query.Builder
}

// TransactionRepository defines write operations executed within a
// transaction.
type TransactionRepository[T any] interface {
	CreateWithTx(ctx context.Context, tx *bun.Tx, entity *T) error
	CreateBulkWithTx(ctx context.Context, tx *bun.Tx, entities []*T) error
	UpdateByIDWithTx(ctx context.Context, tx *bun.Tx, id any, values map[string]any) error
	DeleteByIDWithTx(ctx context.Context, tx *bun.Tx, id any) error
}

// Repository combines CRUD, scoped query building, and transactional
// operations and exposes Bun query builders for advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	QueryRepository[T]
	TransactionRepository[T]
	Dialect() schema.Dialect
	DB() *bun.DB
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}
