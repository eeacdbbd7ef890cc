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
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/sieve/query"
	"github.com/tomoncle/sieve/types"
)

type baseRepositoryImpl[T any] struct {
	db *bun.DB
}

// NewRepository returns a generic repository backed by the provided Bun DB.
func NewRepository[T any](db *bun.DB) Repository[T] {
	return &baseRepositoryImpl[T]{db: db}
}

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) DB() *bun.DB { return r.db }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *baseRepositoryImpl[T]) NewInsert() *bun.InsertQuery { return r.db.NewInsert() }

func (r *baseRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery { return r.db.NewUpdate() }

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete() }

func (r *baseRepositoryImpl[T]) Query() *query.Builder {
	return query.New(r.db, (*T)(nil))
}

func (r *baseRepositoryImpl[T]) FindByID(ctx context.Context, id any) (*T, error) {
	if err := types.ValidateKey(id); err != nil {
		return nil, err
	}
	var entity T
	err := r.db.NewSelect().Model(&entity).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) FindByIDs(ctx context.Context, ids []any) ([]*T, error) {
	entities := make([]*T, 0, len(ids))
	if len(ids) == 0 {
		return entities, nil
	}
	if err := types.ValidateKeys(ids); err != nil {
		return nil, err
	}
	err := r.db.NewSelect().Model(&entities).Where("id IN (?)", bun.In(ids)).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity *T) error {
	_, err := r.db.NewInsert().Model(entity).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) CreateBulk(ctx context.Context, entities []*T) error {
	if len(entities) == 0 {
		return nil
	}
	_, err := r.db.NewInsert().Model(&entities).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) UpdateByID(ctx context.Context, id any, values map[string]any) error {
	if err := types.ValidateKey(id); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	_, err := r.setClauses(r.db.NewUpdate(), values).Where("id = ?", id).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) UpdateByIDs(ctx context.Context, ids []any, values map[string]any) error {
	if err := types.ValidateKeys(ids); err != nil {
		return err
	}
	if len(ids) == 0 || len(values) == 0 {
		return nil
	}
	_, err := r.setClauses(r.db.NewUpdate(), values).Where("id IN (?)", bun.In(ids)).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) DeleteByID(ctx context.Context, id any) error {
	if err := types.ValidateKey(id); err != nil {
		return err
	}
	var entity T
	_, err := r.db.NewDelete().Model(&entity).Where("id = ?", id).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) DeleteByIDs(ctx context.Context, ids []any) error {
	if err := types.ValidateKeys(ids); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	var entity T
	_, err := r.db.NewDelete().Model(&entity).Where("id IN (?)", bun.In(ids)).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) ExistsByID(ctx context.Context, id any) (bool, error) {
	if err := types.ValidateKey(id); err != nil {
		return false, err
	}
	return r.db.NewSelect().Model((*T)(nil)).Where("id = ?", id).Exists(ctx)
}

func (r *baseRepositoryImpl[T]) CreateWithTx(ctx context.Context, tx *bun.Tx, entity *T) error {
	_, err := tx.NewInsert().Model(entity).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) CreateBulkWithTx(ctx context.Context, tx *bun.Tx, entities []*T) error {
	if len(entities) == 0 {
		return nil
	}
	_, err := tx.NewInsert().Model(&entities).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) UpdateByIDWithTx(ctx context.Context, tx *bun.Tx, id any, values map[string]any) error {
	if err := types.ValidateKey(id); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	_, err := r.setClauses(tx.NewUpdate(), values).Where("id = ?", id).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) DeleteByIDWithTx(ctx context.Context, tx *bun.Tx, id any) error {
	if err := types.ValidateKey(id); err != nil {
		return err
	}
	var entity T
	_, err := tx.NewDelete().Model(&entity).Where("id = ?", id).Exec(ctx)
	return err
}

// setClauses binds the model and appends SET clauses in sorted column order
// so generated SQL is deterministic.
func (r *baseRepositoryImpl[T]) setClauses(q *bun.UpdateQuery, values map[string]any) *bun.UpdateQuery {
	q = q.Model((*T)(nil))
	for _, column := range types.SortedColumns(values) {
		q = q.Set("? = ?", bun.Ident(column), values[column])
	}
	return q
}
