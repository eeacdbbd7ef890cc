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

package sieve

import (
	"context"
	"fmt"
	"sync"

	"github.com/uptrace/bun"

	"github.com/tomoncle/sieve/database"
	"github.com/tomoncle/sieve/filter"
	"github.com/tomoncle/sieve/query"
	"github.com/tomoncle/sieve/repository"
	"github.com/tomoncle/sieve/types"
)

// ConvertFunc maps a storage entity to the caller-facing response shape.
type ConvertFunc[T, R any] func(*T) *R

// Service is the caller-facing layer over one entity type T with response
// type R: schema-driven filtering, 1-indexed pagination, and id-based CRUD
// with three-valued update semantics.
type Service[T, R any] interface {
	// FindByID returns the entity with the given id, or nil when absent.
	FindByID(ctx context.Context, id any) (*R, error)

	// FindByIDs returns the entities matching ids; result order follows
	// the database, not the input.
	FindByIDs(ctx context.Context, ids []any) ([]*R, error)

	// Find returns entities matching the schema's filters, sort, and
	// pagination controls.
	Find(ctx context.Context, schema filter.Schema) ([]*R, error)

	// FindOne returns the first entity matching the schema's filters and
	// sort, or nil when nothing matches.
	FindOne(ctx context.Context, schema filter.Schema) (*R, error)

	// Count returns the number of entities matching the schema's filters,
	// ignoring its limit and offset.
	Count(ctx context.Context, schema filter.Schema) (int, error)

	// Exists reports whether any entity matches the schema's filters.
	Exists(ctx context.Context, schema filter.Schema) (bool, error)

	// ExistsByID reports whether the id is present.
	ExistsByID(ctx context.Context, id any) (bool, error)

	// Paginate returns the 1-indexed page together with the total filtered
	// count. A page or perPage below 1 is a precondition error.
	Paginate(ctx context.Context, page, perPage int, schema filter.Schema) (*types.Pagination[R], error)

	// Create persists a new entity and returns its response form.
	Create(ctx context.Context, entity *T) (*R, error)

	// CreateBulk persists the entities in one statement.
	CreateBulk(ctx context.Context, entities []*T) ([]*R, error)

	// UpdateByID applies a three-valued payload to one entity: unset
	// fields stay untouched unless includeUnsetAsNull writes them as NULL,
	// explicit nulls clear their columns, values overwrite. Returns the
	// refreshed entity, or nil when the id does not exist.
	UpdateByID(ctx context.Context, id any, payload types.UpdatePayload, includeUnsetAsNull bool) (*R, error)

	// UpdateByIDWithFields updates exactly the named payload fields,
	// taking whatever value each holds, including null for unset ones.
	UpdateByIDWithFields(ctx context.Context, id any, payload types.UpdatePayload, fields []string) (*R, error)

	// UpdateByIDs applies the payload to every existing id and returns how
	// many of the ids existed beforehand.
	UpdateByIDs(ctx context.Context, ids []any, payload types.UpdatePayload, includeUnsetAsNull bool) (int, error)

	// DeleteByID removes one entity, reporting whether it existed.
	DeleteByID(ctx context.Context, id any) (bool, error)

	// DeleteByIDs removes the given ids and returns the count that existed
	// before deletion.
	DeleteByIDs(ctx context.Context, ids []any) (int, error)

	// Query returns a fresh single-use query builder scoped to the entity.
	Query() *query.Builder
}

// Option configures service construction.
type Option func(*serviceOptions)

type serviceOptions struct {
	db     *bun.DB
	mapper query.FieldMapper
}

// WithDB pins the service to a database handle instead of the global one.
func WithDB(db *bun.DB) Option {
	return func(o *serviceOptions) { o.db = db }
}

// WithFieldMapper overrides the model-derived field to column resolution.
func WithFieldMapper(m query.FieldMapper) Option {
	return func(o *serviceOptions) { o.mapper = m }
}

// NewService returns a Service whose responses are the entities themselves.
func NewService[T any](opts ...Option) Service[T, T] {
	return NewMappedService[T, T](func(entity *T) *T { return entity }, opts...)
}

// NewMappedService returns a Service that converts every returned entity
// through convert. The repository and field mapper initialize lazily on
// first use against the configured or global database connection.
func NewMappedService[T, R any](convert ConvertFunc[T, R], opts ...Option) Service[T, R] {
	o := &serviceOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return &baseServiceImpl[T, R]{opts: o, convert: convert}
}

type baseServiceImpl[T, R any] struct {
	opts    *serviceOptions
	convert ConvertFunc[T, R]
	repo    repository.Repository[T]
	mapper  query.FieldMapper
	once    sync.Once
}

func (s *baseServiceImpl[T, R]) init() {
	s.once.Do(func() {
		db := s.opts.db
		if db == nil {
			db = database.GetDB()
		}
		s.repo = repository.NewRepository[T](db)
		s.mapper = s.opts.mapper
		if s.mapper == nil {
			s.mapper = query.NewTableMapper(db, (*T)(nil))
		}
	})
}

func (s *baseServiceImpl[T, R]) baseRepo() repository.Repository[T] {
	s.init()
	return s.repo
}

func (s *baseServiceImpl[T, R]) fieldMapper() query.FieldMapper {
	s.init()
	return s.mapper
}

func (s *baseServiceImpl[T, R]) convertAll(entities []*T) []*R {
	out := make([]*R, 0, len(entities))
	for _, entity := range entities {
		out = append(out, s.convert(entity))
	}
	return out
}

func (s *baseServiceImpl[T, R]) FindByID(ctx context.Context, id any) (*R, error) {
	entity, err := s.baseRepo().FindByID(ctx, id)
	if err != nil || entity == nil {
		return nil, err
	}
	return s.convert(entity), nil
}

func (s *baseServiceImpl[T, R]) FindByIDs(ctx context.Context, ids []any) ([]*R, error) {
	entities, err := s.baseRepo().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.convertAll(entities), nil
}

func (s *baseServiceImpl[T, R]) Find(ctx context.Context, schema filter.Schema) ([]*R, error) {
	builder := s.baseRepo().Query()
	if err := query.ApplySchema(builder, s.fieldMapper(), schema); err != nil {
		return nil, err
	}
	var entities []*T
	if err := builder.Scan(ctx, &entities); err != nil {
		return nil, err
	}
	return s.convertAll(entities), nil
}

// FindOne builds a dedicated single-row query per call: the schema's own
// limit and offset never participate and no builder state is shared.
func (s *baseServiceImpl[T, R]) FindOne(ctx context.Context, schema filter.Schema) (*R, error) {
	builder := s.baseRepo().Query()
	if err := query.ApplyFilters(builder, s.fieldMapper(), schema); err != nil {
		return nil, err
	}
	if schema != nil {
		if err := query.ApplySort(builder, s.fieldMapper(), schema.Controls().Sort...); err != nil {
			return nil, err
		}
	}
	var entities []*T
	if err := builder.Limit(1).Scan(ctx, &entities); err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, nil
	}
	return s.convert(entities[0]), nil
}

func (s *baseServiceImpl[T, R]) Count(ctx context.Context, schema filter.Schema) (int, error) {
	builder := s.baseRepo().Query()
	if err := query.ApplyFilters(builder, s.fieldMapper(), schema); err != nil {
		return 0, err
	}
	return builder.Count(ctx)
}

func (s *baseServiceImpl[T, R]) Exists(ctx context.Context, schema filter.Schema) (bool, error) {
	builder := s.baseRepo().Query()
	if err := query.ApplyFilters(builder, s.fieldMapper(), schema); err != nil {
		return false, err
	}
	return builder.Exists(ctx)
}

func (s *baseServiceImpl[T, R]) ExistsByID(ctx context.Context, id any) (bool, error) {
	return s.baseRepo().ExistsByID(ctx, id)
}

func (s *baseServiceImpl[T, R]) Paginate(ctx context.Context, page, perPage int, schema filter.Schema) (*types.Pagination[R], error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be >= 1, got %d", types.ErrPrecondition, page)
	}
	if perPage < 1 {
		return nil, fmt.Errorf("%w: perPage must be >= 1, got %d", types.ErrPrecondition, perPage)
	}
	builder := s.baseRepo().Query()
	if err := query.ApplyFilters(builder, s.fieldMapper(), schema); err != nil {
		return nil, err
	}
	pagination := types.NewPagination[R](page, perPage)
	total, err := builder.Count(ctx)
	if err != nil || total == 0 {
		return pagination, err
	}
	pagination.Total = total
	if schema != nil {
		if err := query.ApplySort(builder, s.fieldMapper(), schema.Controls().Sort...); err != nil {
			return nil, err
		}
	}
	var entities []*T
	if err := builder.Offset((page - 1) * perPage).Limit(perPage).Scan(ctx, &entities); err != nil {
		return nil, err
	}
	pagination.Items = s.convertAll(entities)
	return pagination, nil
}

func (s *baseServiceImpl[T, R]) Create(ctx context.Context, entity *T) (*R, error) {
	if err := s.baseRepo().Create(ctx, entity); err != nil {
		return nil, err
	}
	return s.convert(entity), nil
}

func (s *baseServiceImpl[T, R]) CreateBulk(ctx context.Context, entities []*T) ([]*R, error) {
	if err := s.baseRepo().CreateBulk(ctx, entities); err != nil {
		return nil, err
	}
	return s.convertAll(entities), nil
}

func (s *baseServiceImpl[T, R]) UpdateByID(ctx context.Context, id any, payload types.UpdatePayload, includeUnsetAsNull bool) (*R, error) {
	return s.applyUpdate(ctx, id, types.ResolveAssignments(payload, includeUnsetAsNull))
}

func (s *baseServiceImpl[T, R]) UpdateByIDWithFields(ctx context.Context, id any, payload types.UpdatePayload, fields []string) (*R, error) {
	values, err := types.ResolveFields(payload, fields)
	if err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, id, values)
}

// applyUpdate checks existence before writing so an update that matches
// nothing reports absence instead of success, then returns the refreshed
// row.
func (s *baseServiceImpl[T, R]) applyUpdate(ctx context.Context, id any, values map[string]any) (*R, error) {
	repo := s.baseRepo()
	exists, err := repo.ExistsByID(ctx, id)
	if err != nil || !exists {
		return nil, err
	}
	if len(values) > 0 {
		if err := repo.UpdateByID(ctx, id, values); err != nil {
			return nil, err
		}
	}
	entity, err := repo.FindByID(ctx, id)
	if err != nil || entity == nil {
		return nil, err
	}
	return s.convert(entity), nil
}

func (s *baseServiceImpl[T, R]) UpdateByIDs(ctx context.Context, ids []any, payload types.UpdatePayload, includeUnsetAsNull bool) (int, error) {
	existing, err := s.countExisting(ctx, ids)
	if err != nil || existing == 0 {
		return existing, err
	}
	values := types.ResolveAssignments(payload, includeUnsetAsNull)
	if len(values) == 0 {
		return existing, nil
	}
	if err := s.baseRepo().UpdateByIDs(ctx, ids, values); err != nil {
		return 0, err
	}
	return existing, nil
}

func (s *baseServiceImpl[T, R]) DeleteByID(ctx context.Context, id any) (bool, error) {
	repo := s.baseRepo()
	exists, err := repo.ExistsByID(ctx, id)
	if err != nil || !exists {
		return false, err
	}
	if err := repo.DeleteByID(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

func (s *baseServiceImpl[T, R]) DeleteByIDs(ctx context.Context, ids []any) (int, error) {
	existing, err := s.countExisting(ctx, ids)
	if err != nil || existing == 0 {
		return existing, err
	}
	if err := s.baseRepo().DeleteByIDs(ctx, ids); err != nil {
		return 0, err
	}
	return existing, nil
}

// countExisting counts how many ids are present, via a dedicated builder.
func (s *baseServiceImpl[T, R]) countExisting(ctx context.Context, ids []any) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if err := types.ValidateKeys(ids); err != nil {
		return 0, err
	}
	return s.baseRepo().Query().WhereIn("id", ids).Count(ctx)
}

func (s *baseServiceImpl[T, R]) Query() *query.Builder {
	return s.baseRepo().Query()
}
