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

package query

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/tomoncle/sieve/filter"
)

// Builder accumulates predicates, ordering, and pagination onto a Bun
// select query before running one of its terminal operations. All
// predicates are conjoined with AND. A Builder is single-use: build,
// execute, discard.
type Builder struct {
	db *bun.DB
	q  *bun.SelectQuery
}

// New returns a Builder over a fresh select query bound to the model.
func New(db *bun.DB, model any) *Builder {
	return &Builder{db: db, q: db.NewSelect().Model(model)}
}

// Unwrap exposes the underlying Bun select query for the cases this surface
// does not cover.
func (b *Builder) Unwrap() *bun.SelectQuery {
	return b.q
}

// WhereEq adds column = value.
func (b *Builder) WhereEq(column string, v any) *Builder {
	b.q = b.q.Where("? = ?", bun.Ident(column), v)
	return b
}

// WhereNe adds column <> value.
func (b *Builder) WhereNe(column string, v any) *Builder {
	b.q = b.q.Where("? <> ?", bun.Ident(column), v)
	return b
}

// WhereGt adds column > value.
func (b *Builder) WhereGt(column string, v any) *Builder {
	b.q = b.q.Where("? > ?", bun.Ident(column), v)
	return b
}

// WhereGte adds column >= value.
func (b *Builder) WhereGte(column string, v any) *Builder {
	b.q = b.q.Where("? >= ?", bun.Ident(column), v)
	return b
}

// WhereLt adds column < value.
func (b *Builder) WhereLt(column string, v any) *Builder {
	b.q = b.q.Where("? < ?", bun.Ident(column), v)
	return b
}

// WhereLte adds column <= value.
func (b *Builder) WhereLte(column string, v any) *Builder {
	b.q = b.q.Where("? <= ?", bun.Ident(column), v)
	return b
}

// WhereBetween adds an inclusive range predicate.
func (b *Builder) WhereBetween(column string, lo, hi any) *Builder {
	b.q = b.q.Where("? BETWEEN ? AND ?", bun.Ident(column), lo, hi)
	return b
}

// WhereIn constrains the column to the given set. An empty set matches no
// rows: the predicate becomes constant false rather than being dropped.
func (b *Builder) WhereIn(column string, values []any) *Builder {
	if len(values) == 0 {
		b.q = b.q.Where("1 = 0")
		return b
	}
	b.q = b.q.Where("? IN (?)", bun.Ident(column), bun.In(values))
	return b
}

// WhereNotIn excludes the given set. Excluding nothing holds for every row,
// so an empty set adds no predicate at all.
func (b *Builder) WhereNotIn(column string, values []any) *Builder {
	if len(values) == 0 {
		return b
	}
	b.q = b.q.Where("? NOT IN (?)", bun.Ident(column), bun.In(values))
	return b
}

// WhereLike adds a case-sensitive pattern match; the caller supplies
// wildcards.
func (b *Builder) WhereLike(column, pattern string) *Builder {
	b.q = b.q.Where("? LIKE ?", bun.Ident(column), pattern)
	return b
}

// WhereILike adds a case-insensitive pattern match, using native ILIKE on
// Postgres and LOWER() folding on both sides elsewhere.
func (b *Builder) WhereILike(column, pattern string) *Builder {
	if b.db.Dialect().Name() == dialect.PG {
		b.q = b.q.Where("? ILIKE ?", bun.Ident(column), pattern)
	} else {
		b.q = b.q.Where("LOWER(?) LIKE LOWER(?)", bun.Ident(column), pattern)
	}
	return b
}

// WhereContains matches rows containing v as a substring.
func (b *Builder) WhereContains(column, v string) *Builder {
	return b.WhereLike(column, "%"+v+"%")
}

// WhereIContains matches substrings case-insensitively.
func (b *Builder) WhereIContains(column, v string) *Builder {
	return b.WhereILike(column, "%"+v+"%")
}

// WhereStartsWith matches rows beginning with v.
func (b *Builder) WhereStartsWith(column, v string) *Builder {
	return b.WhereLike(column, v+"%")
}

// WhereEndsWith matches rows ending with v.
func (b *Builder) WhereEndsWith(column, v string) *Builder {
	return b.WhereLike(column, "%"+v)
}

// WhereIsNull adds column IS NULL.
func (b *Builder) WhereIsNull(column string) *Builder {
	b.q = b.q.Where("? IS NULL", bun.Ident(column))
	return b
}

// WhereIsNotNull adds column IS NOT NULL.
func (b *Builder) WhereIsNotNull(column string) *Builder {
	b.q = b.q.Where("? IS NOT NULL", bun.Ident(column))
	return b
}

// OrderBy applies one sort descriptor across its physical columns. MySQL
// has no native NULLS FIRST/LAST, so explicit null placement there becomes
// a leading IS NULL ordering key before the directional one.
func (b *Builder) OrderBy(s filter.Sort, columns ...string) *Builder {
	for _, column := range columns {
		if s.Nulls == filter.NullsUnspecified {
			b.q = b.q.OrderExpr("? ?", bun.Ident(column), bun.Safe(s.Dir.String()))
			continue
		}
		if b.db.Dialect().Name() == dialect.MySQL {
			if s.Nulls == filter.NullsFirst {
				b.q = b.q.OrderExpr("? IS NULL DESC", bun.Ident(column))
			} else {
				b.q = b.q.OrderExpr("? IS NULL ASC", bun.Ident(column))
			}
			b.q = b.q.OrderExpr("? ?", bun.Ident(column), bun.Safe(s.Dir.String()))
			continue
		}
		b.q = b.q.OrderExpr("? ? ?", bun.Ident(column), bun.Safe(s.Dir.String()), bun.Safe(s.Nulls.String()))
	}
	return b
}

// Limit caps returned rows; non-positive values are ignored.
func (b *Builder) Limit(n int) *Builder {
	if n > 0 {
		b.q = b.q.Limit(n)
	}
	return b
}

// Offset skips rows; non-positive values are ignored.
func (b *Builder) Offset(n int) *Builder {
	if n > 0 {
		b.q = b.q.Offset(n)
	}
	return b
}

// Scan executes the query into dest, or into the bound model when dest is
// omitted.
func (b *Builder) Scan(ctx context.Context, dest ...any) error {
	return b.q.Scan(ctx, dest...)
}

// Count executes a count query over the accumulated predicates.
func (b *Builder) Count(ctx context.Context) (int, error) {
	return b.q.Count(ctx)
}

// Exists reports whether any row matches the accumulated predicates.
func (b *Builder) Exists(ctx context.Context) (bool, error) {
	return b.q.Exists(ctx)
}
