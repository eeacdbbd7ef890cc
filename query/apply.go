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
	"fmt"

	"github.com/tomoncle/sieve/filter"
)

// validatable is satisfied by filters that check their operands before
// emission, like identifier filters validating key shapes.
type validatable interface {
	Validate() error
}

// ApplyFilter emits one filter's active conditions onto the builder against
// a single column, in the filter's fixed emission order. A nil filter or
// one with no active operators adds nothing.
func ApplyFilter(b *Builder, column string, f filter.Filter) error {
	if f == nil {
		return nil
	}
	return emitConditions(b, column, f, f.Conditions())
}

func emitConditions(b *Builder, column string, f filter.Filter, conds []filter.Condition) error {
	if len(conds) == 0 {
		return nil
	}
	if v, ok := f.(validatable); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	for _, c := range conds {
		emitCondition(b, column, c)
	}
	return nil
}

func emitCondition(b *Builder, column string, c filter.Condition) {
	switch c.Op {
	case filter.OpEq:
		b.WhereEq(column, c.Value)
	case filter.OpNe:
		b.WhereNe(column, c.Value)
	case filter.OpGt:
		b.WhereGt(column, c.Value)
	case filter.OpGte:
		b.WhereGte(column, c.Value)
	case filter.OpLt:
		b.WhereLt(column, c.Value)
	case filter.OpLte:
		b.WhereLte(column, c.Value)
	case filter.OpBetween:
		b.WhereBetween(column, c.Low, c.High)
	case filter.OpIn:
		b.WhereIn(column, c.Values)
	case filter.OpNotIn:
		b.WhereNotIn(column, c.Values)
	case filter.OpLike:
		b.WhereLike(column, patternOperand(c.Value))
	case filter.OpILike:
		b.WhereILike(column, patternOperand(c.Value))
	case filter.OpContains:
		b.WhereContains(column, patternOperand(c.Value))
	case filter.OpIContains:
		b.WhereIContains(column, patternOperand(c.Value))
	case filter.OpStartsWith:
		b.WhereStartsWith(column, patternOperand(c.Value))
	case filter.OpEndsWith:
		b.WhereEndsWith(column, patternOperand(c.Value))
	case filter.OpIsNull:
		b.WhereIsNull(column)
	case filter.OpIsNotNull:
		b.WhereIsNotNull(column)
	}
}

func patternOperand(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// ApplyFilters walks the schema's fields in declared order, resolving each
// attached filter's column and emitting its predicates. Filters with no
// active conditions are skipped silently; a field the mapper cannot resolve
// is a precondition error that aborts the whole application.
func ApplyFilters(b *Builder, m FieldMapper, s filter.Schema) error {
	if s == nil {
		return nil
	}
	for _, field := range s.Fields() {
		if field.Filter == nil {
			continue
		}
		column, err := m.Column(field.Name)
		if err != nil {
			return err
		}
		if err := emitConditions(b, column, field.Filter, field.Filter.Conditions()); err != nil {
			return err
		}
	}
	return nil
}

// ApplySort applies descriptors in priority order. A composite logical
// field expands into consecutive ordering keys sharing the descriptor's
// direction and null placement.
func ApplySort(b *Builder, m FieldMapper, sorts ...filter.Sort) error {
	for _, s := range sorts {
		columns, err := m.SortColumns(s.Field)
		if err != nil {
			return err
		}
		b.OrderBy(s, columns...)
	}
	return nil
}

// ApplySchema applies the schema's filters, then its sort descriptors, then
// limit and offset.
func ApplySchema(b *Builder, m FieldMapper, s filter.Schema) error {
	if s == nil {
		return nil
	}
	if err := ApplyFilters(b, m, s); err != nil {
		return err
	}
	ctrl := s.Controls()
	if err := ApplySort(b, m, ctrl.Sort...); err != nil {
		return err
	}
	if ctrl.Limit != nil {
		b.Limit(*ctrl.Limit)
	}
	if ctrl.Offset != nil {
		b.Offset(*ctrl.Offset)
	}
	return nil
}
