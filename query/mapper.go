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
	"reflect"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/sieve/types"
)

// FieldMapper resolves logical field names to physical columns. Column is
// used for filtering and must yield exactly one column; SortColumns may
// expand a composite logical field into several ordering keys.
type FieldMapper interface {
	Column(field string) (string, error)
	SortColumns(field string) ([]string, error)
}

// MapMapper is a FieldMapper backed by an explicit field to column map.
type MapMapper struct {
	columns map[string]string
	sorts   map[string][]string
}

var _ FieldMapper = (*MapMapper)(nil)

// NewMapMapper builds a mapper from field to column pairs.
func NewMapMapper(columns map[string]string) *MapMapper {
	m := &MapMapper{columns: make(map[string]string, len(columns))}
	for field, column := range columns {
		m.columns[field] = column
	}
	return m
}

// WithSortColumns declares a composite sort expansion for one logical
// field: ordering by that field orders by every listed column in turn.
func (m *MapMapper) WithSortColumns(field string, columns ...string) *MapMapper {
	if m.sorts == nil {
		m.sorts = make(map[string][]string)
	}
	m.sorts[field] = columns
	return m
}

func (m *MapMapper) Column(field string) (string, error) {
	if column, ok := m.columns[field]; ok {
		return column, nil
	}
	return "", fmt.Errorf("%w: %q", types.ErrUnknownField, field)
}

func (m *MapMapper) SortColumns(field string) ([]string, error) {
	if columns, ok := m.sorts[field]; ok && len(columns) > 0 {
		return columns, nil
	}
	column, err := m.Column(field)
	if err != nil {
		return nil, err
	}
	return []string{column}, nil
}

// TableMapper resolves fields against a Bun model definition, accepting
// both column names and Go struct field names.
type TableMapper struct {
	table *schema.Table
}

var _ FieldMapper = (*TableMapper)(nil)

// NewTableMapper derives a mapper from the model's Bun table metadata.
func NewTableMapper(db *bun.DB, model any) *TableMapper {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return &TableMapper{table: db.Table(t)}
}

func (m *TableMapper) Column(field string) (string, error) {
	for _, f := range m.table.Fields {
		if f.Name == field || f.GoName == field {
			return f.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %q has no column in table %s", types.ErrUnknownField, field, m.table.Name)
}

func (m *TableMapper) SortColumns(field string) ([]string, error) {
	column, err := m.Column(field)
	if err != nil {
		return nil, err
	}
	return []string{column}, nil
}
