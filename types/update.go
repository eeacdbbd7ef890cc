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

package types

import (
	"fmt"
	"sort"
)

// AnyOptional is the type-erased view of Optional values used by generic
// update code.
type AnyOptional interface {
	IsSet() bool
	IsNull() bool
	Interface() (any, bool)
}

// UpdatePayload exposes a payload's updatable fields under three-valued
// semantics. Assignments maps column names to the Optional state of each
// field; the state decides whether the field participates in an update.
type UpdatePayload interface {
	Assignments() map[string]AnyOptional
}

// ResolveAssignments flattens a payload into a column to value map. Unset
// fields are omitted unless includeUnset is true, in which case they are
// written as NULL. Explicit nulls always map to nil.
func ResolveAssignments(p UpdatePayload, includeUnset bool) map[string]any {
	values := make(map[string]any)
	for column, field := range p.Assignments() {
		if !field.IsSet() {
			if includeUnset {
				values[column] = nil
			}
			continue
		}
		if v, ok := field.Interface(); ok {
			values[column] = v
		} else {
			values[column] = nil
		}
	}
	return values
}

// ResolveFields takes exactly the named fields from the payload, ignoring
// set and unset states: an unset field reads as NULL. Naming a field the
// payload does not expose is a precondition error.
func ResolveFields(p UpdatePayload, fields []string) (map[string]any, error) {
	assignments := p.Assignments()
	values := make(map[string]any, len(fields))
	for _, name := range fields {
		field, ok := assignments[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q is not an updatable field", ErrUnknownField, name)
		}
		if v, ok := field.Interface(); ok {
			values[name] = v
		} else {
			values[name] = nil
		}
	}
	return values, nil
}

// SortedColumns returns the map's keys in ascending order so generated SET
// clauses are deterministic.
func SortedColumns(values map[string]any) []string {
	columns := make([]string, 0, len(values))
	for column := range values {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}
