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

package filter

// Direction orders a sort key ascending or descending.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// NullsPlacement controls where null values sort relative to non-null
// ones. Unspecified leaves placement to the database default.
type NullsPlacement int

const (
	NullsUnspecified NullsPlacement = iota
	NullsFirst
	NullsLast
)

func (n NullsPlacement) String() string {
	switch n {
	case NullsFirst:
		return "NULLS FIRST"
	case NullsLast:
		return "NULLS LAST"
	default:
		return ""
	}
}

// Sort orders query results by one logical field. A sequence of descriptors
// forms a strict priority order: earlier descriptors win and later ones
// break ties.
type Sort struct {
	Field string         `json:"field"`
	Dir   Direction      `json:"dir"`
	Nulls NullsPlacement `json:"nulls"`
}

// SortAsc sorts a field in ascending order.
func SortAsc(field string) Sort {
	return Sort{Field: field, Dir: Asc}
}

// SortDesc sorts a field in descending order.
func SortDesc(field string) Sort {
	return Sort{Field: field, Dir: Desc}
}

// WithNulls returns a copy of the descriptor with explicit null placement.
func (s Sort) WithNulls(p NullsPlacement) Sort {
	s.Nulls = p
	return s
}
