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

// Kind identifies which filter variant a value belongs to or a payload
// resolved to.
type Kind int

const (
	// KindUndetermined means the detector could not classify a payload.
	// Undetermined filters emit no conditions and are skipped.
	KindUndetermined Kind = iota
	KindString
	KindNumber
	KindBoolean
	KindTemporal
	KindEnum
	KindIdentifier
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindTemporal:
		return "temporal"
	case KindEnum:
		return "enum"
	case KindIdentifier:
		return "identifier"
	default:
		return "undetermined"
	}
}

// Op enumerates the predicate operators a filter can carry.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpGt
	OpGte
	OpLt
	OpLte
	OpBetween
	OpIn
	OpNotIn
	OpLike
	OpILike
	OpContains
	OpIContains
	OpStartsWith
	OpEndsWith
	OpIsNull
	OpIsNotNull
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpNe:
		return "ne"
	case OpGt:
		return "gt"
	case OpGte:
		return "gte"
	case OpLt:
		return "lt"
	case OpLte:
		return "lte"
	case OpBetween:
		return "between"
	case OpIn:
		return "in"
	case OpNotIn:
		return "not_in"
	case OpLike:
		return "like"
	case OpILike:
		return "ilike"
	case OpContains:
		return "contains"
	case OpIContains:
		return "icontains"
	case OpStartsWith:
		return "starts_with"
	case OpEndsWith:
		return "ends_with"
	case OpIsNull:
		return "is_null"
	case OpIsNotNull:
		return "is_not_null"
	default:
		return "unknown"
	}
}

// Condition is one active operator extracted from a filter value.
//
// Scalar operators populate Value. OpIn and OpNotIn populate Values; a
// non-nil empty Values slice means a deliberately empty set, which is not
// the same as the operator being absent. OpBetween populates the inclusive
// Low and High bounds. Nullness operators carry no operands.
type Condition struct {
	Op     Op
	Value  any
	Values []any
	Low    any
	High   any
}

// Filter is implemented by every filter variant. Conditions returns the
// active operators in the fixed emission order: equality, then range and
// comparison, then set membership, then text patterns, then nullness. A
// filter with no active operators behaves exactly like an absent field and
// must return an empty slice.
type Filter interface {
	Kind() Kind
	Conditions() []Condition
}
