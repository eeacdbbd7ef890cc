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

import (
	"encoding/json"
	"time"

	"github.com/tomoncle/sieve/types"
)

// Ptr returns a pointer to v, convenient for literal filter construction.
func Ptr[T any](v T) *T { return &v }

// Numeric constrains NumberFilter to Go's integer and float kinds.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Range is an inclusive numeric interval.
type Range[T Numeric] struct {
	Low  T `json:"low"`
	High T `json:"high"`
}

// UnmarshalJSON accepts both the object form {"low": a, "high": b} and the
// two-element array form [a, b].
func (r *Range[T]) UnmarshalJSON(data []byte) error {
	var pair [2]T
	if err := json.Unmarshal(data, &pair); err == nil {
		r.Low, r.High = pair[0], pair[1]
		return nil
	}
	type plain Range[T]
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Range[T](p)
	return nil
}

// TimeRange is an inclusive temporal interval.
type TimeRange struct {
	Low  time.Time `json:"low"`
	High time.Time `json:"high"`
}

// UnmarshalJSON accepts both the object form and the two-element array form.
func (r *TimeRange) UnmarshalJSON(data []byte) error {
	var pair [2]time.Time
	if err := json.Unmarshal(data, &pair); err == nil {
		r.Low, r.High = pair[0], pair[1]
		return nil
	}
	type plain TimeRange
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = TimeRange(p)
	return nil
}

// StringFilter filters text columns. Nil operators are absent; a non-nil
// empty In matches no rows, while a non-nil empty NotIn excludes nothing.
type StringFilter struct {
	Eq         *string  `json:"eq"`
	Ne         *string  `json:"ne"`
	In         []string `json:"in"`
	NotIn      []string `json:"not_in"`
	Like       *string  `json:"like"`
	ILike      *string  `json:"ilike"`
	Contains   *string  `json:"contains"`
	IContains  *string  `json:"icontains"`
	StartsWith *string  `json:"starts_with"`
	EndsWith   *string  `json:"ends_with"`
	IsNull     *bool    `json:"is_null"`
	IsNotNull  *bool    `json:"is_not_null"`
}

func (f *StringFilter) Kind() Kind { return KindString }

func (f *StringFilter) Conditions() []Condition {
	if f == nil {
		return nil
	}
	var conds []Condition
	if f.Eq != nil {
		conds = append(conds, Condition{Op: OpEq, Value: *f.Eq})
	}
	if f.Ne != nil {
		conds = append(conds, Condition{Op: OpNe, Value: *f.Ne})
	}
	if f.In != nil {
		conds = append(conds, Condition{Op: OpIn, Values: box(f.In)})
	}
	if f.NotIn != nil {
		conds = append(conds, Condition{Op: OpNotIn, Values: box(f.NotIn)})
	}
	if f.Like != nil {
		conds = append(conds, Condition{Op: OpLike, Value: *f.Like})
	}
	if f.ILike != nil {
		conds = append(conds, Condition{Op: OpILike, Value: *f.ILike})
	}
	if f.Contains != nil {
		conds = append(conds, Condition{Op: OpContains, Value: *f.Contains})
	}
	if f.IContains != nil {
		conds = append(conds, Condition{Op: OpIContains, Value: *f.IContains})
	}
	if f.StartsWith != nil {
		conds = append(conds, Condition{Op: OpStartsWith, Value: *f.StartsWith})
	}
	if f.EndsWith != nil {
		conds = append(conds, Condition{Op: OpEndsWith, Value: *f.EndsWith})
	}
	return appendNullness(conds, f.IsNull, f.IsNotNull)
}

// NumberFilter filters numeric columns.
type NumberFilter[T Numeric] struct {
	Eq        *T        `json:"eq"`
	Ne        *T        `json:"ne"`
	Gt        *T        `json:"gt"`
	Gte       *T        `json:"gte"`
	Lt        *T        `json:"lt"`
	Lte       *T        `json:"lte"`
	Between   *Range[T] `json:"between"`
	In        []T       `json:"in"`
	NotIn     []T       `json:"not_in"`
	IsNull    *bool     `json:"is_null"`
	IsNotNull *bool     `json:"is_not_null"`
}

func (f *NumberFilter[T]) Kind() Kind { return KindNumber }

func (f *NumberFilter[T]) Conditions() []Condition {
	if f == nil {
		return nil
	}
	var conds []Condition
	if f.Eq != nil {
		conds = append(conds, Condition{Op: OpEq, Value: *f.Eq})
	}
	if f.Ne != nil {
		conds = append(conds, Condition{Op: OpNe, Value: *f.Ne})
	}
	if f.Gt != nil {
		conds = append(conds, Condition{Op: OpGt, Value: *f.Gt})
	}
	if f.Gte != nil {
		conds = append(conds, Condition{Op: OpGte, Value: *f.Gte})
	}
	if f.Lt != nil {
		conds = append(conds, Condition{Op: OpLt, Value: *f.Lt})
	}
	if f.Lte != nil {
		conds = append(conds, Condition{Op: OpLte, Value: *f.Lte})
	}
	if f.Between != nil {
		conds = append(conds, Condition{Op: OpBetween, Low: f.Between.Low, High: f.Between.High})
	}
	if f.In != nil {
		conds = append(conds, Condition{Op: OpIn, Values: box(f.In)})
	}
	if f.NotIn != nil {
		conds = append(conds, Condition{Op: OpNotIn, Values: box(f.NotIn)})
	}
	return appendNullness(conds, f.IsNull, f.IsNotNull)
}

// BooleanFilter filters boolean columns.
type BooleanFilter struct {
	Eq        *bool `json:"eq"`
	Ne        *bool `json:"ne"`
	IsNull    *bool `json:"is_null"`
	IsNotNull *bool `json:"is_not_null"`
}

func (f *BooleanFilter) Kind() Kind { return KindBoolean }

func (f *BooleanFilter) Conditions() []Condition {
	if f == nil {
		return nil
	}
	var conds []Condition
	if f.Eq != nil {
		conds = append(conds, Condition{Op: OpEq, Value: *f.Eq})
	}
	if f.Ne != nil {
		conds = append(conds, Condition{Op: OpNe, Value: *f.Ne})
	}
	return appendNullness(conds, f.IsNull, f.IsNotNull)
}

// TemporalFilter filters date, time, and timestamp columns. From and To are
// inclusive range aliases: they stand in for Gte and Lte when those are
// absent, and lose to them when both are present.
type TemporalFilter struct {
	Eq        *time.Time  `json:"eq"`
	Ne        *time.Time  `json:"ne"`
	Gt        *time.Time  `json:"gt"`
	Gte       *time.Time  `json:"gte"`
	Lt        *time.Time  `json:"lt"`
	Lte       *time.Time  `json:"lte"`
	From      *time.Time  `json:"from"`
	To        *time.Time  `json:"to"`
	Between   *TimeRange  `json:"between"`
	In        []time.Time `json:"in"`
	NotIn     []time.Time `json:"not_in"`
	IsNull    *bool       `json:"is_null"`
	IsNotNull *bool       `json:"is_not_null"`
}

func (f *TemporalFilter) Kind() Kind { return KindTemporal }

func (f *TemporalFilter) Conditions() []Condition {
	if f == nil {
		return nil
	}
	gte := f.Gte
	if gte == nil {
		gte = f.From
	}
	lte := f.Lte
	if lte == nil {
		lte = f.To
	}
	var conds []Condition
	if f.Eq != nil {
		conds = append(conds, Condition{Op: OpEq, Value: *f.Eq})
	}
	if f.Ne != nil {
		conds = append(conds, Condition{Op: OpNe, Value: *f.Ne})
	}
	if f.Gt != nil {
		conds = append(conds, Condition{Op: OpGt, Value: *f.Gt})
	}
	if gte != nil {
		conds = append(conds, Condition{Op: OpGte, Value: *gte})
	}
	if f.Lt != nil {
		conds = append(conds, Condition{Op: OpLt, Value: *f.Lt})
	}
	if lte != nil {
		conds = append(conds, Condition{Op: OpLte, Value: *lte})
	}
	if f.Between != nil {
		conds = append(conds, Condition{Op: OpBetween, Low: f.Between.Low, High: f.Between.High})
	}
	if f.In != nil {
		conds = append(conds, Condition{Op: OpIn, Values: box(f.In)})
	}
	if f.NotIn != nil {
		conds = append(conds, Condition{Op: OpNotIn, Values: box(f.NotIn)})
	}
	return appendNullness(conds, f.IsNull, f.IsNotNull)
}

// EnumFilter filters enum columns by their stored string form. Use the
// EnumEq, EnumNe, EnumIn, and EnumNotIn constructors to build one from
// BaseEnum values.
type EnumFilter struct {
	Eq        *string  `json:"eq"`
	Ne        *string  `json:"ne"`
	In        []string `json:"in"`
	NotIn     []string `json:"not_in"`
	IsNull    *bool    `json:"is_null"`
	IsNotNull *bool    `json:"is_not_null"`
}

func (f *EnumFilter) Kind() Kind { return KindEnum }

func (f *EnumFilter) Conditions() []Condition {
	if f == nil {
		return nil
	}
	var conds []Condition
	if f.Eq != nil {
		conds = append(conds, Condition{Op: OpEq, Value: *f.Eq})
	}
	if f.Ne != nil {
		conds = append(conds, Condition{Op: OpNe, Value: *f.Ne})
	}
	if f.In != nil {
		conds = append(conds, Condition{Op: OpIn, Values: box(f.In)})
	}
	if f.NotIn != nil {
		conds = append(conds, Condition{Op: OpNotIn, Values: box(f.NotIn)})
	}
	return appendNullness(conds, f.IsNull, f.IsNotNull)
}

// EnumEq matches the enum column equal to v.
func EnumEq(v types.BaseEnum) *EnumFilter {
	return &EnumFilter{Eq: Ptr(v.String())}
}

// EnumNe matches the enum column different from v.
func EnumNe(v types.BaseEnum) *EnumFilter {
	return &EnumFilter{Ne: Ptr(v.String())}
}

// EnumIn matches the enum column contained in vs.
func EnumIn(vs ...types.BaseEnum) *EnumFilter {
	return &EnumFilter{In: enumNames(vs)}
}

// EnumNotIn excludes the enum values in vs.
func EnumNotIn(vs ...types.BaseEnum) *EnumFilter {
	return &EnumFilter{NotIn: enumNames(vs)}
}

func enumNames(vs []types.BaseEnum) []string {
	names := make([]string, 0, len(vs))
	for _, v := range vs {
		names = append(names, v.String())
	}
	return names
}

// IdentifierFilter filters key columns. Operand types follow the key rules:
// integers, strings, and UUIDs. A nil Eq or Ne means the operator is absent.
type IdentifierFilter struct {
	Eq        any   `json:"eq"`
	Ne        any   `json:"ne"`
	In        []any `json:"in"`
	NotIn     []any `json:"not_in"`
	IsNull    *bool `json:"is_null"`
	IsNotNull *bool `json:"is_not_null"`
}

func (f *IdentifierFilter) Kind() Kind { return KindIdentifier }

func (f *IdentifierFilter) Conditions() []Condition {
	if f == nil {
		return nil
	}
	var conds []Condition
	if f.Eq != nil {
		conds = append(conds, Condition{Op: OpEq, Value: f.Eq})
	}
	if f.Ne != nil {
		conds = append(conds, Condition{Op: OpNe, Value: f.Ne})
	}
	if f.In != nil {
		conds = append(conds, Condition{Op: OpIn, Values: box(f.In)})
	}
	if f.NotIn != nil {
		conds = append(conds, Condition{Op: OpNotIn, Values: box(f.NotIn)})
	}
	return appendNullness(conds, f.IsNull, f.IsNotNull)
}

// Validate checks every operand against the supported key kinds. The query
// layer calls this before emitting predicates; a malformed key aborts the
// whole query with a precondition error.
func (f *IdentifierFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Eq != nil {
		if err := types.ValidateKey(f.Eq); err != nil {
			return err
		}
	}
	if f.Ne != nil {
		if err := types.ValidateKey(f.Ne); err != nil {
			return err
		}
	}
	if err := types.ValidateKeys(f.In); err != nil {
		return err
	}
	return types.ValidateKeys(f.NotIn)
}

// box widens a typed slice to []any, preserving non-nil emptiness.
func box[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// appendNullness emits IS NULL and IS NOT NULL conditions for true flags.
func appendNullness(conds []Condition, isNull, isNotNull *bool) []Condition {
	if isNull != nil && *isNull {
		conds = append(conds, Condition{Op: OpIsNull})
	}
	if isNotNull != nil && *isNotNull {
		conds = append(conds, Condition{Op: OpIsNotNull})
	}
	return conds
}
