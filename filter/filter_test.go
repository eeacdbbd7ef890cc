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
	"errors"
	"testing"
	"time"

	"github.com/tomoncle/sieve/types"
)

// testStatus is a minimal BaseEnum used across the package tests.
type testStatus int

const (
	statusActive testStatus = iota + 1
	statusClosed
)

func (s testStatus) IsValid() bool { return s == statusActive || s == statusClosed }
func (s testStatus) Number() int   { return int(s) }
func (s testStatus) Desc() string  { return s.Name() }
func (s testStatus) Name() string  { return s.String() }

func (s testStatus) String() string {
	switch s {
	case statusActive:
		return "active"
	case statusClosed:
		return "closed"
	default:
		return types.IllegalName
	}
}

func ops(conds []Condition) []Op {
	out := make([]Op, len(conds))
	for i, c := range conds {
		out[i] = c.Op
	}
	return out
}

func sameOps(got []Op, want ...Op) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestStringFilterEmissionOrder(t *testing.T) {
	f := &StringFilter{
		Contains:  Ptr("mid"),
		Eq:        Ptr("x"),
		In:        []string{"a", "b"},
		IsNotNull: Ptr(true),
		Ne:        Ptr("y"),
	}
	got := ops(f.Conditions())
	if !sameOps(got, OpEq, OpNe, OpIn, OpContains, OpIsNotNull) {
		t.Fatalf("wrong emission order: %v", got)
	}
}

func TestStringFilterEmptySets(t *testing.T) {
	var absent *StringFilter
	if conds := absent.Conditions(); conds != nil {
		t.Fatalf("nil filter emitted %v", conds)
	}

	empty := &StringFilter{In: []string{}}
	conds := empty.Conditions()
	if len(conds) != 1 || conds[0].Op != OpIn {
		t.Fatalf("empty In must emit one OpIn condition, got %v", conds)
	}
	if conds[0].Values == nil || len(conds[0].Values) != 0 {
		t.Fatalf("empty In must carry a non-nil empty operand, got %#v", conds[0].Values)
	}

	omitted := &StringFilter{Eq: Ptr("x")}
	for _, c := range omitted.Conditions() {
		if c.Op == OpIn {
			t.Fatal("a nil In slice must not emit a condition")
		}
	}
}

func TestStringFilterNoConditions(t *testing.T) {
	if conds := (&StringFilter{}).Conditions(); len(conds) != 0 {
		t.Fatalf("zero filter emitted %v", conds)
	}
	flagsOff := &StringFilter{IsNull: Ptr(false), IsNotNull: Ptr(false)}
	if conds := flagsOff.Conditions(); len(conds) != 0 {
		t.Fatalf("false nullness flags emitted %v", conds)
	}
}

func TestNumberFilterConditions(t *testing.T) {
	f := &NumberFilter[int]{
		Gte:     Ptr(18),
		Lt:      Ptr(65),
		Between: &Range[int]{Low: 20, High: 30},
		NotIn:   []int{25},
	}
	conds := f.Conditions()
	if !sameOps(ops(conds), OpGte, OpLt, OpBetween, OpNotIn) {
		t.Fatalf("wrong emission order: %v", ops(conds))
	}
	for _, c := range conds {
		if c.Op == OpBetween && (c.Low != 20 || c.High != 30) {
			t.Fatalf("between bounds wrong: low=%v high=%v", c.Low, c.High)
		}
	}

	float := &NumberFilter[float64]{Eq: Ptr(1.5)}
	if got := float.Conditions(); len(got) != 1 || got[0].Value != 1.5 {
		t.Fatalf("float filter emitted %v", got)
	}
}

func TestBooleanFilterConditions(t *testing.T) {
	f := &BooleanFilter{Eq: Ptr(false), IsNull: Ptr(true)}
	conds := f.Conditions()
	if !sameOps(ops(conds), OpEq, OpIsNull) {
		t.Fatalf("wrong emission order: %v", ops(conds))
	}
	if conds[0].Value != false {
		t.Fatalf("eq operand must survive as false, got %v", conds[0].Value)
	}
}

func TestTemporalFromToAliases(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	aliased := &TemporalFilter{From: &start, To: &end}
	conds := aliased.Conditions()
	if !sameOps(ops(conds), OpGte, OpLte) {
		t.Fatalf("aliases must emit gte and lte, got %v", ops(conds))
	}
	if conds[0].Value != start || conds[1].Value != end {
		t.Fatalf("alias operands wrong: %v", conds)
	}

	explicit := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mixed := &TemporalFilter{From: &start, Gte: &explicit}
	conds = mixed.Conditions()
	if len(conds) != 1 || conds[0].Op != OpGte || conds[0].Value != explicit {
		t.Fatalf("an explicit gte must win over from, got %v", conds)
	}
}

func TestEnumFilterConstructors(t *testing.T) {
	eq := EnumEq(statusActive)
	conds := eq.Conditions()
	if len(conds) != 1 || conds[0].Op != OpEq || conds[0].Value != "active" {
		t.Fatalf("EnumEq emitted %v", conds)
	}

	in := EnumIn(statusActive, statusClosed)
	conds = in.Conditions()
	if len(conds) != 1 || conds[0].Op != OpIn {
		t.Fatalf("EnumIn emitted %v", conds)
	}
	if len(conds[0].Values) != 2 || conds[0].Values[0] != "active" || conds[0].Values[1] != "closed" {
		t.Fatalf("EnumIn operands wrong: %v", conds[0].Values)
	}

	notIn := EnumNotIn()
	conds = notIn.Conditions()
	if len(conds) != 1 || conds[0].Op != OpNotIn || len(conds[0].Values) != 0 || conds[0].Values == nil {
		t.Fatalf("empty EnumNotIn must keep a non-nil empty set, got %v", conds)
	}
}

func TestIdentifierFilterValidate(t *testing.T) {
	ok := &IdentifierFilter{Eq: int64(7), In: []any{1, "a"}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid keys rejected: %v", err)
	}

	bad := &IdentifierFilter{Eq: 3.14}
	err := bad.Validate()
	if err == nil {
		t.Fatal("a float key must be rejected")
	}
	if !errors.Is(err, types.ErrPrecondition) {
		t.Fatalf("validation error has wrong chain: %v", err)
	}

	badSet := &IdentifierFilter{In: []any{1, true}}
	if err := badSet.Validate(); err == nil {
		t.Fatal("a bool key inside In must be rejected")
	}
}

func TestIdentifierFilterEmptyIn(t *testing.T) {
	f := &IdentifierFilter{In: []any{}}
	conds := f.Conditions()
	if len(conds) != 1 || conds[0].Op != OpIn || conds[0].Values == nil || len(conds[0].Values) != 0 {
		t.Fatalf("typed empty In lost its deliberate emptiness: %v", conds)
	}
}

func TestRangeUnmarshalForms(t *testing.T) {
	var fromArray Range[int]
	if err := json.Unmarshal([]byte(`[1, 10]`), &fromArray); err != nil {
		t.Fatalf("array form error: %v", err)
	}
	if fromArray.Low != 1 || fromArray.High != 10 {
		t.Fatalf("array form decoded as %+v", fromArray)
	}

	var fromObject Range[int]
	if err := json.Unmarshal([]byte(`{"low": 2, "high": 20}`), &fromObject); err != nil {
		t.Fatalf("object form error: %v", err)
	}
	if fromObject.Low != 2 || fromObject.High != 20 {
		t.Fatalf("object form decoded as %+v", fromObject)
	}

	var tr TimeRange
	if err := json.Unmarshal([]byte(`["2024-01-01T00:00:00Z", "2024-12-31T00:00:00Z"]`), &tr); err != nil {
		t.Fatalf("time array form error: %v", err)
	}
	if tr.Low.Year() != 2024 || tr.High.Month() != time.December {
		t.Fatalf("time range decoded as %+v", tr)
	}
}

func TestFilterJSONDecode(t *testing.T) {
	var f StringFilter
	if err := json.Unmarshal([]byte(`{"eq": "go", "in": []}`), &f); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if f.Eq == nil || *f.Eq != "go" {
		t.Fatalf("eq decoded as %v", f.Eq)
	}
	if f.In == nil || len(f.In) != 0 {
		t.Fatalf("an explicit empty in must stay non-nil, got %#v", f.In)
	}
	if f.NotIn != nil {
		t.Fatal("an absent not_in must stay nil")
	}
}

func TestOpNames(t *testing.T) {
	pairs := map[Op]string{
		OpEq:         "eq",
		OpNotIn:      "not_in",
		OpStartsWith: "starts_with",
		OpIsNotNull:  "is_not_null",
	}
	for op, want := range pairs {
		if op.String() != want {
			t.Fatalf("%d.String() = %q, want %q", op, op.String(), want)
		}
	}
}
