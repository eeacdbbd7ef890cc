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

import "testing"

func TestBuilderMergesSameField(t *testing.T) {
	p := NewBuilder().Gte("age", 18).Lt("age", 65).Params()
	fields := p.Fields()
	if len(fields) != 1 || fields[0].Name != "age" {
		t.Fatalf("expected one merged field, got %v", fields)
	}
	if fields[0].Filter.Kind() != KindNumber {
		t.Fatalf("merged payload detected as %v", fields[0].Filter.Kind())
	}
	got := ops(fields[0].Filter.Conditions())
	if !sameOps(got, OpGte, OpLt) {
		t.Fatalf("merged conditions = %v", got)
	}
}

func TestBuilderSharesPayloadWithParams(t *testing.T) {
	b := NewBuilder().Gte("age", 18)
	p := b.Params()
	b.Lt("age", 65)
	got := ops(p.Fields()[0].Filter.Conditions())
	if !sameOps(got, OpGte, OpLt) {
		t.Fatalf("later operators must land in the attached payload, got %v", got)
	}
}

func TestBuilderFieldBypassesDetection(t *testing.T) {
	p := NewBuilder().
		Contains("name", "x").
		Field("name", &StringFilter{Eq: Ptr("exact")}).
		Params()
	fields := p.Fields()
	if len(fields) != 1 {
		t.Fatalf("expected one field, got %v", fields)
	}
	conds := fields[0].Filter.Conditions()
	if len(conds) != 1 || conds[0].Op != OpEq || conds[0].Value != "exact" {
		t.Fatalf("explicit filter must replace accumulated operators, got %v", conds)
	}
}

func TestBuilderNormalizesEnums(t *testing.T) {
	p := NewBuilder().Eq("status", statusActive).Params()
	f := p.Fields()[0].Filter
	if f.Kind() != KindString {
		t.Fatalf("enum payload detected as %v, want string", f.Kind())
	}
	if conds := f.Conditions(); conds[0].Value != "active" {
		t.Fatalf("enum operand = %v, want its stored name", conds[0].Value)
	}

	p = NewBuilder().In("status", statusActive, statusClosed).Params()
	conds := p.Fields()[0].Filter.Conditions()
	if len(conds) != 1 || len(conds[0].Values) != 2 {
		t.Fatalf("enum set decoded as %v", conds)
	}
	if conds[0].Values[0] != "active" || conds[0].Values[1] != "closed" {
		t.Fatalf("enum set operands = %v", conds[0].Values)
	}
}

func TestBuilderEmptyInStaysUndetermined(t *testing.T) {
	p := NewBuilder().In("flag").Params()
	f := p.Fields()[0].Filter
	if f.Kind() != KindUndetermined {
		t.Fatalf("untyped empty in resolved to %v", f.Kind())
	}
	if conds := f.Conditions(); len(conds) != 0 {
		t.Fatalf("untyped empty in emitted %v", conds)
	}
}

func TestBuilderControls(t *testing.T) {
	p := NewBuilder().
		Limit(20).
		Offset(40).
		SortBy(SortDesc("created_at").WithNulls(NullsLast), SortAsc("id")).
		Params()
	ctrl := p.Controls()
	if ctrl.Limit == nil || *ctrl.Limit != 20 {
		t.Fatalf("limit = %v", ctrl.Limit)
	}
	if ctrl.Offset == nil || *ctrl.Offset != 40 {
		t.Fatalf("offset = %v", ctrl.Offset)
	}
	if len(ctrl.Sort) != 2 || ctrl.Sort[0].Field != "created_at" || ctrl.Sort[0].Dir != Desc {
		t.Fatalf("sort = %v", ctrl.Sort)
	}
	if ctrl.Sort[0].Nulls != NullsLast || ctrl.Sort[1].Field != "id" {
		t.Fatalf("sort = %v", ctrl.Sort)
	}
}

func TestParamsSetKeepsPosition(t *testing.T) {
	p := NewParams().
		Set("a", &StringFilter{Eq: Ptr("1")}).
		Set("b", &StringFilter{Eq: Ptr("2")}).
		Set("a", &StringFilter{Eq: Ptr("3")})
	fields := p.Fields()
	if len(fields) != 2 || fields[0].Name != "a" || fields[1].Name != "b" {
		t.Fatalf("replacement must keep the original position, got %v", fields)
	}
	if conds := fields[0].Filter.Conditions(); conds[0].Value != "3" {
		t.Fatalf("replacement did not take, got %v", conds)
	}
}

func TestParamsCloneIsIndependent(t *testing.T) {
	p := NewParams().Set("a", &StringFilter{Eq: Ptr("x")}).SetLimit(10)
	clone := p.Clone()
	clone.SetLimit(99).SetOffset(5).Set("b", &StringFilter{Eq: Ptr("y")})

	if got := p.Controls(); *got.Limit != 10 || got.Offset != nil {
		t.Fatalf("original controls mutated: %+v", got)
	}
	if len(p.Fields()) != 1 {
		t.Fatalf("original fields mutated: %v", p.Fields())
	}
	if got := clone.Controls(); *got.Limit != 99 || *got.Offset != 5 {
		t.Fatalf("clone controls wrong: %+v", got)
	}
}

func TestParamsControlsCopiesSort(t *testing.T) {
	p := NewParams().OrderBy(SortAsc("id"))
	ctrl := p.Controls()
	ctrl.Sort[0] = SortDesc("other")
	if got := p.Controls().Sort[0]; got.Field != "id" || got.Dir != Asc {
		t.Fatalf("internal sort slice leaked: %+v", got)
	}
}

func TestParamsFilterLifecycle(t *testing.T) {
	p := NewParams()
	if p.HasFilters() {
		t.Fatal("empty params reports filters")
	}
	p.Set("skip", Raw{})
	if p.HasFilters() {
		t.Fatal("an undetermined payload counts as no filter")
	}
	p.Set("name", &StringFilter{Eq: Ptr("x")})
	if !p.HasFilters() {
		t.Fatal("active filter not reported")
	}
	p.SetLimit(5)
	p.ClearFilters()
	if p.HasFilters() {
		t.Fatal("filters survive ClearFilters")
	}
	if ctrl := p.Controls(); ctrl.Limit == nil || *ctrl.Limit != 5 {
		t.Fatal("controls must survive ClearFilters")
	}
}
