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
	"encoding/json"
	"errors"
	"testing"
)

func TestOptionalStates(t *testing.T) {
	set := Set("hello")
	if !set.IsSet() || set.IsNull() || set.IsZero() {
		t.Fatalf("Set value reported wrong state: set=%v null=%v zero=%v", set.IsSet(), set.IsNull(), set.IsZero())
	}
	if v, ok := set.Get(); !ok || v != "hello" {
		t.Fatalf("Get returned (%q, %v), want (hello, true)", v, ok)
	}

	null := Null[string]()
	if !null.IsSet() || !null.IsNull() {
		t.Fatalf("Null value reported wrong state: set=%v null=%v", null.IsSet(), null.IsNull())
	}
	if _, ok := null.Get(); ok {
		t.Fatal("Get on a null value must report absence")
	}
	if v, ok := null.Interface(); ok || v != nil {
		t.Fatalf("Interface on a null value returned (%v, %v)", v, ok)
	}

	unset := Unset[string]()
	if unset.IsSet() || unset.IsNull() || !unset.IsZero() {
		t.Fatalf("Unset value reported wrong state: set=%v null=%v zero=%v", unset.IsSet(), unset.IsNull(), unset.IsZero())
	}

	var zero Optional[int]
	if zero.IsSet() || !zero.IsZero() {
		t.Fatal("zero Optional must behave as unset")
	}
}

type profilePatch struct {
	Name Optional[string] `json:"name,omitzero"`
	Bio  Optional[string] `json:"bio,omitzero"`
	Age  Optional[int]    `json:"age,omitzero"`
}

func (p *profilePatch) Assignments() map[string]AnyOptional {
	return map[string]AnyOptional{
		"name": p.Name,
		"bio":  p.Bio,
		"age":  p.Age,
	}
}

func TestOptionalJSONRoundTrip(t *testing.T) {
	var p profilePatch
	payload := []byte(`{"name":"alice","bio":null}`)
	if err := json.Unmarshal(payload, &p); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if v, ok := p.Name.Get(); !ok || v != "alice" {
		t.Fatalf("name decoded as (%q, %v)", v, ok)
	}
	if !p.Bio.IsNull() {
		t.Fatal("a literal null must decode as an explicit null")
	}
	if p.Age.IsSet() {
		t.Fatal("an absent key must stay unset")
	}

	out, err := json.Marshal(&p)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(out) != `{"name":"alice","bio":null}` {
		t.Fatalf("marshal produced %s", out)
	}
}

func TestResolveAssignments(t *testing.T) {
	p := &profilePatch{
		Name: Set("alice"),
		Bio:  Null[string](),
	}

	values := ResolveAssignments(p, false)
	if len(values) != 2 {
		t.Fatalf("expected 2 assignments, got %d: %v", len(values), values)
	}
	if values["name"] != "alice" {
		t.Fatalf("name resolved to %v", values["name"])
	}
	if v, ok := values["bio"]; !ok || v != nil {
		t.Fatalf("explicit null must resolve to nil, got (%v, %v)", v, ok)
	}
	if _, ok := values["age"]; ok {
		t.Fatal("unset field leaked into assignments")
	}

	withUnset := ResolveAssignments(p, true)
	if v, ok := withUnset["age"]; !ok || v != nil {
		t.Fatalf("includeUnset must write unset fields as nil, got (%v, %v)", v, ok)
	}
}

func TestResolveFields(t *testing.T) {
	p := &profilePatch{Name: Set("bob")}

	values, err := ResolveFields(p, []string{"name", "bio"})
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if values["name"] != "bob" {
		t.Fatalf("name resolved to %v", values["name"])
	}
	if v, ok := values["bio"]; !ok || v != nil {
		t.Fatalf("an unset named field must read as nil, got (%v, %v)", v, ok)
	}

	if _, err := ResolveFields(p, []string{"nickname"}); err == nil {
		t.Fatal("unknown field must be rejected")
	} else if !errors.Is(err, ErrUnknownField) || !errors.Is(err, ErrPrecondition) {
		t.Fatalf("unknown field error has wrong chain: %v", err)
	}
}

func TestSortedColumns(t *testing.T) {
	columns := SortedColumns(map[string]any{"c": 1, "a": 2, "b": 3})
	if len(columns) != 3 || columns[0] != "a" || columns[1] != "b" || columns[2] != "c" {
		t.Fatalf("columns not sorted: %v", columns)
	}
}
