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

import "testing"

func TestJSONMapScanDriverShapes(t *testing.T) {
	var fromBytes JSONMap
	if err := fromBytes.Scan([]byte(`{"tier": "gold", "seats": 3}`)); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if fromBytes["tier"] != "gold" || fromBytes["seats"] != float64(3) {
		t.Fatalf("scanned map = %v", fromBytes)
	}

	// Some drivers hand text columns back as string.
	var fromString JSONMap
	if err := fromString.Scan(`{"tier": "silver"}`); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if fromString["tier"] != "silver" {
		t.Fatalf("scanned map = %v", fromString)
	}

	var fromNull JSONMap
	if err := fromNull.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if fromNull == nil || len(fromNull) != 0 {
		t.Fatalf("NULL must scan to an empty map, got %v", fromNull)
	}

	var bad JSONMap
	if err := bad.Scan(42); err == nil {
		t.Fatal("scanning an int must fail")
	}
}

func TestJSONMapValueNullability(t *testing.T) {
	var unset JSONMap
	v, err := unset.Value()
	if err != nil || v != nil {
		t.Fatalf("nil map value = (%v, %v), want (nil, nil)", v, err)
	}

	set := JSONMap{"k": "v"}
	v, err = set.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if string(v.([]byte)) != `{"k":"v"}` {
		t.Fatalf("value = %s", v)
	}
}

func TestJSONSliceRoundTrip(t *testing.T) {
	var s JSONSlice
	if err := s.Scan(`[{"a": 1}, {"b": 2}]`); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(s) != 2 || s[1]["b"] != float64(2) {
		t.Fatalf("slice = %v", s)
	}

	var empty JSONSlice
	if err := empty.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("NULL must scan to an empty slice, got %v", empty)
	}
}
