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
	"bytes"
	"encoding/json"
)

var jsonNull = []byte("null")

// Optional is a three-state update value: unset (the zero value), explicit
// null, or a concrete value. It distinguishes "leave the column alone" from
// "set the column to NULL", which a plain pointer cannot express.
type Optional[T any] struct {
	value   T
	present bool
	null    bool
}

// Set returns an Optional holding a concrete value.
func Set[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// Null returns an Optional representing an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{present: true, null: true}
}

// Unset returns the zero Optional. A field left at this state does not
// participate in updates.
func Unset[T any]() Optional[T] {
	return Optional[T]{}
}

// IsSet reports whether the field was provided at all, as a value or as an
// explicit null.
func (o Optional[T]) IsSet() bool {
	return o.present
}

// IsNull reports whether the field was explicitly set to null.
func (o Optional[T]) IsNull() bool {
	return o.present && o.null
}

// IsZero reports whether the field is unset, so encoding/json's omitzero
// option drops it from marshaled output.
func (o Optional[T]) IsZero() bool {
	return !o.present
}

// Get returns the concrete value and true when one is present. Unset and
// null states both return the zero value and false.
func (o Optional[T]) Get() (T, bool) {
	if !o.present || o.null {
		var zero T
		return zero, false
	}
	return o.value, true
}

// Interface returns the boxed value, or nil for unset and null states. The
// bool mirrors Get.
func (o Optional[T]) Interface() (any, bool) {
	if v, ok := o.Get(); ok {
		return v, true
	}
	return nil, false
}

// UnmarshalJSON only runs for keys present in the payload, so absent fields
// keep the zero (unset) state and a literal null becomes an explicit null.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.present = true
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		var zero T
		o.value = zero
		o.null = true
		return nil
	}
	o.null = false
	return json.Unmarshal(data, &o.value)
}

// MarshalJSON renders unset and null states as a JSON null. Pair the field
// with the omitzero tag option to keep unset fields out of the output.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.present || o.null {
		return jsonNull, nil
	}
	return json.Marshal(o.value)
}
