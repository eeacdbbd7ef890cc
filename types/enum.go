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

// BaseEnum is the contract for integer-backed enumerations that appear
// in filter conditions. String returns the stable wire value compared
// against database columns, so members outside the declared range must
// return IllegalName instead of a formatted number.
type BaseEnum interface {
	// IsValid reports whether the member is one of the declared values.
	IsValid() bool
	// Number returns the backing integer, or IllegalValue when invalid.
	Number() int
	// String returns the wire value, or IllegalName when invalid.
	String() string
	// Desc returns the human readable description.
	Desc() string
	// Name returns the identifier-style name of the member.
	Name() string
}

// Sentinels returned by BaseEnum implementations for out-of-range members.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)
