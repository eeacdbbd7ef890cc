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

	"github.com/google/uuid"
)

// ValidateKey checks that id is one of the supported primary key kinds:
// signed or unsigned integers, strings, or UUIDs. A malformed key is a
// precondition error and is never coerced.
func ValidateKey(id any) error {
	switch id.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		string, uuid.UUID:
		return nil
	case nil:
		return fmt.Errorf("%w: nil key", ErrPrecondition)
	default:
		return fmt.Errorf("%w: unsupported key type %T", ErrPrecondition, id)
	}
}

// ValidateKeys validates every id in the slice, reporting the first
// offender.
func ValidateKeys(ids []any) error {
	for _, id := range ids {
		if err := ValidateKey(id); err != nil {
			return err
		}
	}
	return nil
}
