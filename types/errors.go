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
	"errors"
	"fmt"
)

// ErrPrecondition marks caller contract violations: invalid pagination
// arguments, malformed keys, unknown field names. These surface immediately
// and are never retried. Match with errors.Is.
var ErrPrecondition = errors.New("precondition violated")

// ErrUnknownField reports a filter, sort, or update field that has no
// corresponding column. It is a precondition error.
var ErrUnknownField = fmt.Errorf("%w: unknown field", ErrPrecondition)
