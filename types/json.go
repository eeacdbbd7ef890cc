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
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap maps a JSON object column onto a Go map. A nil map stores
// SQL NULL; scanning NULL yields an empty, non-nil map.
type JSONMap map[string]interface{}

// JSONSlice maps a JSON array column onto a slice of objects.
type JSONSlice []JSONMap

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src interface{}) error {
	raw, err := jsonColumnBytes(src)
	if err != nil {
		return err
	}
	if raw == nil {
		*m = make(JSONMap)
		return nil
	}
	return json.Unmarshal(raw, m)
}

func (s JSONSlice) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *JSONSlice) Scan(src interface{}) error {
	raw, err := jsonColumnBytes(src)
	if err != nil {
		return err
	}
	if raw == nil {
		*s = make(JSONSlice, 0)
		return nil
	}
	return json.Unmarshal(raw, s)
}

// jsonColumnBytes normalizes the driver value of a JSON column. Text
// columns come back as string from some drivers and as []byte from
// others, so both are accepted.
func jsonColumnBytes(src interface{}) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported json column type %T", src)
	}
}
