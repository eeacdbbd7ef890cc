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
)

// Raw is an untyped operator payload keyed by operator name, as decoded
// from JSON or assembled by the Builder. Its kind is resolved through the
// detector on every use; an undetermined payload yields no conditions and
// is skipped rather than rejected.
type Raw map[string]any

func (r Raw) Kind() Kind {
	_, kind, _ := Detect(r)
	return kind
}

func (r Raw) Conditions() []Condition {
	f, _, ok := Detect(r)
	if !ok {
		return nil
	}
	return f.Conditions()
}

// Resolve returns the typed filter the payload detects as, when
// determinable.
func (r Raw) Resolve() (Filter, bool) {
	f, _, ok := Detect(r)
	return f, ok
}

// stringOnlyKeys are operators only text columns support; their presence
// alone decides string detection, regardless of operand values.
var stringOnlyKeys = []string{"like", "ilike", "contains", "icontains", "starts_with", "ends_with"}

// comparisonKeys are the ordering operators plus the temporal range
// aliases.
var comparisonKeys = []string{"gt", "gte", "lt", "lte", "between", "from", "to"}

// temporalLayouts are the textual layouts the detector accepts as
// time-shaped, widest first.
var temporalLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"15:04:05",
}

// Detect classifies an untyped operator payload into a concrete filter.
//
// Classification runs in priority order: a string-only operator key wins
// outright; otherwise the first non-null comparison operand picks temporal
// or numeric by its shape; otherwise eq or ne classify by operand type;
// otherwise the first element of a non-empty in or not_in set does. The
// returned bool is false for undetermined payloads: empty maps,
// nullness-only payloads, and payloads whose operands do not fit any
// variant. Detection depends only on the payload, never on column metadata.
func Detect(payload map[string]any) (Filter, Kind, bool) {
	if len(payload) == 0 {
		return nil, KindUndetermined, false
	}
	if hasAnyKey(payload, stringOnlyKeys) {
		return decodeAs(KindString, payload)
	}
	if v, ok := firstComparisonValue(payload); ok {
		if isTemporalValue(v) {
			return decodeAs(KindTemporal, payload)
		}
		return decodeAs(KindNumber, payload)
	}
	if v, ok := firstScalar(payload, "eq", "ne"); ok {
		return decodeAs(classifyValue(v), payload)
	}
	if v, ok := firstSetElement(payload, "in", "not_in"); ok {
		return decodeAs(classifyValue(v), payload)
	}
	return nil, KindUndetermined, false
}

func decodeAs(kind Kind, payload map[string]any) (Filter, Kind, bool) {
	var f Filter
	switch kind {
	case KindString:
		f = decodeString(payload)
	case KindNumber:
		f = decodeNumber(payload)
	case KindBoolean:
		f = decodeBoolean(payload)
	case KindTemporal:
		f = decodeTemporal(payload)
	default:
		return nil, KindUndetermined, false
	}
	if len(f.Conditions()) == 0 {
		return nil, KindUndetermined, false
	}
	return f, kind, true
}

func hasAnyKey(payload map[string]any, keys []string) bool {
	for _, key := range keys {
		if _, ok := payload[key]; ok {
			return true
		}
	}
	return false
}

// firstComparisonValue walks the comparison keys in priority order and
// returns the first non-null operand; for between it inspects the first
// element of the pair.
func firstComparisonValue(payload map[string]any) (any, bool) {
	for _, key := range comparisonKeys {
		v, ok := payload[key]
		if !ok || v == nil {
			continue
		}
		if key == "between" {
			if pair, ok := anySlice(v); ok && len(pair) > 0 && pair[0] != nil {
				return pair[0], true
			}
			continue
		}
		return v, true
	}
	return nil, false
}

func firstScalar(payload map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := payload[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func firstSetElement(payload map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		v, ok := payload[key]
		if !ok || v == nil {
			continue
		}
		if items, ok := anySlice(v); ok && len(items) > 0 && items[0] != nil {
			return items[0], true
		}
	}
	return nil, false
}

func classifyValue(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBoolean
	case time.Time:
		return KindTemporal
	case string:
		return KindString
	}
	if _, ok := numericValue(v); ok {
		return KindNumber
	}
	return KindUndetermined
}

func isTemporalValue(v any) bool {
	switch t := v.(type) {
	case time.Time:
		return true
	case string:
		_, ok := parseTemporal(t)
		return ok
	}
	return false
}

func parseTemporal(s string) (time.Time, bool) {
	for _, layout := range temporalLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// anySlice widens the slice shapes a payload can carry to []any.
func anySlice(v any) ([]any, bool) {
	switch vv := v.(type) {
	case []any:
		return vv, true
	case []string:
		return box(vv), true
	case []int:
		return box(vv), true
	case []int64:
		return box(vv), true
	case []float64:
		return box(vv), true
	case []time.Time:
		return box(vv), true
	case []bool:
		return box(vv), true
	}
	return nil, false
}

// numericValue normalizes every numeric shape a payload can carry,
// including json.Number, to float64.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func decodeString(payload map[string]any) Filter {
	return &StringFilter{
		Eq:         stringOperand(payload, "eq"),
		Ne:         stringOperand(payload, "ne"),
		In:         stringSet(payload, "in"),
		NotIn:      stringSet(payload, "not_in"),
		Like:       stringOperand(payload, "like"),
		ILike:      stringOperand(payload, "ilike"),
		Contains:   stringOperand(payload, "contains"),
		IContains:  stringOperand(payload, "icontains"),
		StartsWith: stringOperand(payload, "starts_with"),
		EndsWith:   stringOperand(payload, "ends_with"),
		IsNull:     boolOperand(payload, "is_null"),
		IsNotNull:  boolOperand(payload, "is_not_null"),
	}
}

func decodeNumber(payload map[string]any) Filter {
	f := &NumberFilter[float64]{
		Eq:        floatOperand(payload, "eq"),
		Ne:        floatOperand(payload, "ne"),
		Gt:        floatOperand(payload, "gt"),
		Gte:       floatOperand(payload, "gte"),
		Lt:        floatOperand(payload, "lt"),
		Lte:       floatOperand(payload, "lte"),
		In:        floatSet(payload, "in"),
		NotIn:     floatSet(payload, "not_in"),
		IsNull:    boolOperand(payload, "is_null"),
		IsNotNull: boolOperand(payload, "is_not_null"),
	}
	if lo, hi, ok := floatPair(payload, "between"); ok {
		f.Between = &Range[float64]{Low: lo, High: hi}
	}
	return f
}

func decodeBoolean(payload map[string]any) Filter {
	return &BooleanFilter{
		Eq:        boolOperand(payload, "eq"),
		Ne:        boolOperand(payload, "ne"),
		IsNull:    boolOperand(payload, "is_null"),
		IsNotNull: boolOperand(payload, "is_not_null"),
	}
}

func decodeTemporal(payload map[string]any) Filter {
	f := &TemporalFilter{
		Eq:        timeOperand(payload, "eq"),
		Ne:        timeOperand(payload, "ne"),
		Gt:        timeOperand(payload, "gt"),
		Gte:       timeOperand(payload, "gte"),
		Lt:        timeOperand(payload, "lt"),
		Lte:       timeOperand(payload, "lte"),
		From:      timeOperand(payload, "from"),
		To:        timeOperand(payload, "to"),
		In:        timeSet(payload, "in"),
		NotIn:     timeSet(payload, "not_in"),
		IsNull:    boolOperand(payload, "is_null"),
		IsNotNull: boolOperand(payload, "is_not_null"),
	}
	if lo, hi, ok := timePair(payload, "between"); ok {
		f.Between = &TimeRange{Low: lo, High: hi}
	}
	return f
}

func stringOperand(payload map[string]any, key string) *string {
	if s, ok := payload[key].(string); ok {
		return &s
	}
	return nil
}

func boolOperand(payload map[string]any, key string) *bool {
	if b, ok := payload[key].(bool); ok {
		return &b
	}
	return nil
}

func floatOperand(payload map[string]any, key string) *float64 {
	v, ok := payload[key]
	if !ok || v == nil {
		return nil
	}
	if n, ok := numericValue(v); ok {
		return &n
	}
	return nil
}

func timeOperand(payload map[string]any, key string) *time.Time {
	v, ok := payload[key]
	if !ok || v == nil {
		return nil
	}
	return timeValue(v)
}

func timeValue(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case string:
		if parsed, ok := parseTemporal(t); ok {
			return &parsed
		}
	}
	return nil
}

// stringSet decodes a set operand, keeping non-nil emptiness and dropping
// elements of the wrong type.
func stringSet(payload map[string]any, key string) []string {
	items, ok := setOperand(payload, key)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func floatSet(payload map[string]any, key string) []float64 {
	items, ok := setOperand(payload, key)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		if n, ok := numericValue(item); ok {
			out = append(out, n)
		}
	}
	return out
}

func timeSet(payload map[string]any, key string) []time.Time {
	items, ok := setOperand(payload, key)
	if !ok {
		return nil
	}
	out := make([]time.Time, 0, len(items))
	for _, item := range items {
		if t := timeValue(item); t != nil {
			out = append(out, *t)
		}
	}
	return out
}

func setOperand(payload map[string]any, key string) ([]any, bool) {
	v, ok := payload[key]
	if !ok || v == nil {
		return nil, false
	}
	return anySlice(v)
}

func floatPair(payload map[string]any, key string) (float64, float64, bool) {
	items, ok := setOperand(payload, key)
	if !ok || len(items) != 2 {
		return 0, 0, false
	}
	lo, okLo := numericValue(items[0])
	hi, okHi := numericValue(items[1])
	if !okLo || !okHi {
		return 0, 0, false
	}
	return lo, hi, true
}

func timePair(payload map[string]any, key string) (time.Time, time.Time, bool) {
	items, ok := setOperand(payload, key)
	if !ok || len(items) != 2 {
		return time.Time{}, time.Time{}, false
	}
	lo := timeValue(items[0])
	hi := timeValue(items[1])
	if lo == nil || hi == nil {
		return time.Time{}, time.Time{}, false
	}
	return *lo, *hi, true
}
