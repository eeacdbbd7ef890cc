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

import "github.com/tomoncle/sieve/types"

// Builder assembles a Params through chained operator calls. Repeated calls
// on the same field merge into one payload, so Gte("age", 18).Lt("age", 65)
// yields a single numeric filter with both bounds. Each payload resolves
// through the detector when the schema is applied.
type Builder struct {
	params *Params
	raw    map[string]Raw
}

// NewBuilder returns an empty filter builder.
func NewBuilder() *Builder {
	return &Builder{params: NewParams(), raw: make(map[string]Raw)}
}

// op records one operator on the field's payload. The payload map is shared
// with the schema, so later operators land in the already attached filter.
func (b *Builder) op(field, key string, v any) *Builder {
	r, ok := b.raw[field]
	if !ok {
		r = Raw{}
		b.raw[field] = r
		b.params.Set(field, r)
	}
	r[key] = normalizeEnum(v)
	return b
}

// normalizeEnum maps enum arguments to their stored string form; other
// values pass through.
func normalizeEnum(v any) any {
	if e, ok := v.(types.BaseEnum); ok {
		return e.String()
	}
	return v
}

func normalizeEnums(vs []any) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = normalizeEnum(v)
	}
	return out
}

// Eq matches field equal to v.
func (b *Builder) Eq(field string, v any) *Builder { return b.op(field, "eq", v) }

// Ne matches field different from v.
func (b *Builder) Ne(field string, v any) *Builder { return b.op(field, "ne", v) }

// Gt matches field strictly greater than v.
func (b *Builder) Gt(field string, v any) *Builder { return b.op(field, "gt", v) }

// Gte matches field greater than or equal to v.
func (b *Builder) Gte(field string, v any) *Builder { return b.op(field, "gte", v) }

// Lt matches field strictly less than v.
func (b *Builder) Lt(field string, v any) *Builder { return b.op(field, "lt", v) }

// Lte matches field less than or equal to v.
func (b *Builder) Lte(field string, v any) *Builder { return b.op(field, "lte", v) }

// Between matches lo <= field <= hi, bounds inclusive.
func (b *Builder) Between(field string, lo, hi any) *Builder {
	return b.op(field, "between", []any{normalizeEnum(lo), normalizeEnum(hi)})
}

// In matches field contained in vs. An empty set matches no rows.
func (b *Builder) In(field string, vs ...any) *Builder {
	return b.op(field, "in", normalizeEnums(vs))
}

// NotIn excludes field values contained in vs. An empty set excludes
// nothing and adds no predicate.
func (b *Builder) NotIn(field string, vs ...any) *Builder {
	return b.op(field, "not_in", normalizeEnums(vs))
}

// Like matches the pattern case-sensitively; the caller supplies wildcards.
func (b *Builder) Like(field, pattern string) *Builder {
	return b.op(field, "like", pattern)
}

// ILike matches the pattern case-insensitively.
func (b *Builder) ILike(field, pattern string) *Builder {
	return b.op(field, "ilike", pattern)
}

// Contains matches fields containing v as a substring.
func (b *Builder) Contains(field, v string) *Builder {
	return b.op(field, "contains", v)
}

// IContains matches substrings case-insensitively.
func (b *Builder) IContains(field, v string) *Builder {
	return b.op(field, "icontains", v)
}

// StartsWith matches fields beginning with v.
func (b *Builder) StartsWith(field, v string) *Builder {
	return b.op(field, "starts_with", v)
}

// EndsWith matches fields ending with v.
func (b *Builder) EndsWith(field, v string) *Builder {
	return b.op(field, "ends_with", v)
}

// IsNull matches rows where the field is NULL.
func (b *Builder) IsNull(field string) *Builder {
	return b.op(field, "is_null", true)
}

// IsNotNull matches rows where the field is not NULL.
func (b *Builder) IsNotNull(field string) *Builder {
	return b.op(field, "is_not_null", true)
}

// Field attaches an explicit typed filter, bypassing detection. It replaces
// any operators accumulated for the field so far.
func (b *Builder) Field(name string, f Filter) *Builder {
	delete(b.raw, name)
	b.params.Set(name, f)
	return b
}

// Limit caps the number of rows returned.
func (b *Builder) Limit(n int) *Builder {
	b.params.SetLimit(n)
	return b
}

// Offset skips rows before returning results.
func (b *Builder) Offset(n int) *Builder {
	b.params.SetOffset(n)
	return b
}

// SortBy appends sort descriptors in priority order.
func (b *Builder) SortBy(sorts ...Sort) *Builder {
	b.params.OrderBy(sorts...)
	return b
}

// Params returns the accumulated schema.
func (b *Builder) Params() *Params {
	return b.params
}
