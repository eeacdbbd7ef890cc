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

// Field pairs a logical field name with its filter value. A nil Filter
// means the field carries no constraint.
type Field struct {
	Name   string
	Filter Filter
}

// Controls carries the non-field attributes of a filter schema. Nil Limit
// and Offset mean unconstrained.
type Controls struct {
	Limit  *int
	Offset *int
	Sort   []Sort
}

// Schema is the contract every filter payload satisfies: an ordered list of
// per-field filters plus pagination and ordering controls. All attributes
// are always present and optional by value, so consumers never probe for
// their existence.
type Schema interface {
	Fields() []Field
	Controls() Controls
}

// Params is the general-purpose Schema implementation. Fields keep their
// insertion order. The zero value is ready to use.
type Params struct {
	fields []Field
	ctrl   Controls
}

var _ Schema = (*Params)(nil)

// NewParams returns an empty filter schema.
func NewParams() *Params {
	return &Params{}
}

// Set attaches a filter to a field, replacing any previous filter for the
// same field while keeping its original position.
func (p *Params) Set(name string, f Filter) *Params {
	for i := range p.fields {
		if p.fields[i].Name == name {
			p.fields[i].Filter = f
			return p
		}
	}
	p.fields = append(p.fields, Field{Name: name, Filter: f})
	return p
}

// SetLimit caps the number of rows returned.
func (p *Params) SetLimit(n int) *Params {
	p.ctrl.Limit = &n
	return p
}

// SetOffset skips rows before returning results.
func (p *Params) SetOffset(n int) *Params {
	p.ctrl.Offset = &n
	return p
}

// OrderBy appends sort descriptors in priority order.
func (p *Params) OrderBy(sorts ...Sort) *Params {
	p.ctrl.Sort = append(p.ctrl.Sort, sorts...)
	return p
}

// Fields returns the schema's fields in insertion order.
func (p *Params) Fields() []Field {
	out := make([]Field, len(p.fields))
	copy(out, p.fields)
	return out
}

// Controls returns the limit, offset, and sort settings.
func (p *Params) Controls() Controls {
	ctrl := p.ctrl
	ctrl.Sort = append([]Sort(nil), p.ctrl.Sort...)
	return ctrl
}

// HasFilters reports whether any field carries an active filter.
func (p *Params) HasFilters() bool {
	for _, f := range p.fields {
		if f.Filter != nil && len(f.Filter.Conditions()) > 0 {
			return true
		}
	}
	return false
}

// ClearFilters drops every field filter, keeping pagination and ordering
// controls.
func (p *Params) ClearFilters() *Params {
	p.fields = nil
	return p
}

// Clone returns an independent copy. Callers that need to adjust limit or
// offset for pagination mutate the clone and leave the original untouched.
func (p *Params) Clone() *Params {
	clone := &Params{fields: make([]Field, len(p.fields))}
	copy(clone.fields, p.fields)
	clone.ctrl = Controls{Sort: append([]Sort(nil), p.ctrl.Sort...)}
	if p.ctrl.Limit != nil {
		v := *p.ctrl.Limit
		clone.ctrl.Limit = &v
	}
	if p.ctrl.Offset != nil {
		v := *p.ctrl.Offset
		clone.ctrl.Offset = &v
	}
	return clone
}
