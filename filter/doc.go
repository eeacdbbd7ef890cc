// Package filter defines typed filter values for database queries, the
// detector that classifies untyped operator payloads into those types, sort
// descriptors, and the schema contract that groups per-field filters with
// pagination and ordering controls.
//
// A filter value carries operators for one logical field: equality, range,
// set membership, text patterns, and nullness. Filters are inert data; the
// query package turns them into SQL predicates.
package filter
