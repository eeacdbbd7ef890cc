// Package query wraps Bun select queries with the predicate, ordering, and
// pagination surface that filter values target, and applies whole filter
// schemas onto it with logical field to column resolution.
package query
