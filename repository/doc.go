// Package repository provides a generic repository abstraction built on Bun
// for id-based CRUD operations and scoped query building.
package repository
