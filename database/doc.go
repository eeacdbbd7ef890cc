// Package database provides connection management, migrations, configuration
// types, query logging hooks, health checks, and related utilities built on
// top of Bun.
package database
