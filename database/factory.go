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

package database

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

// databaseTypes lists the accepted ConnectionConfig.Type values,
// including the long-form aliases the drivers answer to.
var databaseTypes = map[string]bool{
	"mysql":      true,
	"postgres":   true,
	"postgresql": true,
	"sqlite":     true,
	"sqlite3":    true,
}

// DatabaseFactory builds a DatabaseManager from configuration, applies
// environment overrides, and exposes the manager's lifecycle helpers.
type DatabaseFactory struct {
	manager DatabaseManager
	logger  Logger
}

// NewDatabaseFactory returns a factory using the global logger.
func NewDatabaseFactory() *DatabaseFactory {
	return &DatabaseFactory{logger: GetLogger()}
}

// Build validates the configuration, layers DB_* environment variables
// over it, and creates the manager. The manager is not yet connected.
func (f *DatabaseFactory) Build(cfg *ConnectionConfig) (DatabaseManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil database configuration")
	}
	if !databaseTypes[cfg.Type] {
		return nil, fmt.Errorf("unsupported database type: %s, supported types: [mysql postgres sqlite]", cfg.Type)
	}

	applyEnvOverrides(cfg)

	manager := NewDatabaseManager(cfg)
	manager.SetLogger(f.logger)
	f.manager = manager
	return manager, nil
}

// applyEnvOverrides lets deployment environments override connection
// settings without touching the configuration file. Credentials in
// particular usually arrive this way.
func applyEnvOverrides(cfg *ConnectionConfig) {
	setString := func(env string, dst *string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	setInt := func(env string, dst *int) {
		if v := os.Getenv(env); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setSeconds := func(env string, dst *time.Duration) {
		if v := os.Getenv(env); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = time.Duration(n) * time.Second
			}
		}
	}
	setBool := func(env string, dst *bool) {
		if v := os.Getenv(env); v != "" {
			*dst = v == "true"
		}
	}

	setString("DB_HOST", &cfg.Host)
	setInt("DB_PORT", &cfg.Port)
	setString("DB_USERNAME", &cfg.Username)
	setString("DB_PASSWORD", &cfg.Password)
	setString("DB_NAME", &cfg.DBName)
	setString("DB_SSLMODE", &cfg.SSLMode)
	setInt("DB_MAX_IDLE_CONNS", &cfg.MaxIdleConns)
	setInt("DB_MAX_OPEN_CONNS", &cfg.MaxOpenConns)
	setSeconds("DB_CONN_MAX_LIFETIME", &cfg.ConnMaxLifetime)
	setBool("DB_ENABLE_RECONNECT", &cfg.EnableReconnect)
	setSeconds("DB_RECONNECT_INTERVAL", &cfg.ReconnectInterval)
	setBool("DB_ENABLE_QUERY_LOG", &cfg.EnableQueryLog)
}

// Initialize connects the built manager and optionally runs migrations.
func (f *DatabaseFactory) Initialize(ctx context.Context, migrate bool) error {
	if f.manager == nil {
		return fmt.Errorf("database manager not built")
	}
	if err := f.manager.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if migrate {
		if err := f.manager.RunMigrations(ctx); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}
	f.logger.Info("Database initialization completed!")
	return nil
}

// GetManager returns the built manager, or nil before Build.
func (f *DatabaseFactory) GetManager() DatabaseManager {
	return f.manager
}

// GetDB returns the Bun database instance, or nil before initialization.
func (f *DatabaseFactory) GetDB() *bun.DB {
	if f.manager == nil {
		return nil
	}
	return f.manager.GetDB()
}

// SetLogger replaces the logger on the factory and the built manager.
func (f *DatabaseFactory) SetLogger(logger Logger) {
	f.logger = logger
	if f.manager != nil {
		f.manager.SetLogger(logger)
	}
}

// Close disconnects the built manager.
func (f *DatabaseFactory) Close() error {
	if f.manager == nil {
		return nil
	}
	return f.manager.Disconnect()
}

// GetHealthStatus runs a health check through the built manager.
func (f *DatabaseFactory) GetHealthStatus(ctx context.Context) *HealthStatus {
	if f.manager == nil {
		return &HealthStatus{
			LastError:     "database manager not built",
			LastCheckTime: time.Now(),
		}
	}
	return f.manager.HealthCheck(ctx)
}

// GetStats reports connection pool statistics from the built manager.
func (f *DatabaseFactory) GetStats() *DBStats {
	if f.manager == nil {
		return &DBStats{}
	}
	return f.manager.GetStats()
}
