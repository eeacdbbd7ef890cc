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

	"github.com/uptrace/bun"
)

var (
	globalFactory *DatabaseFactory
	globalConfig  *Config

	// DB is the global Bun instance, set by InitDB. Services resolve it
	// lazily through GetDB so init order does not matter.
	DB *bun.DB
)

// GetDB returns the global Bun database instance, or nil before InitDB.
func GetDB() *bun.DB {
	if globalFactory != nil {
		return globalFactory.GetDB()
	}
	return DB
}

// GetConfig returns the configuration the global database was
// initialized with, or nil before initialization.
func GetConfig() *Config {
	return globalConfig
}

// InitDB initializes the global database. Migrations run on startup
// when the configuration asks for them.
func InitDB(cfg *Config) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil database configuration")
	}
	globalConfig = cfg
	return initGlobal(cfg, cfg.DataMigrateConfig.EnableMigrateOnStartup)
}

// InitDBFromFile loads a YAML configuration file and initializes the
// global database from it.
func InitDBFromFile(path string) (*bun.DB, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return InitDB(cfg)
}

func initGlobal(cfg *Config, migrate bool) (*bun.DB, error) {
	factory := NewDatabaseFactory()
	manager, err := factory.Build(&cfg.ConnectionConfig)
	if err != nil {
		return nil, fmt.Errorf("build database manager: %w", err)
	}
	if err := factory.Initialize(context.Background(), migrate); err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	globalFactory = factory
	DB = manager.GetDB()
	DB.RegisterModel(RegisteredModelInstances()...)
	return DB, nil
}

// CloseDB closes the global database connection.
func CloseDB() error {
	if globalFactory != nil {
		return globalFactory.Close()
	}
	return nil
}

// GetHealthStatus pings the global database and reports its state.
func GetHealthStatus(ctx context.Context) *HealthStatus {
	if globalFactory != nil {
		return globalFactory.GetHealthStatus(ctx)
	}
	return &HealthStatus{LastError: "database not initialized"}
}

// GetDatabaseStats reports connection pool statistics for the global
// database.
func GetDatabaseStats() *DBStats {
	if globalFactory != nil {
		return globalFactory.GetStats()
	}
	return &DBStats{}
}

// RunMigrations runs pending migrations against the global database.
// Useful when EnableMigrateOnStartup is off and the caller controls the
// migration moment itself.
func RunMigrations() error {
	if globalFactory == nil {
		return fmt.Errorf("database not initialized")
	}
	manager := globalFactory.GetManager()
	if manager == nil {
		return fmt.Errorf("database manager not initialized")
	}
	return manager.RunMigrations(context.Background())
}
