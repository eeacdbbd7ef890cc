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
	"sort"
	"sync"
)

// registeredModel pairs a Bun model struct with its creation priority.
type registeredModel struct {
	instance interface{}
	priority int
}

var (
	modelRegistry   []registeredModel
	modelRegistryMu sync.RWMutex
)

// RegisterModelInstance adds a Bun model struct pointer to the startup
// registry. Tables are created in ascending priority order during the
// base migration; registration order breaks ties. Call it from an init
// function so models are known before InitDB runs.
func RegisterModelInstance(instance interface{}, priority int) {
	if instance == nil {
		return
	}
	modelRegistryMu.Lock()
	defer modelRegistryMu.Unlock()
	modelRegistry = append(modelRegistry, registeredModel{instance: instance, priority: priority})
}

// RegisteredModelInstances returns the registered model structs in
// priority order.
func RegisteredModelInstances() []interface{} {
	modelRegistryMu.RLock()
	models := make([]registeredModel, len(modelRegistry))
	copy(models, modelRegistry)
	modelRegistryMu.RUnlock()

	sort.SliceStable(models, func(i, j int) bool {
		return models[i].priority < models[j].priority
	})
	instances := make([]interface{}, len(models))
	for i, m := range models {
		instances[i] = m.instance
	}
	return instances
}
