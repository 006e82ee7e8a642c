/*
NAME
  registry.go

DESCRIPTION
  registry.go holds the global module name -> Factory registry pipelines
  consult to instantiate each step's modules.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package pipeline

import (
	"fmt"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register adds name to the global module registry, associating it with
// factory. Calling it twice for the same name replaces the previous
// registration, matching the reference registry's plain map assignment.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Lookup returns the Factory registered under name, or an error if no
// module with that name has been registered.
func Lookup(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("pipeline: module %q is not registered", name)
	}
	return factory, nil
}

// Registered reports whether name has a registered Factory.
func Registered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}
