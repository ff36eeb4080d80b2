package planlog

import (
	"github.com/uzazi-health/chwplan/core/factory"
)

var storeRegistry = factory.NewRegistry[Store]()

// RegisterStore makes a store constructor available under the given type name.
func RegisterStore(name string, f factory.Factory[Store]) error {
	return storeRegistry.Register(name, f)
}

// NewStore instantiates the store described by cfg. An empty type disables
// persistence; the caller gets a nil store.
func NewStore(cfg factory.ModuleConfig) (Store, error) {
	if cfg.Type == "" {
		return nil, nil
	}
	return storeRegistry.Create(cfg)
}
