// Package registry defines where planning input comes from. A Source
// yields the mothers due for a visit, the CHW fleet and any blocked road
// segments for the day; backends are selected by name through the plugin
// factory (csv files, postgres, synthetic demo data).
package registry

import (
	"context"

	"github.com/uzazi-health/chwplan/core/factory"
	"github.com/uzazi-health/chwplan/core/model"
)

// Source supplies the records one planning cycle runs over. The core
// never reads storage itself; it consumes the typed snapshot a Source
// materializes.
type Source interface {
	Mothers(ctx context.Context) ([]model.Mother, error)
	CHWs(ctx context.Context) ([]model.CHW, error)
	BlockedEdges(ctx context.Context) ([]model.BlockedEdge, error)
	Close() error
}

var sourceRegistry = factory.NewRegistry[Source]()

// Register makes a source constructor available under the given type name.
func Register(name string, f factory.Factory[Source]) error {
	return sourceRegistry.Register(name, f)
}

// New instantiates the source described by cfg.
func New(cfg factory.ModuleConfig) (Source, error) {
	return sourceRegistry.Create(cfg)
}
