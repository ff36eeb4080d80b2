// Package factory provides a small generic registry used to instantiate
// plugins from configuration: metrics sinks, plan log stores and registry
// sources. A plugin is named by a type string plus a map of raw settings;
// factories decode the settings into typed structs and return the concrete
// implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[planlog.Store]()
//	reg.Register("jsonl", func(conf map[string]any) (planlog.Store, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return planlog.NewJSONLStore(c.Path)
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "jsonl", Conf: map[string]any{"path": "plans.jsonl"}})
package factory
