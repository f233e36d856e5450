// Package ladderfilter is the ladder filter plugin: its parameters, the
// filter-mode menu mapping, the block processor and the editor binding.
package ladderfilter

import (
	"github.com/justyntemme/ladderfilter/pkg/framework/plugin"
	hostplugin "github.com/justyntemme/ladderfilter/pkg/plugin"
)

// Plugin describes the ladder filter to the plugin registry.
type Plugin struct{}

// CreatePlugin returns the plugin factory.
func CreatePlugin() hostplugin.Plugin {
	return &Plugin{}
}

// GetInfo returns the plugin metadata.
func (Plugin) GetInfo() plugin.Info {
	return plugin.Info{
		ID:       "com.ladderfilter.ladderfilter",
		Name:     Name,
		Version:  "1.0.0",
		Vendor:   "Ladder Audio",
		Category: "Fx|Filter",
	}
}

// CreateProcessor returns a new processor.
func (Plugin) CreateProcessor() hostplugin.Processor {
	return NewProcessor()
}

func init() {
	hostplugin.Register(CreatePlugin())
}
