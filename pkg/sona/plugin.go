package sona

import (
	"github.com/justyntemme/sona/pkg/config"
	fwplugin "github.com/justyntemme/sona/pkg/framework/plugin"
	"github.com/justyntemme/sona/pkg/plugin"
)

// PluginID seeds the class UID and must never change once released.
const PluginID = "com.sona.plugin"

// Version is the plugin version string.
const Version = "0.1.0"

// Plugin describes Sona to the factory.
type Plugin struct {
	cfg *config.Config
}

var _ plugin.Plugin = (*Plugin)(nil)

// New creates the plugin. A nil cfg is loaded from the environment.
func New(cfg *config.Config) *Plugin {
	if cfg == nil {
		cfg = config.Load()
	}
	return &Plugin{cfg: cfg}
}

func (p *Plugin) GetInfo() fwplugin.Info {
	return fwplugin.Info{
		ID:       PluginID,
		Name:     Name,
		Version:  Version,
		Vendor:   "Sona",
		Category: "Fx",
	}
}

func (p *Plugin) CreateProcessor() plugin.Processor {
	return NewProcessor(p.cfg)
}
