// Command sona is the plugin binary. Build it with -buildmode=c-shared and
// link the VST3 C shim, which calls into the pkg/plugin registry.
package main

import (
	"github.com/justyntemme/sona/pkg/config"
	"github.com/justyntemme/sona/pkg/framework/debug"
	"github.com/justyntemme/sona/pkg/plugin"
	"github.com/justyntemme/sona/pkg/sona"
)

func init() {
	cfg := config.Load()
	if _, err := cfg.ConfigureLogger(debug.Default()); err != nil {
		debug.Warn("logging config: %v", err)
	}

	// Set factory info
	plugin.SetFactoryInfo(plugin.FactoryInfo{
		Vendor: "Sona",
		URL:    "https://sona.local",
	})

	plugin.Register(sona.New(cfg))
}

// Required for c-shared build mode
func main() {}
