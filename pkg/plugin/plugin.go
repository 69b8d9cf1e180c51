// Package plugin provides the VST3 plugin framework
package plugin

import (
	"github.com/justyntemme/sona/pkg/framework/bus"
	"github.com/justyntemme/sona/pkg/framework/plugin"
	"github.com/justyntemme/sona/pkg/framework/process"
	"github.com/justyntemme/sona/pkg/webui"
)

// Plugin is the main interface that users implement
type Plugin interface {
	// GetInfo returns plugin metadata
	GetInfo() plugin.Info

	// CreateProcessor creates a new instance of the audio processor
	CreateProcessor() Processor
}

// Processor handles the actual audio processing
type Processor interface {
	// Initialize is called when the plugin is created
	Initialize(sampleRate float64, maxBlockSize int32) error

	// ProcessAudio processes audio - ZERO ALLOCATIONS!
	ProcessAudio(ctx *process.Context)

	// GetBuses returns the bus configuration
	GetBuses() *bus.Configuration

	// SetActive is called when processing starts/stops
	SetActive(active bool) error

	// GetLatencySamples returns the plugin's latency in samples
	GetLatencySamples() int32

	// GetTailSamples returns the tail length in samples
	GetTailSamples() int32

	// IsLayoutSupported reports whether the host's proposed layout is accepted
	IsLayoutSupported(layout bus.Layout) bool

	// GetState and SetState move the persisted state blob
	GetState() ([]byte, error)
	SetState(data []byte) error
}

// View is an open plugin editor.
type View interface {
	Size() (width, height int)
	Resized(width, height int) error
	Close() error
}

// EditorProvider is implemented by processors that have a UI.
type EditorProvider interface {
	CreateEditor(factory webui.RendererFactory) (View, error)
}
