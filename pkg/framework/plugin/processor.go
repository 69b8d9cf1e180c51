// Package plugin provides base processor functionality to reduce boilerplate in VST3 plugins.
package plugin

import "github.com/justyntemme/sona/pkg/framework/bus"

// BaseProcessor provides common functionality for audio processors
type BaseProcessor struct {
	buses      *bus.Configuration
	sampleRate float64

	// Optional callbacks for customization
	onInitialize func(sampleRate float64, maxBlockSize int32) error
	onSetActive  func(active bool) error
	onReset      func()
}

// NewBaseProcessor creates a new base processor with the given bus configuration
func NewBaseProcessor(buses *bus.Configuration) *BaseProcessor {
	if buses == nil {
		buses = bus.NewStereoConfiguration() // Default to stereo
	}

	return &BaseProcessor{
		buses: buses,
	}
}

// Initialize implements the Processor interface
func (b *BaseProcessor) Initialize(sampleRate float64, maxBlockSize int32) error {
	b.sampleRate = sampleRate

	if b.onInitialize != nil {
		return b.onInitialize(sampleRate, maxBlockSize)
	}

	return nil
}

// GetBuses implements the Processor interface
func (b *BaseProcessor) GetBuses() *bus.Configuration {
	return b.buses
}

// SetActive implements the Processor interface
func (b *BaseProcessor) SetActive(active bool) error {
	if !active && b.onReset != nil {
		b.onReset()
	}

	if b.onSetActive != nil {
		return b.onSetActive(active)
	}

	return nil
}

// GetLatencySamples implements the Processor interface - default no latency
func (b *BaseProcessor) GetLatencySamples() int32 {
	return 0
}

// GetTailSamples implements the Processor interface - default no tail
func (b *BaseProcessor) GetTailSamples() int32 {
	return 0
}

// IsLayoutSupported accepts any layout whose bus counts match the configuration
// and whose main output is enabled.
func (b *BaseProcessor) IsLayoutSupported(layout bus.Layout) bool {
	if int32(len(layout.Inputs)) != b.buses.GetBusCount(bus.MediaTypeAudio, bus.DirectionInput) ||
		int32(len(layout.Outputs)) != b.buses.GetBusCount(bus.MediaTypeAudio, bus.DirectionOutput) {
		return false
	}
	return layout.MainOutput() != bus.Disabled
}

// GetState returns an empty state blob.
func (b *BaseProcessor) GetState() ([]byte, error) {
	return []byte{}, nil
}

// SetState ignores the blob.
func (b *BaseProcessor) SetState(data []byte) error {
	return nil
}

// SampleRate returns the current sample rate
func (b *BaseProcessor) SampleRate() float64 {
	return b.sampleRate
}

// OnInitialize sets a callback for initialization
func (b *BaseProcessor) OnInitialize(fn func(sampleRate float64, maxBlockSize int32) error) {
	b.onInitialize = fn
}

// OnSetActive sets a callback for activation/deactivation
func (b *BaseProcessor) OnSetActive(fn func(active bool) error) {
	b.onSetActive = fn
}

// OnReset sets a callback for when the processor should reset its state
func (b *BaseProcessor) OnReset(fn func()) {
	b.onReset = fn
}
