// Package process provides the per-callback audio processing context.
package process

import (
	"github.com/justyntemme/sona/pkg/midi"
)

// Context exposes one process callback's buffers. The slices alias host memory
// and must not be retained after the callback returns.
type Context struct {
	Input      [][]float32
	Output     [][]float32
	SampleRate float64

	// Pre-allocated work buffer
	workBuffer []float32

	inputEvents []midi.Event

	// Per-bus views of Input and Output, set by LoadBuses
	inputBuses  []BusBuffers
	outputBuses []BusBuffers
}

// NewContext creates a new process context with pre-allocated buffers
func NewContext(maxBlockSize int) *Context {
	return &Context{
		workBuffer:  make([]float32, maxBlockSize),
		inputEvents: make([]midi.Event, 0, 128),
	}
}

// NumSamples returns the number of samples to process
func (c *Context) NumSamples() int {
	if len(c.Input) > 0 && len(c.Input[0]) > 0 {
		return len(c.Input[0])
	}
	if len(c.Output) > 0 && len(c.Output[0]) > 0 {
		return len(c.Output[0])
	}
	return 0
}

// NumInputChannels returns the number of input channels
func (c *Context) NumInputChannels() int {
	return len(c.Input)
}

// NumOutputChannels returns the number of output channels
func (c *Context) NumOutputChannels() int {
	return len(c.Output)
}

// WorkBuffer returns a slice of the pre-allocated work buffer
// sized to the current block size - no allocation!
func (c *Context) WorkBuffer() []float32 {
	n := c.NumSamples()
	if n > len(c.workBuffer) {
		n = len(c.workBuffer)
	}
	return c.workBuffer[:n]
}

// Clear zeros the output buffers
func (c *Context) Clear() {
	for ch := range c.Output {
		clear(c.Output[ch])
	}
}

// AddInputEvent appends a decoded host event for this block.
func (c *Context) AddInputEvent(event midi.Event) {
	c.inputEvents = append(c.inputEvents, event)
}

// GetAllInputEvents returns the events of the current block.
func (c *Context) GetAllInputEvents() []midi.Event {
	return c.inputEvents
}

// GetInputEvents returns events whose sample offset lies in [start, end).
func (c *Context) GetInputEvents(start, end int32) []midi.Event {
	var events []midi.Event
	for _, e := range c.inputEvents {
		if offset := e.SampleOffset(); offset >= start && offset < end {
			events = append(events, e)
		}
	}
	return events
}

// HasInputEvents reports whether the current block carries events.
func (c *Context) HasInputEvents() bool {
	return len(c.inputEvents) > 0
}

// ClearInputEvents drops the events of the previous block, keeping capacity.
func (c *Context) ClearInputEvents() {
	c.inputEvents = c.inputEvents[:0]
}
