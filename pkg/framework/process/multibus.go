package process

import (
	"github.com/justyntemme/sona/pkg/framework/bus"
	"github.com/justyntemme/sona/pkg/vst3"
)

// BusBuffers represents audio buffers for a single bus
type BusBuffers struct {
	Channels [][]float32
	BusInfo  *bus.Info
}

// Active reports whether the bus carries audio this block.
func (b *BusBuffers) Active() bool {
	return b.BusInfo != nil && b.BusInfo.IsActive
}

// LoadBuses points the context at one block of host buffers. Each bus keeps
// its slot; inactive buses and buses the configuration does not know get no
// channels. Input and Output become the active channels in bus order, each
// trimmed to numSamples. Slots are reused across blocks, so steady-state
// calls do not allocate.
func (c *Context) LoadBuses(config *bus.Configuration, inputs, outputs []vst3.AudioBusBuffers, numSamples int) {
	c.inputBuses, c.Input = loadBuses(c.inputBuses, c.Input[:0], config, bus.DirectionInput, inputs, numSamples)
	c.outputBuses, c.Output = loadBuses(c.outputBuses, c.Output[:0], config, bus.DirectionOutput, outputs, numSamples)
}

func loadBuses(dst []BusBuffers, flat [][]float32, config *bus.Configuration, direction bus.Direction,
	host []vst3.AudioBusBuffers, numSamples int) ([]BusBuffers, [][]float32) {
	if cap(dst) < len(host) {
		dst = append(dst[:cap(dst)], make([]BusBuffers, len(host)-cap(dst))...)
	}
	dst = dst[:len(host)]

	for i := range host {
		b := &dst[i]
		b.Channels = b.Channels[:0]
		b.BusInfo = nil
		if config != nil {
			b.BusInfo = config.GetBusInfo(bus.MediaTypeAudio, direction, int32(i))
		}
		if !b.Active() {
			continue
		}
		for _, ch := range host[i].Buffers {
			if len(ch) > numSamples {
				ch = ch[:numSamples]
			}
			b.Channels = append(b.Channels, ch)
			flat = append(flat, ch)
		}
	}
	return dst, flat
}

// GetMainInput returns the main input bus buffers. A context that was never
// given bus information treats Input as the main bus.
func (c *Context) GetMainInput() [][]float32 {
	if len(c.inputBuses) == 0 {
		return c.Input
	}
	return mainBus(c.inputBuses)
}

// GetMainOutput returns the main output bus buffers. A context that was never
// given bus information treats Output as the main bus.
func (c *Context) GetMainOutput() [][]float32 {
	if len(c.outputBuses) == 0 {
		return c.Output
	}
	return mainBus(c.outputBuses)
}

func mainBus(buses []BusBuffers) [][]float32 {
	for i := range buses {
		if buses[i].Active() && buses[i].BusInfo.BusType == bus.TypeMain {
			return buses[i].Channels
		}
	}
	return nil
}

// GetInputBus returns a specific input bus by index
func (c *Context) GetInputBus(index int) *BusBuffers {
	if index >= 0 && index < len(c.inputBuses) {
		return &c.inputBuses[index]
	}
	return nil
}

// GetOutputBus returns a specific output bus by index
func (c *Context) GetOutputBus(index int) *BusBuffers {
	if index >= 0 && index < len(c.outputBuses) {
		return &c.outputBuses[index]
	}
	return nil
}

// NumInputBuses returns the number of input buses in the current block
func (c *Context) NumInputBuses() int {
	return len(c.inputBuses)
}

// NumOutputBuses returns the number of output buses in the current block
func (c *Context) NumOutputBuses() int {
	return len(c.outputBuses)
}

// PassThroughMain copies the main input bus into the main output bus channel
// by channel. Without bus information it copies Input to Output.
func (c *Context) PassThroughMain() {
	if len(c.inputBuses) == 0 && len(c.outputBuses) == 0 {
		c.CopyInputToOutput()
		return
	}
	in, out := c.GetMainInput(), c.GetMainOutput()
	for ch := 0; ch < len(in) && ch < len(out); ch++ {
		copyChannel(out[ch], in[ch])
	}
}
