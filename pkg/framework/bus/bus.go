// Package bus provides VST3 audio bus configuration and layout negotiation.
package bus

import (
	"fmt"

	"github.com/justyntemme/sona/pkg/vst3"
)

// MediaType represents the type of bus
type MediaType int32

const (
	// MediaTypeAudio represents audio bus type
	MediaTypeAudio MediaType = 0
	// MediaTypeEvent represents event/MIDI bus type
	MediaTypeEvent MediaType = 1
)

// Direction represents the bus direction
type Direction int32

const (
	// DirectionInput represents input bus
	DirectionInput Direction = 0
	// DirectionOutput represents output bus
	DirectionOutput Direction = 1
)

// Type represents the bus type
type Type int32

const (
	// TypeMain represents main bus
	TypeMain Type = 0
	// TypeAux represents auxiliary bus
	TypeAux Type = 1
)

// Info contains bus configuration
type Info struct {
	MediaType    MediaType
	Direction    Direction
	ChannelCount int32
	Name         string
	BusType      Type
	IsActive     bool

	// Arrangement is the speaker bitmask the host last applied, or empty
	// when the bus still has its built-in layout.
	Arrangement vst3.SpeakerArrangement
}

// SpeakerArrangement returns the bus layout as a host speaker bitmask.
func (i *Info) SpeakerArrangement() vst3.SpeakerArrangement {
	if i.Arrangement != vst3.ArrEmpty && i.Arrangement.ChannelCount() == i.ChannelCount {
		return i.Arrangement
	}
	return ChannelSetForCount(i.ChannelCount).SpeakerArrangement()
}

// Configuration manages audio and event buses
type Configuration struct {
	audioBuses []Info
	eventBuses []Info
}

// NewStereoConfiguration creates a standard stereo I/O configuration
func NewStereoConfiguration() *Configuration {
	return NewBuilder().
		WithStereoInput("Input").
		WithStereoOutput("Output").
		MustBuild()
}

// NewMonoConfiguration creates a mono I/O configuration
func NewMonoConfiguration() *Configuration {
	return NewBuilder().
		WithMonoInput("Input").
		WithMonoOutput("Output").
		MustBuild()
}

func (c *Configuration) buses(mediaType MediaType) []Info {
	if mediaType == MediaTypeEvent {
		return c.eventBuses
	}
	return c.audioBuses
}

// GetBusCount returns the number of buses for a given type and direction
func (c *Configuration) GetBusCount(mediaType MediaType, direction Direction) int32 {
	count := int32(0)
	for _, bus := range c.buses(mediaType) {
		if bus.Direction == direction {
			count++
		}
	}
	return count
}

// GetBusInfo returns information about a specific bus
func (c *Configuration) GetBusInfo(mediaType MediaType, direction Direction, index int32) *Info {
	buses := c.buses(mediaType)

	busIndex := int32(0)
	for i := range buses {
		if buses[i].Direction == direction {
			if busIndex == index {
				return &buses[i]
			}
			busIndex++
		}
	}

	return nil
}

// AddEventBus adds an event bus (for MIDI input)
func (c *Configuration) AddEventBus(direction Direction, name string) {
	c.eventBuses = append(c.eventBuses, Info{
		MediaType:    MediaTypeEvent,
		Direction:    direction,
		ChannelCount: 1,
		Name:         name,
		BusType:      TypeMain,
		IsActive:     true,
	})
}

// SetBusActive activates or deactivates a bus
func (c *Configuration) SetBusActive(mediaType MediaType, direction Direction, index int32, active bool) error {
	info := c.GetBusInfo(mediaType, direction, index)
	if info == nil {
		return fmt.Errorf("bus not found: mediaType=%d, direction=%d, index=%d", mediaType, direction, index)
	}
	info.IsActive = active
	return nil
}

// GetActiveInputChannelCount sums the channels of all active audio inputs
func (c *Configuration) GetActiveInputChannelCount() int32 {
	return c.activeChannels(DirectionInput)
}

// GetActiveOutputChannelCount sums the channels of all active audio outputs
func (c *Configuration) GetActiveOutputChannelCount() int32 {
	return c.activeChannels(DirectionOutput)
}

func (c *Configuration) activeChannels(direction Direction) int32 {
	total := int32(0)
	for _, bus := range c.audioBuses {
		if bus.Direction == direction && bus.IsActive {
			total += bus.ChannelCount
		}
	}
	return total
}

// Layout returns the channel sets currently assigned to the audio buses.
func (c *Configuration) Layout() Layout {
	var layout Layout
	for _, bus := range c.audioBuses {
		set := ChannelSetForCount(bus.ChannelCount)
		if !bus.IsActive {
			set = Disabled
		}
		if bus.Direction == DirectionInput {
			layout.Inputs = append(layout.Inputs, set)
		} else {
			layout.Outputs = append(layout.Outputs, set)
		}
	}
	return layout
}

// ApplyLayout resizes the audio buses to a negotiated layout. The layout must
// have exactly one entry per audio bus in each direction. Disabled entries
// deactivate their bus and every other entry activates it. Channel counts come
// from the host arrangement when the layout carries one, so discrete layouts
// keep their width. Nothing changes when the layout is rejected.
func (c *Configuration) ApplyLayout(layout Layout) error {
	if int32(len(layout.Inputs)) != c.GetBusCount(MediaTypeAudio, DirectionInput) ||
		int32(len(layout.Outputs)) != c.GetBusCount(MediaTypeAudio, DirectionOutput) {
		return fmt.Errorf("layout has %d inputs and %d outputs, configuration has %d and %d",
			len(layout.Inputs), len(layout.Outputs),
			c.GetBusCount(MediaTypeAudio, DirectionInput), c.GetBusCount(MediaTypeAudio, DirectionOutput))
	}

	type change struct {
		set      ChannelSet
		arr      vst3.SpeakerArrangement
		channels int32
	}
	changes := make([]change, len(c.audioBuses))

	in, out := 0, 0
	for i := range c.audioBuses {
		var ch change
		if c.audioBuses[i].Direction == DirectionInput {
			ch.set, ch.arr = layout.Inputs[in], layout.inputArrangement(in)
			in++
		} else {
			ch.set, ch.arr = layout.Outputs[out], layout.outputArrangement(out)
			out++
		}
		if ch.set != Disabled {
			ch.channels = ch.set.Size()
			if ch.arr != vst3.ArrEmpty {
				ch.channels = ch.arr.ChannelCount()
			}
			if ch.channels == 0 {
				return fmt.Errorf("bus %q: %v set without a channel count", c.audioBuses[i].Name, ch.set)
			}
		}
		changes[i] = ch
	}

	for i, ch := range changes {
		if ch.set == Disabled {
			c.audioBuses[i].IsActive = false
			continue
		}
		c.audioBuses[i].ChannelCount = ch.channels
		c.audioBuses[i].Arrangement = ch.arr
		c.audioBuses[i].IsActive = true
	}
	return nil
}
