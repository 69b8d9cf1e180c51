package bus

import "github.com/justyntemme/sona/pkg/vst3"

// ChannelSet names the channel configuration of one bus.
type ChannelSet int32

const (
	// Disabled means the host switched the bus off.
	Disabled ChannelSet = iota
	Mono
	Stereo
	Quad
	Surround5_1
	Surround7_1
	// Discrete is any channel count without a named set.
	Discrete
)

// String returns a display name for the set
func (s ChannelSet) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case Mono:
		return "mono"
	case Stereo:
		return "stereo"
	case Quad:
		return "quad"
	case Surround5_1:
		return "5.1"
	case Surround7_1:
		return "7.1"
	default:
		return "discrete"
	}
}

// Size returns the number of channels in the set. Discrete has no fixed size.
func (s ChannelSet) Size() int32 {
	switch s {
	case Mono:
		return 1
	case Stereo:
		return 2
	case Quad:
		return 4
	case Surround5_1:
		return 6
	case Surround7_1:
		return 8
	default:
		return 0
	}
}

// ChannelSetForCount picks the named set for a channel count.
func ChannelSetForCount(channels int32) ChannelSet {
	switch channels {
	case 0:
		return Disabled
	case 1:
		return Mono
	case 2:
		return Stereo
	case 4:
		return Quad
	case 6:
		return Surround5_1
	case 8:
		return Surround7_1
	default:
		return Discrete
	}
}

// FromSpeakerArrangement converts a host speaker bitmask into a channel set.
func FromSpeakerArrangement(arr vst3.SpeakerArrangement) ChannelSet {
	switch arr {
	case vst3.ArrEmpty:
		return Disabled
	case vst3.ArrMono:
		return Mono
	case vst3.ArrStereo:
		return Stereo
	case vst3.ArrQuad:
		return Quad
	case vst3.Arr51:
		return Surround5_1
	case vst3.Arr71:
		return Surround7_1
	default:
		return Discrete
	}
}

// SpeakerArrangement converts the set back into a host speaker bitmask.
// Discrete sets have no canonical arrangement and map to empty.
func (s ChannelSet) SpeakerArrangement() vst3.SpeakerArrangement {
	switch s {
	case Mono:
		return vst3.ArrMono
	case Stereo:
		return vst3.ArrStereo
	case Quad:
		return vst3.ArrQuad
	case Surround5_1:
		return vst3.Arr51
	case Surround7_1:
		return vst3.Arr71
	default:
		return vst3.ArrEmpty
	}
}

// Layout is the negotiated set of input and output channel sets for one
// host session, one entry per audio bus in bus order. The arrangement slices
// keep the host's bitmasks when the layout came from the host; they are
// empty for layouts built by hand.
type Layout struct {
	Inputs  []ChannelSet
	Outputs []ChannelSet

	InputArrangements  []vst3.SpeakerArrangement
	OutputArrangements []vst3.SpeakerArrangement
}

// LayoutFromArrangements builds a layout out of the arrays the host passes to
// setBusArrangements.
func LayoutFromArrangements(inputs, outputs []vst3.SpeakerArrangement) Layout {
	layout := Layout{
		Inputs:             make([]ChannelSet, len(inputs)),
		Outputs:            make([]ChannelSet, len(outputs)),
		InputArrangements:  append([]vst3.SpeakerArrangement(nil), inputs...),
		OutputArrangements: append([]vst3.SpeakerArrangement(nil), outputs...),
	}
	for i, arr := range inputs {
		layout.Inputs[i] = FromSpeakerArrangement(arr)
	}
	for i, arr := range outputs {
		layout.Outputs[i] = FromSpeakerArrangement(arr)
	}
	return layout
}

// MainInput returns the set of the first input bus, or Disabled.
func (l Layout) MainInput() ChannelSet {
	if len(l.Inputs) == 0 {
		return Disabled
	}
	return l.Inputs[0]
}

// MainOutput returns the set of the first output bus, or Disabled.
func (l Layout) MainOutput() ChannelSet {
	if len(l.Outputs) == 0 {
		return Disabled
	}
	return l.Outputs[0]
}

// inputArrangement returns the host bitmask for input i, or empty.
func (l Layout) inputArrangement(i int) vst3.SpeakerArrangement {
	if i < len(l.InputArrangements) {
		return l.InputArrangements[i]
	}
	return vst3.ArrEmpty
}

// outputArrangement returns the host bitmask for output i, or empty.
func (l Layout) outputArrangement(i int) vst3.SpeakerArrangement {
	if i < len(l.OutputArrangements) {
		return l.OutputArrangements[i]
	}
	return vst3.ArrEmpty
}
