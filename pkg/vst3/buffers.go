package vst3

// AudioBusBuffers provides access to the channel buffers of one bus.
// The slices alias host memory and are only valid during the process call.
type AudioBusBuffers struct {
	Buffers     [][]float32
	SilenceMask uint64
}

// NumChannels returns the number of channels on the bus
func (b *AudioBusBuffers) NumChannels() int {
	return len(b.Buffers)
}

// GetChannel returns a specific channel's buffer
func (b *AudioBusBuffers) GetChannel(index int) []float32 {
	if index < 0 || index >= len(b.Buffers) {
		return nil
	}
	return b.Buffers[index]
}

// Event is one entry of the host input event list, flattened by the C shim
// into MIDI 1.0 bytes (status, data1, data2).
type Event struct {
	BusIndex     int32
	SampleOffset int32
	Data         []byte
}

// ProcessContext wraps the VST3 process context
type ProcessContext struct {
	State           uint32
	SampleRate      float64
	ProjectTimeSecs float64
	BarPositionPPQ  float64
	Tempo           float64
}

// ProcessData is one host process call translated out of the C struct.
type ProcessData struct {
	ProcessMode        int32
	SymbolicSampleSize int32
	NumSamples         int32
	Inputs             []AudioBusBuffers
	Outputs            []AudioBusBuffers
	InputEvents        []Event
	Context            *ProcessContext
}

// GetInput returns an input bus by index
func (d *ProcessData) GetInput(index int) *AudioBusBuffers {
	if index < 0 || index >= len(d.Inputs) {
		return nil
	}
	return &d.Inputs[index]
}

// GetOutput returns an output bus by index
func (d *ProcessData) GetOutput(index int) *AudioBusBuffers {
	if index < 0 || index >= len(d.Outputs) {
		return nil
	}
	return &d.Outputs[index]
}
