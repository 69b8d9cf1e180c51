package vst3

// ProcessSetup contains audio processing configuration
type ProcessSetup struct {
	ProcessMode        int32
	SymbolicSampleSize int32
	MaxSamplesPerBlock int32
	SampleRate         float64
}

// BusInfo describes an audio bus
type BusInfo struct {
	MediaType    int32
	Direction    int32
	ChannelCount int32
	Name         string
	BusType      int32
	Flags        uint32
}

// Constants for media types
const (
	MediaTypeAudio int32 = 0
	MediaTypeEvent int32 = 1
)

// Constants for bus directions
const (
	BusDirectionInput  int32 = 0
	BusDirectionOutput int32 = 1
)

// Constants for bus types
const (
	BusTypeMain int32 = 0
	BusTypeAux  int32 = 1
)

// BusFlagDefaultActive marks a bus the host should activate without asking.
const BusFlagDefaultActive uint32 = 1

// Symbolic sample sizes
const (
	SampleSize32 int32 = 0
	SampleSize64 int32 = 1
)

// Process modes
const (
	ProcessModeRealtime int32 = 0
	ProcessModePrefetch int32 = 1
	ProcessModeOffline  int32 = 2
)

// SpeakerArrangement is the VST3 speaker bitmask for one bus.
type SpeakerArrangement uint64

// Speaker bits
const (
	SpeakerL   SpeakerArrangement = 1 << 0
	SpeakerR   SpeakerArrangement = 1 << 1
	SpeakerC   SpeakerArrangement = 1 << 2
	SpeakerLfe SpeakerArrangement = 1 << 3
	SpeakerLs  SpeakerArrangement = 1 << 4
	SpeakerRs  SpeakerArrangement = 1 << 5
	SpeakerSl  SpeakerArrangement = 1 << 9
	SpeakerSr  SpeakerArrangement = 1 << 10
	SpeakerM   SpeakerArrangement = 1 << 19
)

// Common arrangements
const (
	ArrEmpty  SpeakerArrangement = 0
	ArrMono   SpeakerArrangement = SpeakerM
	ArrStereo SpeakerArrangement = SpeakerL | SpeakerR
	ArrQuad   SpeakerArrangement = SpeakerL | SpeakerR | SpeakerLs | SpeakerRs
	Arr51     SpeakerArrangement = SpeakerL | SpeakerR | SpeakerC | SpeakerLfe | SpeakerLs | SpeakerRs
	Arr71     SpeakerArrangement = Arr51 | SpeakerSl | SpeakerSr
)

// ChannelCount returns the number of speakers set in the arrangement.
func (a SpeakerArrangement) ChannelCount() int32 {
	count := int32(0)
	for a != 0 {
		a &= a - 1
		count++
	}
	return count
}
