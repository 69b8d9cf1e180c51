package plugin

import (
	"errors"
	"testing"

	"github.com/justyntemme/sona/pkg/framework/bus"
)

func TestBaseProcessorDefaults(t *testing.T) {
	p := NewBaseProcessor(nil)

	if p.GetBuses().GetBusCount(bus.MediaTypeAudio, bus.DirectionOutput) != 1 {
		t.Fatal("Expected default stereo configuration")
	}
	if p.GetLatencySamples() != 0 || p.GetTailSamples() != 0 {
		t.Error("Expected zero latency and tail")
	}

	state, err := p.GetState()
	if err != nil || len(state) != 0 {
		t.Errorf("Expected empty state, got %v (%v)", state, err)
	}
	if err := p.SetState([]byte{1, 2, 3}); err != nil {
		t.Errorf("SetState returned %v", err)
	}
}

func TestBaseProcessorCallbacks(t *testing.T) {
	p := NewBaseProcessor(bus.NewMonoConfiguration())

	var gotRate float64
	var resets int
	p.OnInitialize(func(sampleRate float64, maxBlockSize int32) error {
		gotRate = sampleRate
		return nil
	})
	p.OnReset(func() { resets++ })
	p.OnSetActive(func(active bool) error {
		if active {
			return errors.New("refused")
		}
		return nil
	})

	if err := p.Initialize(48000, 512); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if gotRate != 48000 || p.SampleRate() != 48000 {
		t.Errorf("Expected sample rate 48000, got %f", gotRate)
	}

	if err := p.SetActive(true); err == nil {
		t.Error("Expected activation error from callback")
	}
	if err := p.SetActive(false); err != nil {
		t.Errorf("Deactivate failed: %v", err)
	}
	if resets != 1 {
		t.Errorf("Expected 1 reset, got %d", resets)
	}
}

func TestBaseProcessorLayoutSupport(t *testing.T) {
	p := NewBaseProcessor(bus.NewStereoConfiguration())

	tests := []struct {
		name   string
		layout bus.Layout
		want   bool
	}{
		{"stereo", bus.Layout{Inputs: []bus.ChannelSet{bus.Stereo}, Outputs: []bus.ChannelSet{bus.Stereo}}, true},
		{"5.1", bus.Layout{Inputs: []bus.ChannelSet{bus.Stereo}, Outputs: []bus.ChannelSet{bus.Surround5_1}}, true},
		{"disabled output", bus.Layout{Inputs: []bus.ChannelSet{bus.Stereo}, Outputs: []bus.ChannelSet{bus.Disabled}}, false},
		{"missing bus", bus.Layout{Outputs: []bus.ChannelSet{bus.Stereo}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.IsLayoutSupported(tt.layout); got != tt.want {
				t.Errorf("IsLayoutSupported() = %v, want %v", got, tt.want)
			}
		})
	}
}
