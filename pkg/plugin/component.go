package plugin

import (
	"fmt"
	"sync"

	"github.com/justyntemme/sona/pkg/framework/bus"
	"github.com/justyntemme/sona/pkg/framework/debug"
	"github.com/justyntemme/sona/pkg/framework/process"
	"github.com/justyntemme/sona/pkg/midi"
	"github.com/justyntemme/sona/pkg/vst3"
)

// Component represents a VST3 plugin component that implements both
// IComponent and IAudioProcessor interfaces
type Component interface {
	vst3.IComponent
	vst3.IAudioProcessor
	vst3.IEditController
}

// component adapts a Processor to the host-facing interfaces.
type component struct {
	processor    Processor
	buses        *bus.Configuration
	ctx          *process.Context
	sampleRate   float64
	maxBlockSize int32
	active       bool
	processing   bool
	log          *debug.Logger

	// viewMu guards view. It is never taken together with the wrapper's
	// processing lock, so editor work cannot hold up the audio thread.
	viewMu sync.Mutex
	view   View
}

var _ Component = (*component)(nil)

// defaultBlockSize sizes the context until the host calls SetupProcessing.
const defaultBlockSize = 4096

func newComponent(processor Processor, log *debug.Logger) *component {
	return &component{
		processor:    processor,
		buses:        processor.GetBuses(),
		ctx:          process.NewContext(defaultBlockSize),
		maxBlockSize: defaultBlockSize,
		log:          log,
	}
}

// IPluginBase methods
func (c *component) Initialize(context interface{}) error {
	return nil
}

func (c *component) Terminate() error {
	return c.closeView()
}

// IComponent methods
func (c *component) GetControllerClassID() [16]byte {
	// Single component: the controller shares the processor class
	return [16]byte{}
}

func (c *component) SetIOMode(mode int32) error {
	return nil
}

func (c *component) GetBusCount(mediaType, direction int32) int32 {
	return c.buses.GetBusCount(bus.MediaType(mediaType), bus.Direction(direction))
}

func (c *component) GetBusInfo(mediaType, direction, index int32) (*vst3.BusInfo, error) {
	info := c.buses.GetBusInfo(bus.MediaType(mediaType), bus.Direction(direction), index)
	if info == nil {
		return nil, fmt.Errorf("bus %d/%d/%d: %w", mediaType, direction, index, vst3.ErrInvalidArgument)
	}

	var flags uint32
	if info.IsActive {
		flags = vst3.BusFlagDefaultActive
	}
	return &vst3.BusInfo{
		MediaType:    int32(info.MediaType),
		Direction:    int32(info.Direction),
		ChannelCount: info.ChannelCount,
		Name:         info.Name,
		BusType:      int32(info.BusType),
		Flags:        flags,
	}, nil
}

func (c *component) ActivateBus(mediaType, direction, index int32, state bool) error {
	if err := c.buses.SetBusActive(bus.MediaType(mediaType), bus.Direction(direction), index, state); err != nil {
		return fmt.Errorf("%w: %v", vst3.ErrInvalidArgument, err)
	}
	return nil
}

func (c *component) SetActive(state bool) error {
	if err := c.processor.SetActive(state); err != nil {
		return fmt.Errorf("set active %v: %w", state, err)
	}
	c.active = state
	return nil
}

func (c *component) SetState(state []byte) error {
	return c.processor.SetState(state)
}

func (c *component) GetState() ([]byte, error) {
	return c.processor.GetState()
}

// IAudioProcessor methods

// SetBusArrangements offers the host's layout to the processor and applies
// it to the buses only when accepted.
func (c *component) SetBusArrangements(inputs, outputs []vst3.SpeakerArrangement) error {
	layout := bus.LayoutFromArrangements(inputs, outputs)
	if !c.processor.IsLayoutSupported(layout) {
		c.log.Debug("rejected layout: main output %s", layout.MainOutput())
		return vst3.ErrNotSupported
	}
	if err := c.buses.ApplyLayout(layout); err != nil {
		return fmt.Errorf("%w: %v", vst3.ErrInvalidArgument, err)
	}
	return nil
}

func (c *component) GetBusArrangement(direction, index int32) (vst3.SpeakerArrangement, error) {
	info := c.buses.GetBusInfo(bus.MediaTypeAudio, bus.Direction(direction), index)
	if info == nil {
		return vst3.ArrEmpty, vst3.ErrInvalidArgument
	}
	return info.SpeakerArrangement(), nil
}

func (c *component) CanProcessSampleSize(symbolicSampleSize int32) error {
	// Accept 32-bit float
	if symbolicSampleSize == vst3.SampleSize32 {
		return nil
	}
	return vst3.ErrNotSupported
}

func (c *component) GetLatencySamples() uint32 {
	return uint32(c.processor.GetLatencySamples())
}

func (c *component) SetupProcessing(setup *vst3.ProcessSetup) error {
	if setup == nil || setup.MaxSamplesPerBlock <= 0 {
		return vst3.ErrInvalidArgument
	}
	if err := c.CanProcessSampleSize(setup.SymbolicSampleSize); err != nil {
		return err
	}

	c.sampleRate = setup.SampleRate
	if setup.MaxSamplesPerBlock != c.maxBlockSize {
		c.ctx = process.NewContext(int(setup.MaxSamplesPerBlock))
		c.maxBlockSize = setup.MaxSamplesPerBlock
	}
	c.ctx.SampleRate = setup.SampleRate

	if err := c.processor.Initialize(setup.SampleRate, setup.MaxSamplesPerBlock); err != nil {
		return fmt.Errorf("initializing processor: %w", err)
	}
	return nil
}

func (c *component) SetProcessing(state bool) error {
	c.processing = state
	return nil
}

// Process loads the host buses into the context and runs the processor.
// Inactive buses contribute no channels. A zero-sample call carries no audio
// and is acknowledged without processing.
func (c *component) Process(data *vst3.ProcessData) error {
	if data == nil {
		return vst3.ErrInvalidArgument
	}
	if data.NumSamples == 0 {
		return nil
	}

	ctx := c.ctx
	ctx.LoadBuses(c.buses, data.Inputs, data.Outputs, int(data.NumSamples))

	ctx.ClearInputEvents()
	for _, e := range data.InputEvents {
		if event, ok := midi.Decode(e.Data, e.SampleOffset); ok {
			ctx.AddInputEvent(event)
		}
	}

	c.processor.ProcessAudio(ctx)
	return nil
}

func (c *component) GetTailSamples() uint32 {
	return uint32(c.processor.GetTailSamples())
}

// IEditController methods
func (c *component) SetComponentState(state []byte) error {
	return nil
}

func (c *component) GetParameterCount() int32 {
	return 0
}

// CreateView opens the processor's editor with the registered renderer
// factory. It runs on the UI thread under the view lock only.
func (c *component) CreateView(name string) (interface{}, error) {
	if name != vst3.ViewTypeEditor {
		return nil, vst3.ErrNotSupported
	}
	provider, ok := c.processor.(EditorProvider)
	if !ok {
		return nil, vst3.ErrNotImplemented
	}
	factory := currentRendererFactory()
	if factory == nil {
		return nil, fmt.Errorf("no renderer factory registered: %w", vst3.ErrNotSupported)
	}

	c.viewMu.Lock()
	defer c.viewMu.Unlock()

	if err := c.closeViewLocked(); err != nil {
		c.log.Warn("closing previous view: %v", err)
	}
	view, err := provider.CreateEditor(factory)
	if err != nil {
		return nil, fmt.Errorf("creating editor: %w", err)
	}
	c.view = view
	return view, nil
}

func (c *component) closeView() error {
	c.viewMu.Lock()
	defer c.viewMu.Unlock()
	return c.closeViewLocked()
}

func (c *component) closeViewLocked() error {
	if c.view == nil {
		return nil
	}
	view := c.view
	c.view = nil
	return view.Close()
}
