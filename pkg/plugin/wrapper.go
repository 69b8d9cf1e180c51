package plugin

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	logging "github.com/justyntemme/sona/pkg/framework/debug"
	"github.com/justyntemme/sona/pkg/vst3"
	"github.com/justyntemme/sona/pkg/webui"
)

// Handle identifies a live instance across the host boundary. The C shim
// stores it in place of a Go pointer.
type Handle uintptr

// componentWrapper tracks one instance created for the host
type componentWrapper struct {
	component *component
	id        Handle
	mu        sync.Mutex // serializes processing and state calls on one instance
}

var (
	// Global map of component wrappers indexed by ID
	components   = make(map[Handle]*componentWrapper)
	componentsMu sync.RWMutex
	nextID       Handle = 1
)

var (
	registryMu      sync.RWMutex
	globalPlugin    Plugin
	rendererFactory webui.RendererFactory
)

// Factory info
type FactoryInfo struct {
	Vendor string
	URL    string
	Email  string
}

var globalFactoryInfo = FactoryInfo{
	Vendor: "Sona",
	URL:    "https://sona.local",
	Email:  "",
}

// ClassInfo describes the single class the factory exposes.
type ClassInfo struct {
	CID         [16]byte
	Cardinality int32
	Category    string
	Name        string
}

// ManyInstances is the class cardinality reported to hosts.
const ManyInstances int32 = 0x7FFFFFFF

// ErrNoPlugin is returned by factory calls before Register.
var ErrNoPlugin = errors.New("plugin: no plugin registered")

// Register sets the global plugin instance
func Register(p Plugin) {
	registryMu.Lock()
	defer registryMu.Unlock()
	globalPlugin = p
}

func registeredPlugin() Plugin {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return globalPlugin
}

// SetFactoryInfo sets the factory information
func SetFactoryInfo(info FactoryInfo) {
	registryMu.Lock()
	defer registryMu.Unlock()
	globalFactoryInfo = info
}

// GetFactoryInfo returns the factory information
func GetFactoryInfo() FactoryInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return globalFactoryInfo
}

// SetRendererFactory installs the web view used by CreateView. The host
// side supplies it before opening editors.
func SetRendererFactory(factory webui.RendererFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	rendererFactory = factory
}

func currentRendererFactory() webui.RendererFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return rendererFactory
}

// CountClasses returns 1 once a plugin is registered.
func CountClasses() int32 {
	if registeredPlugin() == nil {
		return 0
	}
	return 1
}

// GetClassInfo describes class index.
func GetClassInfo(index int32) (ClassInfo, error) {
	p := registeredPlugin()
	if p == nil {
		return ClassInfo{}, ErrNoPlugin
	}
	if index != 0 {
		return ClassInfo{}, vst3.ErrInvalidArgument
	}

	info := p.GetInfo()
	return ClassInfo{
		CID:         info.UID(),
		Cardinality: ManyInstances,
		Category:    vst3.CategoryAudioEffect,
		Name:        info.Name,
	}, nil
}

// recoverPanic keeps panics in plugin code from unwinding into the host.
// It must be deferred directly; result is overwritten on panic.
func recoverPanic(operation string, result *vst3.Result) {
	if r := recover(); r != nil {
		logging.Error("panic in %s: %v\n%s", operation, r, debug.Stack())
		if result != nil {
			*result = vst3.ResultInternalError
		}
	}
}

// registerComponent registers a component wrapper and returns its ID
func registerComponent(wrapper *componentWrapper) Handle {
	componentsMu.Lock()
	defer componentsMu.Unlock()
	id := nextID
	nextID++
	wrapper.id = id
	components[id] = wrapper
	return id
}

// unregisterComponent removes a component wrapper by ID
func unregisterComponent(id Handle) *componentWrapper {
	componentsMu.Lock()
	defer componentsMu.Unlock()
	wrapper := components[id]
	delete(components, id)
	return wrapper
}

// getComponent retrieves a component wrapper by ID
func getComponent(id Handle) *componentWrapper {
	componentsMu.RLock()
	defer componentsMu.RUnlock()

	if id == 0 {
		return nil
	}

	wrapper, exists := components[id]
	if !exists {
		return nil
	}

	return wrapper
}

// withComponent runs fn against the instance behind id, turning unknown
// handles, errors and panics into result codes.
func withComponent(operation string, id Handle, fn func(c *component) error) (result vst3.Result) {
	defer recoverPanic(operation, &result)

	wrapper := getComponent(id)
	if wrapper == nil {
		return vst3.ResultInvalidArgument
	}

	wrapper.mu.Lock()
	defer wrapper.mu.Unlock()

	if err := fn(wrapper.component); err != nil {
		wrapper.component.log.Debug("%s: %v", operation, err)
		return vst3.ResultFromError(err)
	}
	return vst3.ResultOK
}

// withView is withComponent for editor calls. It skips the processing lock;
// the component guards its view separately.
func withView(operation string, id Handle, fn func(c *component) error) (result vst3.Result) {
	defer recoverPanic(operation, &result)

	wrapper := getComponent(id)
	if wrapper == nil {
		return vst3.ResultInvalidArgument
	}

	if err := fn(wrapper.component); err != nil {
		wrapper.component.log.Debug("%s: %v", operation, err)
		return vst3.ResultFromError(err)
	}
	return vst3.ResultOK
}

// CreateInstance constructs a new instance of the class cid.
func CreateInstance(cid [16]byte) (h Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("panic in CreateInstance: %v\n%s", r, debug.Stack())
			h, err = 0, fmt.Errorf("creating instance: %v", r)
		}
	}()

	p := registeredPlugin()
	if p == nil {
		return 0, ErrNoPlugin
	}

	// Check if the class ID matches our plugin
	info := p.GetInfo()
	if cid != info.UID() {
		return 0, fmt.Errorf("unknown class %x: %w", cid, vst3.ErrInvalidArgument)
	}

	// Create processor instance
	processor := p.CreateProcessor()
	if processor == nil {
		return 0, fmt.Errorf("%s returned no processor", info.Name)
	}

	wrapper := &componentWrapper{
		component: newComponent(processor, logging.Default().With(info.Name)),
	}
	id := registerComponent(wrapper)
	wrapper.component.log.Debug("created instance %d", id)
	return id, nil
}

// ReleaseInstance tears down the instance and forgets its handle.
func ReleaseInstance(id Handle) (result vst3.Result) {
	defer recoverPanic("ReleaseInstance", &result)

	wrapper := unregisterComponent(id)
	if wrapper == nil {
		return vst3.ResultInvalidArgument
	}

	if err := wrapper.component.closeView(); err != nil {
		wrapper.component.log.Warn("closing view on release: %v", err)
	}
	return vst3.ResultOK
}

// InstanceCount returns the number of live instances.
func InstanceCount() int {
	componentsMu.RLock()
	defer componentsMu.RUnlock()
	return len(components)
}

// IComponent calls

func ComponentInitialize(id Handle) vst3.Result {
	return withComponent("ComponentInitialize", id, func(c *component) error {
		return c.Initialize(nil)
	})
}

func ComponentTerminate(id Handle) vst3.Result {
	return withView("ComponentTerminate", id, func(c *component) error {
		return c.Terminate()
	})
}

func ComponentGetBusCount(id Handle, mediaType, direction int32) int32 {
	var count int32
	withComponent("ComponentGetBusCount", id, func(c *component) error {
		count = c.GetBusCount(mediaType, direction)
		return nil
	})
	return count
}

func ComponentGetBusInfo(id Handle, mediaType, direction, index int32) (*vst3.BusInfo, vst3.Result) {
	var info *vst3.BusInfo
	result := withComponent("ComponentGetBusInfo", id, func(c *component) (err error) {
		info, err = c.GetBusInfo(mediaType, direction, index)
		return err
	})
	return info, result
}

func ComponentActivateBus(id Handle, mediaType, direction, index int32, state bool) vst3.Result {
	return withComponent("ComponentActivateBus", id, func(c *component) error {
		return c.ActivateBus(mediaType, direction, index, state)
	})
}

func ComponentSetActive(id Handle, state bool) vst3.Result {
	return withComponent("ComponentSetActive", id, func(c *component) error {
		return c.SetActive(state)
	})
}

func ComponentSetState(id Handle, state []byte) vst3.Result {
	return withComponent("ComponentSetState", id, func(c *component) error {
		return c.SetState(state)
	})
}

func ComponentGetState(id Handle) ([]byte, vst3.Result) {
	var state []byte
	result := withComponent("ComponentGetState", id, func(c *component) (err error) {
		state, err = c.GetState()
		return err
	})
	return state, result
}

// IAudioProcessor calls

func AudioSetBusArrangements(id Handle, inputs, outputs []vst3.SpeakerArrangement) vst3.Result {
	return withComponent("AudioSetBusArrangements", id, func(c *component) error {
		return c.SetBusArrangements(inputs, outputs)
	})
}

func AudioGetBusArrangement(id Handle, direction, index int32) (vst3.SpeakerArrangement, vst3.Result) {
	var arr vst3.SpeakerArrangement
	result := withComponent("AudioGetBusArrangement", id, func(c *component) (err error) {
		arr, err = c.GetBusArrangement(direction, index)
		return err
	})
	return arr, result
}

func AudioCanProcessSampleSize(id Handle, symbolicSampleSize int32) vst3.Result {
	return withComponent("AudioCanProcessSampleSize", id, func(c *component) error {
		return c.CanProcessSampleSize(symbolicSampleSize)
	})
}

func AudioGetLatencySamples(id Handle) uint32 {
	var latency uint32
	withComponent("AudioGetLatencySamples", id, func(c *component) error {
		latency = c.GetLatencySamples()
		return nil
	})
	return latency
}

func AudioSetupProcessing(id Handle, setup *vst3.ProcessSetup) vst3.Result {
	return withComponent("AudioSetupProcessing", id, func(c *component) error {
		return c.SetupProcessing(setup)
	})
}

func AudioSetProcessing(id Handle, state bool) vst3.Result {
	return withComponent("AudioSetProcessing", id, func(c *component) error {
		return c.SetProcessing(state)
	})
}

func AudioProcess(id Handle, data *vst3.ProcessData) vst3.Result {
	return withComponent("AudioProcess", id, func(c *component) error {
		return c.Process(data)
	})
}

func AudioGetTailSamples(id Handle) uint32 {
	var tail uint32
	withComponent("AudioGetTailSamples", id, func(c *component) error {
		tail = c.GetTailSamples()
		return nil
	})
	return tail
}

// IEditController calls

func EditControllerSetComponentState(id Handle, state []byte) vst3.Result {
	return withComponent("EditControllerSetComponentState", id, func(c *component) error {
		return c.SetComponentState(state)
	})
}

func EditControllerGetParameterCount(id Handle) int32 {
	var count int32
	withComponent("EditControllerGetParameterCount", id, func(c *component) error {
		count = c.GetParameterCount()
		return nil
	})
	return count
}

func EditControllerCreateView(id Handle, name string) (View, vst3.Result) {
	var view View
	result := withView("EditControllerCreateView", id, func(c *component) error {
		v, err := c.CreateView(name)
		if err != nil {
			return err
		}
		view = v.(View)
		return nil
	})
	return view, result
}
