// Package sona is the Sona plugin: a passthrough processor with a web editor.
package sona

import (
	"os"

	"github.com/justyntemme/sona/pkg/config"
	"github.com/justyntemme/sona/pkg/editor"
	"github.com/justyntemme/sona/pkg/framework/bus"
	fwplugin "github.com/justyntemme/sona/pkg/framework/plugin"
	"github.com/justyntemme/sona/pkg/framework/process"
	"github.com/justyntemme/sona/pkg/plugin"
	"github.com/justyntemme/sona/pkg/webui"
)

// Name is the plugin name reported to hosts.
const Name = "Sona"

// Processor passes audio through and silences outputs without an input.
type Processor struct {
	*fwplugin.BaseProcessor
	cfg *config.Config
}

var (
	_ plugin.Processor      = (*Processor)(nil)
	_ plugin.EditorProvider = (*Processor)(nil)
)

// NewProcessor creates a processor with one stereo input and output.
func NewProcessor(cfg *config.Config) *Processor {
	return &Processor{
		BaseProcessor: fwplugin.NewBaseProcessor(bus.NewStereoConfiguration()),
		cfg:           cfg,
	}
}

// ProcessAudio passes the main bus through and zeros outputs that have no
// input channel. MIDI in the context is ignored.
func (p *Processor) ProcessAudio(ctx *process.Context) {
	ctx.PassThroughMain()
	ctx.ClearUnmatchedOutputs()
}

// IsLayoutSupported accepts a mono or stereo main output only.
func (p *Processor) IsLayoutSupported(layout bus.Layout) bool {
	out := layout.MainOutput()
	return out == bus.Mono || out == bus.Stereo
}

// CreateEditor opens the web editor. Outside dev mode the built UI is served
// from the configured UI directory.
func (p *Processor) CreateEditor(factory webui.RendererFactory) (plugin.View, error) {
	var opts []webui.Option
	if p.cfg != nil && !p.cfg.DevMode && p.cfg.UIDir != "" {
		opts = append(opts, webui.WithResourceProvider(webui.NewFSProvider(os.DirFS(p.cfg.UIDir))))
	}
	e, err := editor.New(factory, p.cfg, opts...)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Host-visible metadata. Sona has no MIDI, no tail and a single unnamed
// program.

func (p *Processor) Name() string { return Name }

func (p *Processor) AcceptsMidi() bool { return false }

func (p *Processor) ProducesMidi() bool { return false }

func (p *Processor) IsMidiEffect() bool { return false }

func (p *Processor) TailLengthSeconds() float64 { return 0 }

func (p *Processor) NumPrograms() int { return 1 }

func (p *Processor) CurrentProgram() int { return 0 }

func (p *Processor) SetCurrentProgram(index int) {}

func (p *Processor) ProgramName(index int) string { return "" }

func (p *Processor) ChangeProgramName(index int, name string) {}
