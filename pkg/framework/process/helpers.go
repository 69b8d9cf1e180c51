package process

// ProcessChannels processes all available channels with the given function
func (ctx *Context) ProcessChannels(fn func(ch int, input, output []float32)) {
	numChannels := ctx.GetNumChannels()

	for ch := 0; ch < numChannels; ch++ {
		fn(ch, ctx.Input[ch], ctx.Output[ch])
	}
}

// CopyInputToOutput copies input to output for all channels. Channels whose
// input and output share memory are left alone.
func (ctx *Context) CopyInputToOutput() {
	ctx.ProcessChannels(func(ch int, input, output []float32) {
		copyChannel(output, input)
	})
}

// copyChannel copies input into output unless both share memory.
func copyChannel(output, input []float32) {
	if len(input) > 0 && len(output) > 0 && &input[0] == &output[0] {
		return
	}
	copy(output, input)
}

// ClearUnmatchedOutputs zeros every output channel whose index is at or
// beyond the number of input channels, over the full block.
func (ctx *Context) ClearUnmatchedOutputs() {
	for ch := ctx.NumInputChannels(); ch < ctx.NumOutputChannels(); ch++ {
		clear(ctx.Output[ch])
	}
}

// GetNumChannels returns the minimum of input and output channels
func (ctx *Context) GetNumChannels() int {
	numChannels := ctx.NumInputChannels()
	if ctx.NumOutputChannels() < numChannels {
		numChannels = ctx.NumOutputChannels()
	}
	return numChannels
}
