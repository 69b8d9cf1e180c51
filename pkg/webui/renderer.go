package webui

import "encoding/json"

// NativeFunctionName is the function the page calls to reach native code.
const NativeFunctionName = "sendToPlugin"

// Completion resolves the page-side promise of a native call.
type Completion func(result json.RawMessage)

// NativeFunction handles one page call. Args is the JSON array of arguments.
type NativeFunction func(args json.RawMessage, complete Completion)

// Renderer is the embedded web view the editor drives.
type Renderer interface {
	GoToURL(url string) error
	// EvaluateJavascript schedules script for asynchronous evaluation.
	EvaluateJavascript(script string) error
	Close() error
}

// Options configure a renderer at construction.
type Options struct {
	NativeFunctions  map[string]NativeFunction
	ResourceProvider ResourceProvider
	// Origin is the URL prefix the resource provider answers for.
	Origin         string
	UserDataFolder string
}

// RendererFactory builds a concrete renderer, such as a platform web view.
type RendererFactory func(opts Options) (Renderer, error)
