// Package vst3 holds the host-facing VST3 contract in plain Go: result codes,
// interface IDs, bus and speaker constants and the component interfaces the
// C shim dispatches into.
package vst3

import "errors"

// Result is the tresult value returned across the host boundary.
type Result int32

// Result codes as defined by the VST3 SDK (non-COM platforms).
const (
	ResultOK              Result = 0
	ResultTrue            Result = ResultOK
	ResultFalse           Result = 1
	ResultInvalidArgument Result = 2
	ResultNotImplemented  Result = 3
	ResultInternalError   Result = 4
	ResultNotInitialized  Result = 5
	ResultOutOfMemory     Result = 6
)

// Interface IDs
var (
	IIDFUnknown = [16]byte{
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46,
	}
	IIDIPluginFactory = [16]byte{
		0x7A, 0x4D, 0x81, 0x1C, 0x52, 0x11, 0x4A, 0x1F,
		0xAE, 0xD9, 0xD2, 0xEE, 0x0B, 0x43, 0xBF, 0x9F,
	}
)

// Class categories
const (
	CategoryAudioEffect = "Audio Module Class"
)

// Error codes
type Error int

const (
	ErrNotImplemented  Error = -1
	ErrInvalidArgument Error = -2
	ErrNotSupported    Error = -3
)

func (e Error) Error() string {
	switch e {
	case ErrNotImplemented:
		return "not implemented"
	case ErrInvalidArgument:
		return "invalid argument"
	case ErrNotSupported:
		return "not supported"
	default:
		return "unknown error"
	}
}

// ResultFromError maps a Go error onto the result code handed back to the host.
// Wrapped errors are matched with errors.Is.
func ResultFromError(err error) Result {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, ErrNotImplemented):
		return ResultNotImplemented
	case errors.Is(err, ErrInvalidArgument):
		return ResultInvalidArgument
	default:
		return ResultFalse
	}
}
