// Package midi decodes the host's flattened MIDI 1.0 event bytes into typed events.
package midi

import (
	"fmt"
)

type EventType uint8

const (
	EventTypeNoteOff EventType = iota
	EventTypeNoteOn
	EventTypePolyPressure
	EventTypeControlChange
	EventTypeProgramChange
	EventTypeChannelPressure
	EventTypePitchBend
)

type Event interface {
	Type() EventType
	Channel() uint8
	SampleOffset() int32
	String() string
}

type BaseEvent struct {
	EventChannel uint8
	Offset       int32
}

func (e BaseEvent) Channel() uint8 {
	return e.EventChannel
}

func (e BaseEvent) SampleOffset() int32 {
	return e.Offset
}

type NoteOnEvent struct {
	BaseEvent
	NoteNumber uint8
	Velocity   uint8
}

func (e NoteOnEvent) Type() EventType {
	return EventTypeNoteOn
}

func (e NoteOnEvent) String() string {
	return fmt.Sprintf("NoteOn{ch:%d, note:%d, vel:%d, offset:%d}",
		e.EventChannel, e.NoteNumber, e.Velocity, e.Offset)
}

type NoteOffEvent struct {
	BaseEvent
	NoteNumber uint8
	Velocity   uint8
}

func (e NoteOffEvent) Type() EventType {
	return EventTypeNoteOff
}

func (e NoteOffEvent) String() string {
	return fmt.Sprintf("NoteOff{ch:%d, note:%d, vel:%d, offset:%d}",
		e.EventChannel, e.NoteNumber, e.Velocity, e.Offset)
}

type ControlChangeEvent struct {
	BaseEvent
	Controller uint8
	Value      uint8
}

func (e ControlChangeEvent) Type() EventType {
	return EventTypeControlChange
}

func (e ControlChangeEvent) String() string {
	return fmt.Sprintf("CC{ch:%d, ctrl:%d, val:%d, offset:%d}",
		e.EventChannel, e.Controller, e.Value, e.Offset)
}

type PitchBendEvent struct {
	BaseEvent
	Value int16 // -8192 to 8191, 0 is center
}

func (e PitchBendEvent) Type() EventType {
	return EventTypePitchBend
}

func (e PitchBendEvent) String() string {
	return fmt.Sprintf("PitchBend{ch:%d, val:%d, offset:%d}",
		e.EventChannel, e.Value, e.Offset)
}

func (e PitchBendEvent) NormalizedValue() float64 {
	return float64(e.Value) / 8192.0
}

type PolyPressureEvent struct {
	BaseEvent
	NoteNumber uint8
	Pressure   uint8
}

func (e PolyPressureEvent) Type() EventType {
	return EventTypePolyPressure
}

func (e PolyPressureEvent) String() string {
	return fmt.Sprintf("PolyPressure{ch:%d, note:%d, pressure:%d, offset:%d}",
		e.EventChannel, e.NoteNumber, e.Pressure, e.Offset)
}

type ChannelPressureEvent struct {
	BaseEvent
	Pressure uint8
}

func (e ChannelPressureEvent) Type() EventType {
	return EventTypeChannelPressure
}

func (e ChannelPressureEvent) String() string {
	return fmt.Sprintf("ChannelPressure{ch:%d, pressure:%d, offset:%d}",
		e.EventChannel, e.Pressure, e.Offset)
}

type ProgramChangeEvent struct {
	BaseEvent
	Program uint8
}

func (e ProgramChangeEvent) Type() EventType {
	return EventTypeProgramChange
}

func (e ProgramChangeEvent) String() string {
	return fmt.Sprintf("ProgramChange{ch:%d, prog:%d, offset:%d}",
		e.EventChannel, e.Program, e.Offset)
}

// Decode parses one channel voice message. System messages, running status
// and truncated messages report false.
func Decode(data []byte, offset int32) (Event, bool) {
	if len(data) == 0 || data[0] < 0x80 || data[0] >= 0xF0 {
		return nil, false
	}

	base := BaseEvent{EventChannel: data[0] & 0x0F, Offset: offset}
	status := data[0] & 0xF0

	need := 3
	if status == 0xC0 || status == 0xD0 {
		need = 2
	}
	if len(data) < need {
		return nil, false
	}

	switch status {
	case 0x80:
		return NoteOffEvent{BaseEvent: base, NoteNumber: data[1], Velocity: data[2]}, true
	case 0x90:
		// Note on with zero velocity is a note off.
		if data[2] == 0 {
			return NoteOffEvent{BaseEvent: base, NoteNumber: data[1]}, true
		}
		return NoteOnEvent{BaseEvent: base, NoteNumber: data[1], Velocity: data[2]}, true
	case 0xA0:
		return PolyPressureEvent{BaseEvent: base, NoteNumber: data[1], Pressure: data[2]}, true
	case 0xB0:
		return ControlChangeEvent{BaseEvent: base, Controller: data[1], Value: data[2]}, true
	case 0xC0:
		return ProgramChangeEvent{BaseEvent: base, Program: data[1]}, true
	case 0xD0:
		return ChannelPressureEvent{BaseEvent: base, Pressure: data[1]}, true
	default: // 0xE0
		value := int16(data[2]&0x7F)<<7 | int16(data[1]&0x7F)
		return PitchBendEvent{BaseEvent: base, Value: value - 8192}, true
	}
}
