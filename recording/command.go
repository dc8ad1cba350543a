// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package recording

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/batch/render"
)

// CommandType identifies the type of a command.
// Each command type corresponds to one render.Device call.
type CommandType uint8

const (
	// Buffer commands
	CmdAllocateBuffer CommandType = iota // Allocate an instance buffer region
	CmdUploadBuffer                      // Upload a region to the GPU
	CmdReleaseBuffer                     // Return a region to the allocator

	// Issue commands
	CmdBindState   // Bind a state bundle and samplers
	CmdBindTexture // Bind a texture slot
	CmdDraw        // Submit an instanced draw
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdAllocateBuffer: "AllocateBuffer",
	CmdUploadBuffer:   "UploadBuffer",
	CmdReleaseBuffer:  "ReleaseBuffer",
	CmdBindState:      "BindState",
	CmdBindTexture:    "BindTexture",
	CmdDraw:           "Draw",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is the interface implemented by all command types.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// --------------------------------------------------------------------------
// Buffer Commands
// --------------------------------------------------------------------------

// AllocateBufferCommand records a region allocation.
type AllocateBufferCommand struct {
	Region      *render.BufferRegion
	VertexCount int
}

// Type implements Command.
func (AllocateBufferCommand) Type() CommandType { return CmdAllocateBuffer }

// UploadBufferCommand records an upload of a region.
type UploadBufferCommand struct {
	Region *render.BufferRegion
	// Data is a copy of the region contents at upload time.
	Data []byte
}

// Type implements Command.
func (UploadBufferCommand) Type() CommandType { return CmdUploadBuffer }

// ReleaseBufferCommand records a region release.
type ReleaseBufferCommand struct {
	Region *render.BufferRegion
}

// Type implements Command.
func (ReleaseBufferCommand) Type() CommandType { return CmdReleaseBuffer }

// --------------------------------------------------------------------------
// Issue Commands
// --------------------------------------------------------------------------

// BindStateCommand binds a state bundle.
type BindStateCommand struct {
	Bundle   *render.StateBundle
	Samplers render.SamplerPair
}

// Type implements Command.
func (BindStateCommand) Type() CommandType { return CmdBindState }

// BindTextureCommand binds a texture to a slot. Texture is nil for an
// unbind.
type BindTextureCommand struct {
	Slot    int
	Texture render.Texture
}

// Type implements Command.
func (BindTextureCommand) Type() CommandType { return CmdBindTexture }

// DrawCommand submits instanceCount instances from Range.
type DrawCommand struct {
	Topology      gputypes.PrimitiveTopology
	Range         render.VertexRange
	InstanceCount int
}

// Type implements Command.
func (DrawCommand) Type() CommandType { return CmdDraw }
