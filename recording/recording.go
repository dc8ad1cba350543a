// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package recording

import (
	"fmt"

	"github.com/gogpu/batch/render"
)

// Recording is an immutable list of recorded device commands.
type Recording struct {
	commands []Command
}

// Commands returns the recorded commands.
func (r *Recording) Commands() []Command {
	return r.commands
}

// Playback replays the issue commands onto dev. Every recorded region is
// reallocated on dev with its uploaded contents, so draws reference dev's
// own buffers. Regions are released again once playback ends.
func (r *Recording) Playback(dev render.Device) error {
	regions := make(map[*render.BufferRegion]*render.BufferRegion)
	defer func() {
		for _, region := range regions {
			dev.ReleaseBuffer(region)
		}
	}()

	for i, cmd := range r.commands {
		var err error
		switch c := cmd.(type) {
		case UploadBufferCommand:
			err = r.replayUpload(dev, regions, c)
		case BindStateCommand:
			err = dev.BindState(c.Bundle, c.Samplers)
		case BindTextureCommand:
			err = dev.BindTextureSlot(c.Slot, c.Texture)
		case DrawCommand:
			rng := c.Range
			mapped, ok := regions[rng.Region]
			if !ok {
				return fmt.Errorf("recording: command %d draws from a region that was never uploaded", i)
			}
			rng.Region = mapped
			err = dev.SubmitInstancedDraw(c.Topology, rng, c.InstanceCount)
		case AllocateBufferCommand, ReleaseBufferCommand:
			// Regions are recreated on upload and released at the end.
		}
		if err != nil {
			return fmt.Errorf("recording: replay %s (command %d): %w", cmd.Type(), i, err)
		}
	}
	return nil
}

func (r *Recording) replayUpload(dev render.Device, regions map[*render.BufferRegion]*render.BufferRegion, c UploadBufferCommand) error {
	dst, ok := regions[c.Region]
	if !ok {
		var err error
		dst, err = dev.AllocateBuffer(c.Region.VertexCount)
		if err != nil {
			return err
		}
		regions[c.Region] = dst
	}
	copy(dst.Data, c.Data)
	return dev.UploadBuffer(dst)
}
