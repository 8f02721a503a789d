// SPDX-License-Identifier: GPL-2.0-or-later

// Package history records the most recent pose frames and stores them on disk.
package history

import (
	"os"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"goquadruped/posecodec"
)

// Recorder keeps at most max encoded frames. A cursor walks them for playback;
// it rests one past the newest frame.
type Recorder struct {
	frames [][]byte
	idx    int
	max    int
}

// New returns a recorder bounded to maxFrames. Zero disables recording.
func New(maxFrames int) *Recorder {
	return &Recorder{max: maxFrames}
}

func (h *Recorder) Len() int {
	return len(h.frames)
}

// Add records f and drops the oldest frames beyond the bound.
func (h *Recorder) Add(f *posecodec.Frame) {
	if h.max <= 0 {
		return
	}
	h.frames = append(h.frames, posecodec.Marshal(f))
	if over := len(h.frames) - h.max; over > 0 {
		h.frames = append(h.frames[:0], h.frames[over:]...)
	}
	h.idx = len(h.frames)
}

// Current returns the frame under the cursor.
func (h *Recorder) Current() (posecodec.Frame, bool) {
	if h.idx >= len(h.frames) {
		return posecodec.Frame{}, false
	}
	f, err := posecodec.Unmarshal(h.frames[h.idx])
	return f, err == nil
}

func (h *Recorder) Back() {
	if h.idx > 0 {
		h.idx--
	}
}

func (h *Recorder) Forward() {
	if h.idx < len(h.frames) {
		h.idx++
	}
}

// Frames decodes every recorded frame, oldest first.
func (h *Recorder) Frames() ([]posecodec.Frame, error) {
	out := make([]posecodec.Frame, 0, len(h.frames))
	for i, b := range h.frames {
		f, err := posecodec.Unmarshal(b)
		if err != nil {
			return nil, errors.Wrapf(err, "history: frame %d", i)
		}
		out = append(out, f)
	}
	return out, nil
}

const fieldFrame protowire.Number = 1

// Marshal encodes the recording as repeated length delimited frames.
func (h *Recorder) Marshal() []byte {
	var b []byte
	for _, f := range h.frames {
		b = protowire.AppendTag(b, fieldFrame, protowire.BytesType)
		b = protowire.AppendBytes(b, f)
	}
	return b
}

// Unmarshal replaces the recording with the frames in b, keeping the newest
// ones that fit.
func (h *Recorder) Unmarshal(b []byte) error {
	var frames [][]byte
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "history: decode")
		}
		b = b[n:]
		if num != fieldFrame || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
		} else {
			var f []byte
			f, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				if _, err := posecodec.Unmarshal(f); err != nil {
					return errors.Wrapf(err, "history: frame %d", len(frames))
				}
				frames = append(frames, append([]byte(nil), f...))
			}
		}
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "history: decode")
		}
		b = b[n:]
	}
	if h.max > 0 && len(frames) > h.max {
		frames = frames[len(frames)-h.max:]
	}
	h.frames = frames
	h.idx = len(h.frames)
	return nil
}

// Load reads a recording file. A missing file leaves the recorder empty.
func (h *Recorder) Load(path string) error {
	in, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "history: read")
	}
	return h.Unmarshal(in)
}

func (h *Recorder) Save(path string) error {
	if err := os.WriteFile(path, h.Marshal(), 0660); err != nil {
		return errors.Wrap(err, "history: write")
	}
	return nil
}
