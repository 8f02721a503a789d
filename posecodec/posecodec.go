// SPDX-License-Identifier: GPL-2.0-or-later

// Package posecodec encodes pose frames in the protobuf wire format
// described by frame.proto. The codec is written directly on protowire
// so Frame keeps vec.Quat rotations without a generated message type.
package posecodec

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"goquadruped/math/vec"
)

type Override struct {
	Joint    uint32
	Rotation vec.Quat
}

// Frame is the joint override set of one skeleton at one tick.
type Frame struct {
	Tick      uint64
	Time      float64
	Model     uint32
	Overrides []Override
}

const (
	fieldTick      protowire.Number = 1
	fieldTime      protowire.Number = 2
	fieldOverrides protowire.Number = 3
	fieldModel     protowire.Number = 4

	fieldJoint protowire.Number = 1
	fieldX     protowire.Number = 2
	fieldY     protowire.Number = 3
	fieldZ     protowire.Number = 4
	fieldW     protowire.Number = 5
)

// SortOverrides orders the overrides by joint.
func (f *Frame) SortOverrides() {
	sort.Slice(f.Overrides, func(i, j int) bool { return f.Overrides[i].Joint < f.Overrides[j].Joint })
}

// Append encodes f onto b.
func Append(b []byte, f *Frame) []byte {
	b = protowire.AppendTag(b, fieldTick, protowire.VarintType)
	b = protowire.AppendVarint(b, f.Tick)
	b = protowire.AppendTag(b, fieldTime, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(f.Time))
	if f.Model != 0 {
		b = protowire.AppendTag(b, fieldModel, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(f.Model))
	}
	var o []byte
	for _, ov := range f.Overrides {
		o = appendOverride(o[:0], ov)
		b = protowire.AppendTag(b, fieldOverrides, protowire.BytesType)
		b = protowire.AppendBytes(b, o)
	}
	return b
}

func Marshal(f *Frame) []byte {
	return Append(nil, f)
}

func appendOverride(b []byte, o Override) []byte {
	b = protowire.AppendTag(b, fieldJoint, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(o.Joint))
	for i, v := range []float32{o.Rotation.X, o.Rotation.Y, o.Rotation.Z, o.Rotation.W} {
		b = protowire.AppendTag(b, fieldX+protowire.Number(i), protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(v))
	}
	return b
}

// Unmarshal decodes one frame. Unknown fields are skipped, truncated input
// is an error.
func Unmarshal(b []byte) (Frame, error) {
	var f Frame
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Frame{}, errors.Wrap(protowire.ParseError(n), "posecodec: frame tag")
		}
		b = b[n:]
		switch {
		case num == fieldTick && typ == protowire.VarintType:
			f.Tick, n = protowire.ConsumeVarint(b)
		case num == fieldTime && typ == protowire.Fixed64Type:
			var v uint64
			v, n = protowire.ConsumeFixed64(b)
			f.Time = math.Float64frombits(v)
		case num == fieldModel && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			f.Model = uint32(v)
		case num == fieldOverrides && typ == protowire.BytesType:
			var v []byte
			v, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				o, err := unmarshalOverride(v)
				if err != nil {
					return Frame{}, err
				}
				f.Overrides = append(f.Overrides, o)
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return Frame{}, errors.Wrapf(protowire.ParseError(n), "posecodec: frame field %d", num)
		}
		b = b[n:]
	}
	return f, nil
}

func unmarshalOverride(b []byte) (Override, error) {
	o := Override{Rotation: vec.QuatIdent()}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Override{}, errors.Wrap(protowire.ParseError(n), "posecodec: override tag")
		}
		b = b[n:]
		switch {
		case num == fieldJoint && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			o.Joint = uint32(v)
		case num >= fieldX && num <= fieldW && typ == protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			c := math.Float32frombits(v)
			switch num {
			case fieldX:
				o.Rotation.X = c
			case fieldY:
				o.Rotation.Y = c
			case fieldZ:
				o.Rotation.Z = c
			case fieldW:
				o.Rotation.W = c
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return Override{}, errors.Wrapf(protowire.ParseError(n), "posecodec: override field %d", num)
		}
		b = b[n:]
	}
	return o, nil
}
