// SPDX-License-Identifier: GPL-2.0-or-later

package posecodec

import (
	"os"
	"reflect"
	"regexp"
	"strconv"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"goquadruped/math/vec"
)

func sample() *Frame {
	return &Frame{
		Tick:  4711,
		Time:  78.5,
		Model: 2,
		Overrides: []Override{
			{Joint: 7, Rotation: vec.QuatAxisAngle(vec.UnitX, 0.3)},
			{Joint: 8, Rotation: vec.QuatAxisAngle(vec.Vec3{X: 1, Y: 1}, -1.2)},
			{Joint: 300, Rotation: vec.QuatIdent()},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	f := sample()
	got, err := Unmarshal(Marshal(f))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(&got, f) {
		t.Errorf("round trip gave %+v want %+v", got, *f)
	}
}

func TestTruncated(t *testing.T) {
	b := Marshal(sample())
	for _, n := range []int{1, 5, 13, len(b) / 2, len(b) - 1} {
		if _, err := Unmarshal(b[:n]); err == nil {
			t.Errorf("Unmarshal of %d of %d bytes succeeded", n, len(b))
		}
	}
}

func TestSkipsUnknownFields(t *testing.T) {
	b := Marshal(&Frame{Tick: 3})
	b = protowire.AppendTag(b, 15, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("later"))
	got, err := Unmarshal(b)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Tick != 3 {
		t.Errorf("tick %d", got.Tick)
	}
}

func TestSortOverrides(t *testing.T) {
	f := Frame{Overrides: []Override{{Joint: 3}, {Joint: 1}, {Joint: 2}}}
	f.SortOverrides()
	for i, o := range f.Overrides {
		if o.Joint != uint32(i+1) {
			t.Fatalf("overrides out of order: %+v", f.Overrides)
		}
	}
}

func TestSchemaMatchesFields(t *testing.T) {
	b, err := os.ReadFile("frame.proto")
	if err != nil {
		t.Fatal(err)
	}
	msg := regexp.MustCompile(`(?s)message (\w+) \{(.*?)\n\}`)
	field := regexp.MustCompile(`(\w+) = (\d+);`)
	got := map[string]protowire.Number{}
	for _, m := range msg.FindAllStringSubmatch(string(b), -1) {
		for _, f := range field.FindAllStringSubmatch(m[2], -1) {
			n, err := strconv.Atoi(f[2])
			if err != nil {
				t.Fatal(err)
			}
			got[m[1]+"."+f[1]] = protowire.Number(n)
		}
	}
	want := map[string]protowire.Number{
		"Frame.tick":      fieldTick,
		"Frame.time":      fieldTime,
		"Frame.overrides": fieldOverrides,
		"Frame.model":     fieldModel,
		"Override.joint":  fieldJoint,
		"Override.x":      fieldX,
		"Override.y":      fieldY,
		"Override.z":      fieldZ,
		"Override.w":      fieldW,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("frame.proto fields = %v, want %v", got, want)
	}
}
