// SPDX-License-Identifier: GPL-2.0-or-later

package skeleton

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"goquadruped/math/vec"
)

type jointFile struct {
	Name        string      `json:"name"`
	Parent      string      `json:"parent,omitempty"`
	Translation [3]float32  `json:"translation"`
	Rotation    *[4]float32 `json:"rotation,omitempty"`
}

type skeletonFile struct {
	Name   string      `json:"name"`
	Joints []jointFile `json:"joints"`
}

// Decode reads the JSON skeleton format: joints listed parents first,
// parents referenced by name, rotations as x, y, z, w.
func Decode(data []byte) (*Skeleton, error) {
	var f skeletonFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "skeleton: decode")
	}
	index := make(map[string]Joint, len(f.Joints))
	defs := make([]JointDef, len(f.Joints))
	for i, j := range f.Joints {
		parent := NoJoint
		if j.Parent != "" {
			p, ok := index[j.Parent]
			if !ok {
				return nil, errors.Errorf("skeleton %s: joint %q references unknown or later parent %q", f.Name, j.Name, j.Parent)
			}
			parent = p
		}
		rot := vec.QuatIdent()
		if j.Rotation != nil {
			rot = vec.Quat{X: j.Rotation[0], Y: j.Rotation[1], Z: j.Rotation[2], W: j.Rotation[3]}
		}
		defs[i] = JointDef{
			Name:        j.Name,
			Parent:      parent,
			Translation: vec.VFromA(j.Translation),
			Rotation:    rot,
		}
		index[j.Name] = Joint(i)
	}
	return New(f.Name, defs)
}

// DirSource serves skeleton files from a directory, caching each by reference.
type DirSource struct {
	Dir string

	mu    sync.Mutex
	cache map[string]*Skeleton
}

func (d *DirSource) Skeleton(ref string) (*Skeleton, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.cache[ref]; ok {
		return s, nil
	}
	clean := filepath.Clean(ref)
	if filepath.IsAbs(clean) || clean == ".." || len(clean) > 2 && clean[:3] == ".."+string(filepath.Separator) {
		return nil, errors.Errorf("skeleton: reference %q leaves the asset directory", ref)
	}
	data, err := os.ReadFile(filepath.Join(d.Dir, clean))
	if err != nil {
		return nil, errors.Wrapf(err, "skeleton: read %s", ref)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "skeleton: %s", ref)
	}
	if d.cache == nil {
		d.cache = make(map[string]*Skeleton)
	}
	d.cache[ref] = s
	return s, nil
}
