// SPDX-License-Identifier: GPL-2.0-or-later

// Package frame fits a rigid body frame to a set of points, used to carry
// the body along with the planted feet.
package frame

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"goquadruped/math/vec"
	"goquadruped/scene"
)

// Fit returns the rotation and translation that map origins onto targets
// with the least squared error: targets[i] ~ rot*origins[i] + trans.
func Fit(origins, targets []vec.Vec3) (vec.Vec3, vec.Quat, error) {
	if len(origins) != len(targets) {
		return vec.Vec3{}, vec.QuatIdent(), errors.Errorf("frame: %d origins but %d targets", len(origins), len(targets))
	}
	if len(origins) < 3 {
		return vec.Vec3{}, vec.QuatIdent(), errors.Errorf("frame: need 3 points, got %d", len(origins))
	}
	co, ct := centroid(origins), centroid(targets)

	h := mat.NewDense(3, 3, nil)
	for i := range origins {
		o := vec.Sub(origins[i], co)
		t := vec.Sub(targets[i], ct)
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				h.Set(r, c, h.At(r, c)+float64(o.Idx(r))*float64(t.Idx(c)))
			}
		}
	}
	var svd mat.SVD
	if ok := svd.Factorize(h, mat.SVDFull); !ok {
		return vec.Vec3{}, vec.QuatIdent(), errors.New("frame: svd did not converge")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// R = V diag(1, 1, d) U^T, d flips a reflection into a rotation.
	var vu mat.Dense
	vu.Mul(&v, u.T())
	d := 1.0
	if mat.Det(&vu) < 0 {
		d = -1
	}
	corr := mat.NewDiagDense(3, []float64{1, 1, d})
	var rot, tmp mat.Dense
	tmp.Mul(&v, corr)
	rot.Mul(&tmp, u.T())

	col := func(c int) vec.Vec3 {
		return vec.Vec3{X: float32(rot.At(0, c)), Y: float32(rot.At(1, c)), Z: float32(rot.At(2, c))}
	}
	q := vec.QuatFromBasis(col(0), col(1), col(2))
	return vec.Sub(ct, q.Rotate(co)), q, nil
}

func centroid(ps []vec.Vec3) vec.Vec3 {
	var c vec.Vec3
	for _, p := range ps {
		c = vec.Add(c, p)
	}
	return c.Scale(1 / float32(len(ps)))
}

// Blend moves rest toward the fitted motion of rest by the fraction blend.
func Blend(rest scene.Transform, trans vec.Vec3, rot vec.Quat, blend float32) scene.Transform {
	fitted := rest
	fitted.Rotation = rot.Mul(rest.Rotation).Normalize()
	fitted.Translation = vec.Add(rot.Rotate(rest.Translation), trans)

	out := rest
	out.Rotation = vec.Slerp(rest.Rotation, fitted.Rotation, blend)
	out.Translation = vec.Lerp(rest.Translation, fitted.Translation, blend)
	return out
}
