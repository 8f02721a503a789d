// SPDX-License-Identifier: GPL-2.0-or-later

package rig

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
	"gopkg.in/Knetic/govaluate.v3"
)

// Scalar is a number in a rig file. It may be written as a JSON number or
// as an expression string such as "-pi/2".
type Scalar float32

var constants = map[string]interface{}{
	"pi":  math.Pi,
	"tau": 2 * math.Pi,
}

// Eval evaluates an arithmetic expression over the constants pi and tau.
func Eval(expr string) (float32, error) {
	e, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return 0, errors.Wrapf(err, "expression %q", expr)
	}
	r, err := e.Evaluate(constants)
	if err != nil {
		return 0, errors.Wrapf(err, "expression %q", expr)
	}
	f, ok := r.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.Errorf("expression %q is not a finite number", expr)
	}
	return float32(f), nil
}

func (s *Scalar) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*s = Scalar(f)
		return nil
	}
	var expr string
	if err := json.Unmarshal(b, &expr); err != nil {
		return errors.Errorf("want a number or an expression, got %s", b)
	}
	v, err := Eval(expr)
	if err != nil {
		return err
	}
	*s = Scalar(v)
	return nil
}
