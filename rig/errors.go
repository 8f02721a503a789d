// SPDX-License-Identifier: GPL-2.0-or-later

package rig

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrCycle            = errors.New("parent cycle")
	ErrUnknownEntity    = errors.New("unknown entity")
	ErrUnknownBone      = errors.New("unknown bone")
	ErrRange            = errors.New("value out of range")
	ErrMissingBinder    = errors.New("component needs a binder")
	ErrNoModel          = errors.New("no model to bind against")
	ErrConflict         = errors.New("joint has more than one writer")
	ErrUnusedConstraint = errors.New("constraint is not on a chain joint")
	ErrUnknownComponent = errors.New("unknown component")
	ErrAsset            = errors.New("asset")
	ErrSyntax           = errors.New("malformed declaration")
)

// FieldError locates a load failure in the declaration. Entity is -1 for
// errors about the file as a whole.
type FieldError struct {
	Entity int
	Field  string
	Err    error
}

func (e *FieldError) Error() string {
	if e.Entity < 0 {
		return fmt.Sprintf("rig: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("rig: entity %d: %s: %v", e.Entity, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldErr(entity int, field string, kind error, format string, args ...interface{}) error {
	return &FieldError{
		Entity: entity,
		Field:  field,
		Err:    errors.Wrapf(kind, format, args...),
	}
}
