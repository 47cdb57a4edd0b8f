// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwgen

import "github.com/pkg/errors"

// Error kinds. Functions in this module wrap these with context; use
// errors.Cause to get the kind back:
//
//	if errors.Cause(err) == hwgen.ErrUnresolvedConstant {
//		// ...
//	}
//
var (
	// ErrInvalidPinSpec reports a malformed pin descriptor: bad arity,
	// unknown direction, empty name or a width below 1.
	ErrInvalidPinSpec = errors.New("invalid pin spec")
	// ErrInvalidLiteralFormat reports an unknown base letter or a numeric
	// payload that cannot be parsed in its base.
	ErrInvalidLiteralFormat = errors.New("invalid literal format")
	// ErrUnresolvedConstant reports a reference to a constant that was never bound.
	ErrUnresolvedConstant = errors.New("unresolved constant")
	// ErrAmbiguousName reports two signals that end up with the same fully
	// qualified name.
	ErrAmbiguousName = errors.New("ambiguous name")
)
