package sph

import "errors"

var (
	// ErrInvalidParams indicates a physics parameter outside its valid range.
	ErrInvalidParams = errors.New("sph: invalid parameters")

	// ErrNilSource indicates a solver was created without a random source.
	ErrNilSource = errors.New("sph: nil random source")
)
