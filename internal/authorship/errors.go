package authorship

import "errors"

var (
	// ErrNotInitialized signals a lifecycle misuse by the host: the block was
	// never initialized before an operation ran.
	ErrNotInitialized = errors.New("block not initialized")

	ErrUnclesAlreadySet     = errors.New("uncles already set in block")
	ErrTooManyUncles        = errors.New("too many uncles")
	ErrGenerationTooOld     = errors.New("uncle generation too old")
	ErrInvalidUncleParent   = errors.New("uncle parent is not a recent ancestor")
	ErrUncleIsAncestor      = errors.New("uncle is already canonical")
	ErrUncleAlreadyIncluded = errors.New("uncle already included")
)
