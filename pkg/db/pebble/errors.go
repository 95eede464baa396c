package pebble

import "errors"

var (
	ErrClosed          = errors.New("pebble: store is closed")
	ErrNotFound        = errors.New("pebble: key not found")
	ErrBatchDone       = errors.New("pebble: batch already committed or closed")
	ErrIteratorInvalid = errors.New("pebble: iterator is not positioned")
)
