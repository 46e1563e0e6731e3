package domain

import "errors"

var (
	ErrTableNotFound = errors.New("table not found")
	ErrTableClosed   = errors.New("table closed")
	ErrUnknownStyle  = errors.New("unknown deck style")
	ErrUnknownFilter = errors.New("unknown category filter")
	ErrReshuffleBusy = errors.New("reshuffle already in flight")
)
