package simulation

import "errors"

var (
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrUnsupportedFormat = errors.New("unsupported config format")
	ErrDuplicateFlock    = errors.New("flock name already used")
	ErrUnknownFlock      = errors.New("unknown flock")
	ErrMalformedMessage  = errors.New("malformed message")
	ErrWorldStopped      = errors.New("world is stopped")
)
