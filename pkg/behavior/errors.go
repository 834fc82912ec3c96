package behavior

import "errors"

var (
	ErrInvalidCount  = errors.New("boid count must not be negative")
	ErrInvalidRadius = errors.New("flock radius must be positive")
)
