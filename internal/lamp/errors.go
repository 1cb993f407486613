package lamp

import "errors"

// Domain errors for the lamp package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, lamp.ErrLampNotFound) {
//	    // handle not found case
//	}
var (
	// ErrLampNotFound is returned when a lamp node does not exist.
	ErrLampNotFound = errors.New("lamp: not found")

	// ErrInvalidNode is returned when a node or gateway identifier is empty.
	ErrInvalidNode = errors.New("lamp: invalid node identifier")

	// ErrInvalidState is returned when a power state is not ON or OFF.
	ErrInvalidState = errors.New("lamp: invalid power state")

	// ErrInvalidDimLevel is returned when a dim level is outside 0-100.
	ErrInvalidDimLevel = errors.New("lamp: invalid dim level")
)
