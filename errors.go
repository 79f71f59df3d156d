package deepnet

import (
	"fmt"
)

// Error is a wrapper for specific types of errors for which there is no additional information
// necessary. These errors are defined as global variables, and can be compared against with
// errors.Cause.
type Error struct{ string }

func (err Error) Error() string {
	return err.string
}

// These are the global errors that may be returned.
var (
	ErrNoLayers      = Error{"no layers in this net"}
	ErrNotConfigured = Error{"network is not fully configured"}
	ErrBadBatchSize  = Error{"batch size must be at least 1"}
)

// NilArgError documents errors resulting from certain arguments provided to a function being nil.
type NilArgError struct{ string }

func (err NilArgError) Error() string {
	return err.string + " is nil"
}

// SizeMismatchError is returned when the length of a slice does not match what the network
// requires of it, for example a weight array of the wrong length. It is returned before any
// computation is done.
type SizeMismatchError struct {
	What string
	Want int
	Got  int
}

func (err SizeMismatchError) Error() string {
	return fmt.Sprintf("size mismatch for %s: expected %d, got %d", err.What, err.Want, err.Got)
}
