package chess

import (
	"errors"
	"fmt"
)

// ErrFault is wrapped by every error that signals a transcript which could not
// have come from an actually played game. Callers abort the whole game on it.
var ErrFault = errors.New("chess fault")

var (
	ErrMalformedCoordinate = fmt.Errorf("%w: malformed coordinate", ErrFault)
	ErrUnknownPiece        = fmt.Errorf("%w: unknown piece", ErrFault)
	ErrNoOrigin            = fmt.Errorf("%w: no possible origins found", ErrFault)
	ErrAmbiguousOrigin     = fmt.Errorf("%w: too many possible origins found", ErrFault)
	ErrEmptyOrigin         = fmt.Errorf("%w: origin does not hold the moving piece", ErrFault)
	ErrMissingKing         = fmt.Errorf("%w: king not found", ErrFault)
	ErrBadEncoding         = fmt.Errorf("%w: unrecognized move encoding", ErrFault)
)

// IsFault reports whether err is a fault rather than a recoverable error.
func IsFault(err error) bool {
	return errors.Is(err, ErrFault)
}

// FENError is returned when a placement string cannot be decoded. It is
// recoverable: the caller may skip the offending game and carry on.
type FENError struct {
	Input  string
	Reason string
}

func (e *FENError) Error() string {
	return fmt.Sprintf("invalid placement string %q: %s", e.Input, e.Reason)
}
