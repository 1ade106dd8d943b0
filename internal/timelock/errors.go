package timelock

import "errors"

// ErrHoldOutOfRange rejects create requests whose hold duration falls
// outside the configured day bounds. No record is created.
var ErrHoldOutOfRange = errors.New("hold duration out of range")
