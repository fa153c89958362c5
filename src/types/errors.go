package types

import "errors"

var (
	ErrInvalidCount         = errors.New("invalid number of elevators")
	ErrInvalidFloor         = errors.New("invalid floor number")
	ErrNoElevatorsAvailable = errors.New("no elevators available")
	ErrNotFound             = errors.New("elevator not found")
	ErrNoPendingRequest     = errors.New("no pending request")
	ErrUnavailable          = errors.New("elevator unavailable: in maintenance or door open")
	ErrClosed               = errors.New("fleet is closed")
)

// ErrorKind names the failure kinds reported to clients.
type ErrorKind string

const (
	KindInvalidCount         ErrorKind = "InvalidCount"
	KindInvalidFloor         ErrorKind = "InvalidFloor"
	KindNoElevatorsAvailable ErrorKind = "NoElevatorsAvailable"
	KindNotFound             ErrorKind = "NotFound"
	KindNoPendingRequest     ErrorKind = "NoPendingRequest"
	KindUnavailable          ErrorKind = "Unavailable"
	KindClosed               ErrorKind = "Closed"
	KindBadRequest           ErrorKind = "BadRequest"
	KindInternal             ErrorKind = "Internal"
)

var kinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrInvalidCount, KindInvalidCount},
	{ErrInvalidFloor, KindInvalidFloor},
	{ErrNoElevatorsAvailable, KindNoElevatorsAvailable},
	{ErrNotFound, KindNotFound},
	{ErrNoPendingRequest, KindNoPendingRequest},
	{ErrUnavailable, KindUnavailable},
	{ErrClosed, KindClosed},
}

// KindOf classifies err. Unknown errors are Internal.
func KindOf(err error) ErrorKind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}
