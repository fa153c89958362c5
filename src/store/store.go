// Package store holds the persistence contract for elevators and requests.
package store

import "liftbank/src/types"

// Repository is the storage the fleet reads and writes. Every write must be
// visible to the next read.
type Repository interface {
	CreateElevator() (types.Elevator, error)
	Elevator(id int) (types.Elevator, error)
	Elevators() ([]types.Elevator, error)
	UpdateElevator(elevator types.Elevator) error
	DeleteElevator(id int) error

	CreateRequest(request types.Request) (types.Request, error)
	Request(id string) (types.Request, error)
	UpdateRequest(request types.Request) error
	DeleteRequest(id string) error
	// Requests returns every request of the elevator ordered by Seq.
	Requests(elevatorID int) ([]types.Request, error)
	// PendingRequests returns the incomplete requests of the elevator ordered by Seq.
	PendingRequests(elevatorID int) ([]types.Request, error)

	// Commit updates the given elevators and requests together. If any write
	// is rejected, none is applied.
	Commit(elevators []types.Elevator, requests []types.Request) error

	// DeleteAll removes every elevator and request in one step.
	DeleteAll() error
	// NextSeq returns a strictly increasing sequence number.
	NextSeq() uint64
}
