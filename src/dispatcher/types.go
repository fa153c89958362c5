package dispatcher

import "liftbank/src/types"

// Bid is the cost of one candidate elevator taking a request.
type Bid struct {
	ElevatorID int  `json:"elevator_id"`
	Cost       int  `json:"cost"`
	Busy       bool `json:"busy"`
}

// Candidate is an eligible elevator with the leg it is currently serving.
type Candidate struct {
	Elevator types.Elevator
	Leg      *types.Request
}

// Assignment is the outcome of a dispatch.
type Assignment struct {
	Request types.Request `json:"request"`
	Bids    []Bid         `json:"bids"`
}
