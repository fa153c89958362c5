// Package dispatcher assigns new requests to elevators by a greedy distance
// heuristic. Assignments are never rebalanced.
package dispatcher

import (
	"fmt"

	"liftbank/src/elev"
	"liftbank/src/logger"
	"liftbank/src/queue"
	"liftbank/src/store"
	"liftbank/src/types"
)

var Log = logger.GetLogger()

// Candidates returns the elevators that may take a request, in id order,
// each with its current leg.
func Candidates(repo store.Repository) ([]Candidate, error) {
	elevators, err := repo.Elevators()
	if err != nil {
		return nil, fmt.Errorf("list elevators: %w", err)
	}
	var candidates []Candidate
	for _, elevator := range elevators {
		if !elevator.Available() {
			continue
		}
		leg, err := elev.CurrentLeg(queue.New(repo, elevator.ID))
		if err != nil {
			return nil, fmt.Errorf("current leg of elevator %d: %w", elevator.ID, err)
		}
		candidates = append(candidates, Candidate{Elevator: elevator, Leg: leg})
	}
	return candidates, nil
}

// Bids computes the cost of every candidate, keeping candidate order.
func Bids(candidates []Candidate, pickup int) []Bid {
	bids := make([]Bid, 0, len(candidates))
	for _, c := range candidates {
		bids = append(bids, Bid{
			ElevatorID: c.Elevator.ID,
			Cost:       cost(c.Elevator, c.Leg, pickup),
			Busy:       c.Leg != nil,
		})
	}
	return bids
}

// findAssignee picks the lowest cost. Ties go to the first bid, so a fixed
// candidate order always gives the same answer.
func findAssignee(bids []Bid) (Bid, bool) {
	if len(bids) == 0 {
		return Bid{}, false
	}
	best := bids[0]
	for _, bid := range bids[1:] {
		if bid.Cost < best.Cost {
			best = bid
		}
	}
	return best, true
}

// Dispatch assigns a request to the best eligible elevator and queues it
// there. Nothing is written when no elevator is eligible.
func Dispatch(repo store.Repository, pickup, destination int) (Assignment, error) {
	if pickup <= 0 || destination <= 0 {
		return Assignment{}, types.ErrInvalidFloor
	}
	candidates, err := Candidates(repo)
	if err != nil {
		return Assignment{}, err
	}
	bids := Bids(candidates, pickup)
	assignee, ok := findAssignee(bids)
	if !ok {
		Log.Warn().Int("pickup", pickup).Int("destination", destination).Msg("No elevators available")
		return Assignment{}, types.ErrNoElevatorsAvailable
	}

	var origin int
	for _, c := range candidates {
		if c.Elevator.ID == assignee.ElevatorID {
			origin = c.Elevator.CurrentFloor
		}
	}
	request, err := queue.New(repo, assignee.ElevatorID).Enqueue(pickup, destination, origin)
	if err != nil {
		return Assignment{}, err
	}

	Log.Debug().
		Int("elevator", assignee.ElevatorID).
		Int("cost", assignee.Cost).
		Interface("bids", bids).
		Str("request", request.ID).
		Msg("Assigning request")
	return Assignment{Request: request, Bids: bids}, nil
}
