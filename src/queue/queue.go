// Package queue is the per-elevator FIFO of requests, read and written
// through the repository.
package queue

import (
	"fmt"
	"time"

	"liftbank/src/store"
	"liftbank/src/types"

	"github.com/google/uuid"
)

// Queue is a view of one elevator's requests. It holds no state of its own.
type Queue struct {
	repo       store.Repository
	elevatorID int
}

func New(repo store.Repository, elevatorID int) *Queue {
	return &Queue{repo: repo, elevatorID: elevatorID}
}

func (q *Queue) ElevatorID() int {
	return q.elevatorID
}

// Current returns the oldest pending request. A later request never
// preempts an earlier one.
func (q *Queue) Current() (types.Request, bool, error) {
	pending, err := q.repo.PendingRequests(q.elevatorID)
	if err != nil {
		return types.Request{}, false, err
	}
	if len(pending) == 0 {
		return types.Request{}, false, nil
	}
	return pending[0], true, nil
}

func (q *Queue) Pending() ([]types.Request, error) {
	return q.repo.PendingRequests(q.elevatorID)
}

// All returns every request ever queued, completed ones included.
func (q *Queue) All() ([]types.Request, error) {
	return q.repo.Requests(q.elevatorID)
}

// Enqueue appends a new pending request behind everything already queued.
func (q *Queue) Enqueue(pickup, destination, originFloor int) (types.Request, error) {
	request := types.Request{
		ID:               uuid.NewString(),
		ElevatorID:       q.elevatorID,
		PickupFloor:      pickup,
		DestinationFloor: destination,
		OriginFloor:      originFloor,
		Seq:              q.repo.NextSeq(),
		CreatedAt:        time.Now(),
	}
	created, err := q.repo.CreateRequest(request)
	if err != nil {
		return types.Request{}, fmt.Errorf("enqueue on elevator %d: %w", q.elevatorID, err)
	}
	return created, nil
}

// Complete returns the request marked done at the given time. Nothing is
// written; the caller commits it together with the elevator's move.
func (q *Queue) Complete(request types.Request, at time.Time) (types.Request, error) {
	if request.ElevatorID != q.elevatorID {
		return types.Request{}, fmt.Errorf("request %s belongs to elevator %d, not %d", request.ID, request.ElevatorID, q.elevatorID)
	}
	if request.IsComplete {
		return types.Request{}, fmt.Errorf("request %s already complete", request.ID)
	}
	request.IsComplete = true
	request.CompletedAt = &at
	return request, nil
}
