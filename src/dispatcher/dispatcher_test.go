package dispatcher

import (
	"errors"
	"testing"

	"liftbank/src/logger"
	"liftbank/src/queue"
	"liftbank/src/store"
	"liftbank/src/types"
)

func newRepo(t *testing.T, count int) *store.MemoryStore {
	t.Helper()
	logger.Silence()
	repo := store.NewMemoryStore()
	for i := 0; i < count; i++ {
		if _, err := repo.CreateElevator(); err != nil {
			t.Fatalf("CreateElevator() returned %v", err)
		}
	}
	return repo
}

func TestCost(t *testing.T) {
	tests := []struct {
		floor, pickup int
		leg           *types.Request
		want          int
	}{
		{1, 5, nil, 4},
		{9, 5, nil, 4},
		{3, 3, nil, 0},
		{1, 5, &types.Request{PickupFloor: 2, DestinationFloor: 8}, 3},
		{7, 7, &types.Request{PickupFloor: 7, DestinationFloor: 1}, 6},
	}
	for _, tt := range tests {
		if got := cost(types.Elevator{CurrentFloor: tt.floor}, tt.leg, tt.pickup); got != tt.want {
			t.Errorf("cost(floor %d, %+v, pickup %d) = %d, expected %d", tt.floor, tt.leg, tt.pickup, got, tt.want)
		}
	}
}

func TestFindAssigneeTieGoesToFirst(t *testing.T) {
	bids := []Bid{{ElevatorID: 3, Cost: 2}, {ElevatorID: 1, Cost: 2}, {ElevatorID: 2, Cost: 5}}
	if best, ok := findAssignee(bids); !ok || best.ElevatorID != 3 {
		t.Errorf("findAssignee() = %+v, %v, expected elevator 3", best, ok)
	}
	if _, ok := findAssignee(nil); ok {
		t.Errorf("findAssignee(nil) found an assignee")
	}
}

func TestCandidatesSkipUnavailable(t *testing.T) {
	repo := newRepo(t, 3)
	e2, _ := repo.Elevator(2)
	e2.InMaintenance = true
	repo.UpdateElevator(e2)
	queue.New(repo, 3).Enqueue(4, 6, 1)

	candidates, err := Candidates(repo)
	if err != nil {
		t.Fatalf("Candidates() returned %v", err)
	}
	if len(candidates) != 2 || candidates[0].Elevator.ID != 1 || candidates[1].Elevator.ID != 3 {
		t.Fatalf("Candidates() = %+v, expected elevators 1 and 3", candidates)
	}
	if candidates[0].Leg != nil || candidates[1].Leg == nil || candidates[1].Leg.PickupFloor != 4 {
		t.Errorf("Candidates() legs = %v, %v", candidates[0].Leg, candidates[1].Leg)
	}
}

func TestBidsAreReproducible(t *testing.T) {
	repo := newRepo(t, 4)
	queue.New(repo, 2).Enqueue(3, 6, 1)
	candidates, _ := Candidates(repo)

	first, _ := findAssignee(Bids(candidates, 6))
	for i := 0; i < 10; i++ {
		again, _ := findAssignee(Bids(candidates, 6))
		if again != first {
			t.Fatalf("findAssignee() = %+v, expected %+v", again, first)
		}
	}
	if first.ElevatorID != 2 || first.Cost != 0 || !first.Busy {
		t.Errorf("findAssignee() = %+v, expected busy elevator 2 at cost 0", first)
	}
}

func TestDispatch(t *testing.T) {
	repo := newRepo(t, 2)
	assignment, err := Dispatch(repo, 5, 9)
	if err != nil {
		t.Fatalf("Dispatch() returned %v", err)
	}
	request := assignment.Request
	if request.ElevatorID != 1 || request.OriginFloor != 1 || request.IsComplete || request.ID == "" {
		t.Errorf("Dispatch() request = %+v", request)
	}
	if len(assignment.Bids) != 2 || assignment.Bids[0].Cost != 4 || assignment.Bids[1].Cost != 4 {
		t.Errorf("Dispatch() bids = %+v", assignment.Bids)
	}
	pending, _ := repo.PendingRequests(1)
	if len(pending) != 1 || pending[0].ID != request.ID {
		t.Errorf("PendingRequests(1) = %+v, expected the new request", pending)
	}
}

func TestDispatchNoCandidates(t *testing.T) {
	repo := newRepo(t, 1)
	e1, _ := repo.Elevator(1)
	e1.DoorOpen = true
	repo.UpdateElevator(e1)

	if _, err := Dispatch(repo, 2, 3); !errors.Is(err, types.ErrNoElevatorsAvailable) {
		t.Errorf("Dispatch() error = %v, expected ErrNoElevatorsAvailable", err)
	}
	if all, _ := repo.Requests(1); len(all) != 0 {
		t.Errorf("Dispatch() created %d requests without candidates", len(all))
	}
	if _, err := Dispatch(newRepo(t, 0), 2, 3); !errors.Is(err, types.ErrNoElevatorsAvailable) {
		t.Errorf("Dispatch() on empty fleet error = %v, expected ErrNoElevatorsAvailable", err)
	}
}
