package store

import (
	"fmt"
	"slices"
	"sync"

	"liftbank/src/types"

	"github.com/tiendc/go-deepcopy"
)

var _ Repository = (*MemoryStore)(nil)

// MemoryStore keeps the fleet in process memory.
// Elevator ids are never reused, also across DeleteAll.
type MemoryStore struct {
	mu        sync.RWMutex
	elevators map[int]types.Elevator
	requests  map[string]types.Request
	byElev    map[int][]string // request ids per elevator in Seq order
	lastID    int
	seq       uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		elevators: make(map[int]types.Elevator),
		requests:  make(map[string]types.Request),
		byElev:    make(map[int][]string),
	}
}

func (s *MemoryStore) CreateElevator() (types.Elevator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	elevator := types.NewElevator(s.lastID)
	s.elevators[elevator.ID] = elevator
	return elevator, nil
}

func (s *MemoryStore) Elevator(id int) (types.Elevator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	elevator, ok := s.elevators[id]
	if !ok {
		return types.Elevator{}, fmt.Errorf("elevator %d: %w", id, types.ErrNotFound)
	}
	return elevator, nil
}

// Elevators returns all elevators ordered by id.
func (s *MemoryStore) Elevators() ([]types.Elevator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := make([]types.Elevator, 0, len(s.elevators))
	for _, elevator := range s.elevators {
		stored = append(stored, elevator)
	}
	slices.SortFunc(stored, func(a, b types.Elevator) int { return a.ID - b.ID })
	return stored, nil
}

func (s *MemoryStore) UpdateElevator(elevator types.Elevator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkElevator(elevator); err != nil {
		return err
	}
	s.elevators[elevator.ID] = elevator
	return nil
}

// DeleteElevator removes the elevator together with its requests.
func (s *MemoryStore) DeleteElevator(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.elevators[id]; !ok {
		return fmt.Errorf("elevator %d: %w", id, types.ErrNotFound)
	}
	for _, reqID := range s.byElev[id] {
		delete(s.requests, reqID)
	}
	delete(s.byElev, id)
	delete(s.elevators, id)
	return nil
}

func (s *MemoryStore) CreateRequest(request types.Request) (types.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.elevators[request.ElevatorID]; !ok {
		return types.Request{}, fmt.Errorf("elevator %d: %w", request.ElevatorID, types.ErrNotFound)
	}
	if request.ID == "" {
		return types.Request{}, fmt.Errorf("create request: empty id")
	}
	if _, ok := s.requests[request.ID]; ok {
		return types.Request{}, fmt.Errorf("create request: duplicate id %s", request.ID)
	}
	stored, err := copyRequest(request)
	if err != nil {
		return types.Request{}, err
	}
	s.requests[request.ID] = stored
	ids := append(s.byElev[request.ElevatorID], request.ID)
	slices.SortStableFunc(ids, func(a, b string) int {
		return compareSeq(s.requests[a].Seq, s.requests[b].Seq)
	})
	s.byElev[request.ElevatorID] = ids
	return copyRequest(request)
}

func (s *MemoryStore) Request(id string) (types.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	request, ok := s.requests[id]
	if !ok {
		return types.Request{}, fmt.Errorf("request %s not found", id)
	}
	return copyRequest(request)
}

// UpdateRequest replaces a stored request. The owning elevator cannot change.
func (s *MemoryStore) UpdateRequest(request types.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkRequest(request); err != nil {
		return err
	}
	stored, err := copyRequest(request)
	if err != nil {
		return err
	}
	s.requests[request.ID] = stored
	return nil
}

func (s *MemoryStore) DeleteRequest(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[id]
	if !ok {
		return fmt.Errorf("request %s not found", id)
	}
	s.byElev[request.ElevatorID] = slices.DeleteFunc(s.byElev[request.ElevatorID], func(reqID string) bool {
		return reqID == id
	})
	delete(s.requests, id)
	return nil
}

func (s *MemoryStore) Requests(elevatorID int) ([]types.Request, error) {
	return s.filterRequests(elevatorID, func(types.Request) bool { return true })
}

func (s *MemoryStore) PendingRequests(elevatorID int) ([]types.Request, error) {
	return s.filterRequests(elevatorID, func(r types.Request) bool { return !r.IsComplete })
}

func (s *MemoryStore) filterRequests(elevatorID int, keep func(types.Request) bool) ([]types.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.elevators[elevatorID]; !ok {
		return nil, fmt.Errorf("elevator %d: %w", elevatorID, types.ErrNotFound)
	}
	selected := []types.Request{}
	for _, reqID := range s.byElev[elevatorID] {
		if request := s.requests[reqID]; keep(request) {
			selected = append(selected, request)
		}
	}
	result := []types.Request{}
	if err := deepcopy.Copy(&result, selected); err != nil {
		return nil, fmt.Errorf("copy requests: %w", err)
	}
	return result, nil
}

// Commit checks every write against the current state before applying any.
func (s *MemoryStore) Commit(elevators []types.Elevator, requests []types.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, elevator := range elevators {
		if err := s.checkElevator(elevator); err != nil {
			return err
		}
	}
	stored := []types.Request{}
	if err := deepcopy.Copy(&stored, requests); err != nil {
		return fmt.Errorf("copy requests: %w", err)
	}
	for _, request := range stored {
		if err := s.checkRequest(request); err != nil {
			return err
		}
	}

	for _, elevator := range elevators {
		s.elevators[elevator.ID] = elevator
	}
	for _, request := range stored {
		s.requests[request.ID] = request
	}
	return nil
}

func (s *MemoryStore) checkElevator(elevator types.Elevator) error {
	if _, ok := s.elevators[elevator.ID]; !ok {
		return fmt.Errorf("elevator %d: %w", elevator.ID, types.ErrNotFound)
	}
	return nil
}

// checkRequest allows updates of pending requests only, and never a change
// of owner.
func (s *MemoryStore) checkRequest(request types.Request) error {
	stored, ok := s.requests[request.ID]
	if !ok {
		return fmt.Errorf("request %s not found", request.ID)
	}
	if stored.ElevatorID != request.ElevatorID {
		return fmt.Errorf("request %s: cannot reassign from elevator %d to %d", request.ID, stored.ElevatorID, request.ElevatorID)
	}
	if stored.IsComplete {
		return fmt.Errorf("request %s is complete", request.ID)
	}
	return nil
}

func (s *MemoryStore) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elevators = make(map[int]types.Elevator)
	s.requests = make(map[string]types.Request)
	s.byElev = make(map[int][]string)
	return nil
}

func (s *MemoryStore) NextSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// copyRequest detaches CompletedAt so callers never share the pointer with the store.
func copyRequest(request types.Request) (types.Request, error) {
	var clone types.Request
	if err := deepcopy.Copy(&clone, &request); err != nil {
		return types.Request{}, fmt.Errorf("copy request %s: %w", request.ID, err)
	}
	return clone, nil
}

func compareSeq(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
