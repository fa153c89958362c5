// Package fleet is the entry point to the simulator: it creates the fleet,
// routes requests to the dispatcher and forwards step and query commands to
// the addressed elevator.
package fleet

import (
	"errors"
	"fmt"
	"time"

	"liftbank/src/dispatcher"
	"liftbank/src/elev"
	"liftbank/src/logger"
	"liftbank/src/queue"
	"liftbank/src/store"
	"liftbank/src/types"
)

var Log = logger.GetLogger()

type Fleet struct {
	mgr *manager
	now func() time.Time
}

// New starts a fleet on top of repo. Close must be called to stop it.
func New(repo store.Repository) *Fleet {
	return &Fleet{
		mgr: startManager(repo),
		now: time.Now,
	}
}

// Close stops the fleet. Later calls fail with types.ErrClosed.
func (f *Fleet) Close() {
	f.mgr.stop()
}

// Initialize discards every elevator and request and creates count fresh
// elevators. Their ids are returned in creation order.
func (f *Fleet) Initialize(count int) ([]int, error) {
	if count <= 0 {
		return nil, fmt.Errorf("initialize %d: %w", count, types.ErrInvalidCount)
	}
	var ids []int
	err := f.mgr.execute(func(repo store.Repository) error {
		if err := repo.DeleteAll(); err != nil {
			return fmt.Errorf("reset fleet: %w", err)
		}
		ids = make([]int, 0, count)
		for range count {
			elevator, err := repo.CreateElevator()
			if err != nil {
				return fmt.Errorf("create elevator: %w", err)
			}
			ids = append(ids, elevator.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	Log.Info().Int("count", count).Ints("ids", ids).Msg("Fleet initialized")
	return ids, nil
}

// DispatchRequest assigns a new pickup/destination request to an elevator.
func (f *Fleet) DispatchRequest(pickup, destination int) (dispatcher.Assignment, error) {
	if pickup <= 0 || destination <= 0 {
		return dispatcher.Assignment{}, fmt.Errorf("request %d -> %d: %w", pickup, destination, types.ErrInvalidFloor)
	}
	var assignment dispatcher.Assignment
	err := f.mgr.execute(func(repo store.Repository) error {
		var err error
		assignment, err = dispatcher.Dispatch(repo, pickup, destination)
		return err
	})
	if err != nil {
		return dispatcher.Assignment{}, err
	}
	Log.Info().
		Int("elevator", assignment.Request.ElevatorID).
		Int("pickup", pickup).
		Int("destination", destination).
		Msg("Request dispatched")
	return assignment, nil
}

// ListRequests returns every request of the elevator in creation order,
// completed ones included.
func (f *Fleet) ListRequests(id int) ([]types.Request, error) {
	var requests []types.Request
	err := f.mgr.execute(func(repo store.Repository) error {
		if _, err := repo.Elevator(id); err != nil {
			return err
		}
		var err error
		requests, err = queue.New(repo, id).All()
		return err
	})
	return requests, err
}

func (f *Fleet) PeekNextFloor(id int) (int, error) {
	var floor int
	err := f.withLeg(id, func(elevator types.Elevator, leg *types.Request) error {
		var err error
		floor, err = elev.NextTargetFloor(elevator, leg)
		return err
	})
	return floor, err
}

func (f *Fleet) PeekDirection(id int) (types.MotorDirection, error) {
	dir := types.MD_Stop
	err := f.withLeg(id, func(elevator types.Elevator, leg *types.Request) error {
		var err error
		dir, err = elev.Direction(elevator, leg)
		return err
	})
	return dir, err
}

// Step advances the elevator one leg toward its current request. The new
// floor and the completed request are committed together.
func (f *Fleet) Step(id int) (types.Move, error) {
	var move types.Move
	err := f.mgr.execute(func(repo store.Repository) error {
		var batch commitBatch
		var err error
		move, err = f.step(repo, id, &batch)
		if err != nil {
			return err
		}
		return batch.commit(repo)
	})
	if err != nil {
		return types.Move{}, err
	}
	return move, nil
}

// StepAll steps every elevator that can move. Elevators that are
// unavailable or idle are skipped. All moves are committed at once, so on
// error the fleet is left as it was and no moves are returned.
func (f *Fleet) StepAll() ([]types.Move, error) {
	var moves []types.Move
	err := f.mgr.execute(func(repo store.Repository) error {
		elevators, err := repo.Elevators()
		if err != nil {
			return err
		}
		var batch commitBatch
		for _, elevator := range elevators {
			move, err := f.step(repo, elevator.ID, &batch)
			switch {
			case errors.Is(err, types.ErrUnavailable), errors.Is(err, types.ErrNoPendingRequest):
				continue
			case err != nil:
				return err
			}
			moves = append(moves, move)
		}
		return batch.commit(repo)
	})
	if err != nil {
		return nil, err
	}
	return moves, nil
}

func (f *Fleet) ToggleDoor(id int) (types.Elevator, error) {
	return f.update(id, func(elevator *types.Elevator) { elev.ToggleDoor(elevator) })
}

func (f *Fleet) ToggleMaintenance(id int) (types.Elevator, error) {
	return f.update(id, func(elevator *types.Elevator) { elev.ToggleMaintenance(elevator) })
}

func (f *Fleet) Elevator(id int) (types.Elevator, error) {
	var elevator types.Elevator
	err := f.mgr.execute(func(repo store.Repository) error {
		var err error
		elevator, err = repo.Elevator(id)
		return err
	})
	return elevator, err
}

// ListElevators returns the fleet in id order.
func (f *Fleet) ListElevators() ([]types.Elevator, error) {
	var elevators []types.Elevator
	err := f.mgr.execute(func(repo store.Repository) error {
		var err error
		elevators, err = repo.Elevators()
		return err
	})
	return elevators, err
}

// commitBatch collects the writes of one or more steps.
type commitBatch struct {
	elevators []types.Elevator
	requests  []types.Request
}

func (b *commitBatch) commit(repo store.Repository) error {
	if len(b.elevators) == 0 && len(b.requests) == 0 {
		return nil
	}
	if err := repo.Commit(b.elevators, b.requests); err != nil {
		return fmt.Errorf("commit step: %w", err)
	}
	return nil
}

// step plans one move into batch without writing. It must run on the manager
// goroutine.
func (f *Fleet) step(repo store.Repository, id int, batch *commitBatch) (types.Move, error) {
	elevator, err := repo.Elevator(id)
	if err != nil {
		return types.Move{}, err
	}
	move, completed, err := elev.Step(&elevator, queue.New(repo, id), f.now())
	if err != nil {
		return types.Move{}, err
	}
	batch.elevators = append(batch.elevators, elevator)
	if completed != nil {
		batch.requests = append(batch.requests, *completed)
	}
	return move, nil
}

func (f *Fleet) withLeg(id int, fn func(elevator types.Elevator, leg *types.Request) error) error {
	return f.mgr.execute(func(repo store.Repository) error {
		elevator, err := repo.Elevator(id)
		if err != nil {
			return err
		}
		leg, err := elev.CurrentLeg(queue.New(repo, id))
		if err != nil {
			return err
		}
		return fn(elevator, leg)
	})
}

func (f *Fleet) update(id int, change func(elevator *types.Elevator)) (types.Elevator, error) {
	var elevator types.Elevator
	err := f.mgr.execute(func(repo store.Repository) error {
		var err error
		elevator, err = repo.Elevator(id)
		if err != nil {
			return err
		}
		change(&elevator)
		return repo.UpdateElevator(elevator)
	})
	return elevator, err
}
