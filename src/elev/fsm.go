// Contains the single elevator state machine: one step jumps straight to the
// target floor, no intermediate floors are modelled.
package elev

import (
	"time"

	"liftbank/src/logger"
	"liftbank/src/queue"
	"liftbank/src/types"
)

var Log = logger.GetLogger()

// Step moves the elevator to its next target floor.
//   - At the pickup floor: jump to the destination and complete the leg
//   - Elsewhere: jump to the pickup floor, the leg stays pending
//
// The elevator is updated in place and the completed leg, if any, is
// returned. Nothing is written; the caller commits both together.
func Step(elevator *types.Elevator, q *queue.Queue, now time.Time) (types.Move, *types.Request, error) {
	if !elevator.Available() {
		return types.Move{}, nil, types.ErrUnavailable
	}
	leg, err := CurrentLeg(q)
	if err != nil {
		return types.Move{}, nil, err
	}
	if leg == nil {
		return types.Move{}, nil, types.ErrNoPendingRequest
	}

	move := types.Move{
		ElevatorID: elevator.ID,
		From:       elevator.CurrentFloor,
		RequestID:  leg.ID,
	}
	var completed *types.Request
	if elevator.CurrentFloor == leg.PickupFloor {
		done, err := q.Complete(*leg, now)
		if err != nil {
			return types.Move{}, nil, err
		}
		completed = &done
		move.To = leg.DestinationFloor
		move.Completed = true
	} else {
		move.To = leg.PickupFloor
	}
	move.Dir = types.GetDirection(move.From, move.To)

	elevator.CurrentFloor = move.To
	elevator.Dir = move.Dir

	Log.Debug().
		Int("elevator", elevator.ID).
		Int("from", move.From).
		Int("to", move.To).
		Bool("completed", move.Completed).
		Str("request", leg.ID).
		Msg("Step")
	return move, completed, nil
}

// ToggleDoor flips the door. Allowed in any state, also during maintenance.
func ToggleDoor(elevator *types.Elevator) bool {
	elevator.DoorOpen = !elevator.DoorOpen
	Log.Debug().Int("elevator", elevator.ID).Bool("doorOpen", elevator.DoorOpen).Msg("Door toggled")
	return elevator.DoorOpen
}

// ToggleMaintenance flips the maintenance flag unconditionally.
func ToggleMaintenance(elevator *types.Elevator) bool {
	elevator.InMaintenance = !elevator.InMaintenance
	Log.Debug().Int("elevator", elevator.ID).Bool("inMaintenance", elevator.InMaintenance).Msg("Maintenance toggled")
	return elevator.InMaintenance
}
