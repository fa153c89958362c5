package elev

import (
	"liftbank/src/queue"
	"liftbank/src/types"
)

// CurrentLeg returns the oldest pending request of the elevator. Legs are
// served strictly in creation order, regardless of distance.
func CurrentLeg(q *queue.Queue) (*types.Request, error) {
	leg, ok, err := q.Current()
	if err != nil || !ok {
		return nil, err
	}
	return &leg, nil
}

// NextTargetFloor is the pickup floor until the elevator stands on it, then
// the destination floor. An elevator already at the pickup skips that leg.
func NextTargetFloor(elevator types.Elevator, leg *types.Request) (int, error) {
	if leg == nil {
		return 0, types.ErrNoPendingRequest
	}
	if elevator.CurrentFloor == leg.PickupFloor {
		return leg.DestinationFloor, nil
	}
	return leg.PickupFloor, nil
}

// Direction is derived from the target floor. It is never stored as input
// to any decision.
func Direction(elevator types.Elevator, leg *types.Request) (types.MotorDirection, error) {
	if !elevator.Available() {
		return types.MD_Stop, types.ErrUnavailable
	}
	target, err := NextTargetFloor(elevator, leg)
	if err != nil {
		return types.MD_Stop, err
	}
	return types.GetDirection(elevator.CurrentFloor, target), nil
}
