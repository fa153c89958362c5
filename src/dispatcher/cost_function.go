package dispatcher

import "liftbank/src/types"

// cost is the floor distance from where the elevator will be free to the
// new pickup.
//   - busy: measured from the destination of its current leg, assuming that
//     trip finishes first
//   - idle: measured from its current floor
//
// Service order is FIFO by creation regardless of this estimate.
func cost(elevator types.Elevator, leg *types.Request, pickup int) int {
	from := elevator.CurrentFloor
	if leg != nil {
		from = leg.DestinationFloor
	}
	return abs(pickup - from)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
