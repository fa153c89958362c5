package types

import "time"

// Floors are positive integers. There is no floor 0 and no basement.
const GroundFloor = 1

type MotorDirection int

const (
	MD_Up   MotorDirection = 1
	MD_Down MotorDirection = -1
	MD_Stop MotorDirection = 0
)

func (d MotorDirection) String() string {
	switch d {
	case MD_Up:
		return "Up"
	case MD_Down:
		return "Down"
	case MD_Stop:
		return "Stationary"
	default:
		return "Undefined"
	}
}

func (d MotorDirection) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// GetDirection returns the direction of travel from one floor to another.
func GetDirection(from, to int) MotorDirection {
	if from < to {
		return MD_Up
	}
	if from > to {
		return MD_Down
	}
	return MD_Stop
}

// Elevator is the persisted state of one car.
// Dir mirrors the last move and is never read by decision logic.
type Elevator struct {
	ID            int            `json:"id"`
	CurrentFloor  int            `json:"current_floor"`
	DoorOpen      bool           `json:"is_door_open"`
	InMaintenance bool           `json:"in_maintenance"`
	Dir           MotorDirection `json:"direction"`
}

// Available reports whether the elevator may move or take new requests.
func (e Elevator) Available() bool {
	return !e.InMaintenance && !e.DoorOpen
}

func NewElevator(id int) Elevator {
	return Elevator{
		ID:           id,
		CurrentFloor: GroundFloor,
		Dir:          MD_Stop,
	}
}

// Request is a pickup/drop-off obligation owned by exactly one elevator.
// Seq defines FIFO order inside the elevator's queue.
type Request struct {
	ID               string     `json:"id"`
	ElevatorID       int        `json:"elevator"`
	PickupFloor      int        `json:"requested_floor"`
	DestinationFloor int        `json:"destination_floor"`
	OriginFloor      int        `json:"current_floor"`
	Seq              uint64     `json:"seq"`
	CreatedAt        time.Time  `json:"created_at"`
	IsComplete       bool       `json:"is_complete"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// Move is the outcome of a single step.
type Move struct {
	ElevatorID int            `json:"elevator_id"`
	From       int            `json:"previous_floor"`
	To         int            `json:"current_floor"`
	Dir        MotorDirection `json:"direction"`
	Completed  bool           `json:"request_completed"`
	RequestID  string         `json:"request_id"`
}
