// Package command is the transport-neutral surface of the simulator. The
// HTTP API and the QUIC transport both decode their input into a Command and
// hand it to Execute.
package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"liftbank/src/fleet"
	"liftbank/src/logger"
	"liftbank/src/types"
)

var Log = logger.GetLogger()

type Op string

const (
	OpInitialize        Op = "initialize"
	OpDispatch          Op = "dispatch"
	OpRequests          Op = "requests"
	OpNextFloor         Op = "next_floor"
	OpDirection         Op = "direction"
	OpStep              Op = "step"
	OpToggleDoor        Op = "toggle_door"
	OpToggleMaintenance Op = "toggle_maintenance"
	OpElevators         Op = "elevators"
	OpElevator          Op = "elevator"
	OpStepAll           Op = "step_all"
)

// Ops lists every supported operation.
var Ops = []Op{
	OpInitialize, OpDispatch, OpRequests, OpNextFloor, OpDirection, OpStep,
	OpToggleDoor, OpToggleMaintenance, OpElevators, OpElevator, OpStepAll,
}

// ErrBadRequest marks input that is not a well-formed command.
var ErrBadRequest = errors.New("bad request")

// Command is one client operation. Numeric fields stay raw until Execute so
// that a wrong type is reported with the kind of the field it was sent for.
type Command struct {
	Op          Op              `json:"op"`
	ElevatorID  json.RawMessage `json:"elevator_id,omitempty"`
	Count       json.RawMessage `json:"num_elevators,omitempty"`
	Pickup      json.RawMessage `json:"requested_floor,omitempty"`
	Destination json.RawMessage `json:"destination_floor,omitempty"`
}

type Response struct {
	OK     bool            `json:"ok"`
	Status int             `json:"status"`
	Kind   types.ErrorKind `json:"kind,omitempty"`
	Error  string          `json:"error,omitempty"`
	Data   any             `json:"data,omitempty"`
}

// Int encodes n as a raw numeric field.
func Int(n int) json.RawMessage {
	return json.RawMessage(fmt.Sprint(n))
}

// Execute validates cmd and runs it against f.
func Execute(f *fleet.Fleet, cmd Command) Response {
	data, status, err := run(f, cmd)
	if err != nil {
		resp := Failure(err)
		Log.Warn().Str("op", string(cmd.Op)).Str("kind", string(resp.Kind)).Err(err).Msg("Command rejected")
		return resp
	}
	return Response{OK: true, Status: status, Data: data}
}

// Failure builds the response for err.
func Failure(err error) Response {
	kind := KindOf(err)
	return Response{
		Status: StatusOf(kind),
		Kind:   kind,
		Error:  err.Error(),
	}
}

func KindOf(err error) types.ErrorKind {
	if errors.Is(err, ErrBadRequest) {
		return types.KindBadRequest
	}
	return types.KindOf(err)
}

func StatusOf(kind types.ErrorKind) int {
	switch kind {
	case types.KindInvalidCount, types.KindInvalidFloor, types.KindNoElevatorsAvailable,
		types.KindNoPendingRequest, types.KindBadRequest:
		return http.StatusBadRequest
	case types.KindNotFound:
		return http.StatusNotFound
	case types.KindUnavailable:
		return http.StatusConflict
	case types.KindClosed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func run(f *fleet.Fleet, cmd Command) (any, int, error) {
	switch cmd.Op {
	case OpInitialize:
		count, err := positiveInt(cmd.Count, "num_elevators", types.ErrInvalidCount)
		if err != nil {
			return nil, 0, err
		}
		ids, err := f.Initialize(count)
		if err != nil {
			return nil, 0, err
		}
		created := make([]map[string]int, 0, len(ids))
		for _, id := range ids {
			created = append(created, map[string]int{"elevator_id": id})
		}
		return map[string]any{
			"message":   fmt.Sprintf("%d elevators initialized", len(ids)),
			"elevators": created,
		}, http.StatusOK, nil

	case OpDispatch:
		pickup, err := positiveInt(cmd.Pickup, "requested_floor", types.ErrInvalidFloor)
		if err != nil {
			return nil, 0, err
		}
		destination, err := positiveInt(cmd.Destination, "destination_floor", types.ErrInvalidFloor)
		if err != nil {
			return nil, 0, err
		}
		assignment, err := f.DispatchRequest(pickup, destination)
		if err != nil {
			return nil, 0, err
		}
		return map[string]any{
			"message":     "request saved",
			"elevator_id": assignment.Request.ElevatorID,
			"request":     assignment.Request,
			"bids":        assignment.Bids,
		}, http.StatusCreated, nil

	case OpElevators:
		elevators, err := f.ListElevators()
		return elevators, http.StatusOK, err

	case OpStepAll:
		moves, err := f.StepAll()
		if moves == nil {
			moves = []types.Move{}
		}
		return map[string]any{"moves": moves}, http.StatusOK, err
	}

	if !cmd.Op.Valid() {
		return nil, 0, fmt.Errorf("unknown op %q: %w", cmd.Op, ErrBadRequest)
	}
	id, err := positiveInt(cmd.ElevatorID, "elevator_id", types.ErrNotFound)
	if err != nil {
		return nil, 0, err
	}
	return runElevator(f, cmd.Op, id)
}

// runElevator handles the operations addressed to a single elevator.
func runElevator(f *fleet.Fleet, op Op, id int) (any, int, error) {
	switch op {
	case OpRequests:
		requests, err := f.ListRequests(id)
		return requests, http.StatusOK, err

	case OpNextFloor:
		floor, err := f.PeekNextFloor(id)
		return map[string]int{"elevator_id": id, "next_floor": floor}, http.StatusOK, err

	case OpDirection:
		dir, err := f.PeekDirection(id)
		return map[string]any{"elevator_id": id, "direction": dir}, http.StatusOK, err

	case OpStep:
		move, err := f.Step(id)
		return move, http.StatusOK, err

	case OpToggleDoor:
		elevator, err := f.ToggleDoor(id)
		return map[string]any{
			"elevator_id":  id,
			"is_door_open": elevator.DoorOpen,
			"message":      doorMessage(elevator.DoorOpen),
		}, http.StatusOK, err

	case OpToggleMaintenance:
		elevator, err := f.ToggleMaintenance(id)
		return map[string]any{
			"elevator_id":    id,
			"in_maintenance": elevator.InMaintenance,
			"message":        maintenanceMessage(elevator.InMaintenance),
		}, http.StatusOK, err

	case OpElevator:
		elevator, err := f.Elevator(id)
		return elevator, http.StatusOK, err
	}
	return nil, 0, fmt.Errorf("unknown op %q: %w", op, ErrBadRequest)
}

func (op Op) Valid() bool {
	for _, known := range Ops {
		if op == known {
			return true
		}
	}
	return false
}

// positiveInt parses a raw JSON integer. Missing, non-numeric, fractional
// and non-positive values are reported as kind.
func positiveInt(raw json.RawMessage, field string, kind error) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("%s is required: %w", field, kind)
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return 0, fmt.Errorf("%s is not valid JSON: %w", field, kind)
	}
	number, ok := value.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%s must be an integer, got %s: %w", field, raw, kind)
	}
	n, err := number.Int64()
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %s: %w", field, raw, kind)
	}
	if n <= 0 || n > int64(maxInt) {
		return 0, fmt.Errorf("%s must be positive, got %d: %w", field, n, kind)
	}
	return int(n), nil
}

const maxInt = int(^uint(0) >> 1)

func doorMessage(open bool) string {
	if open {
		return "door opened"
	}
	return "door closed"
}

func maintenanceMessage(on bool) string {
	if on {
		return "elevator is in maintenance"
	}
	return "elevator is back in service"
}
