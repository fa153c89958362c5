package command

import (
	"encoding/json"
	"net/http"
	"testing"

	"liftbank/src/fleet"
	"liftbank/src/logger"
	"liftbank/src/store"
	"liftbank/src/types"
)

func newFleet(t *testing.T) *fleet.Fleet {
	t.Helper()
	logger.Silence()
	f := fleet.New(store.NewMemoryStore())
	t.Cleanup(f.Close)
	return f
}

func mustExecute(t *testing.T, f *fleet.Fleet, cmd Command) Response {
	t.Helper()
	resp := Execute(f, cmd)
	if !resp.OK {
		t.Fatalf("Execute(%s) failed: %s (%s)", cmd.Op, resp.Error, resp.Kind)
	}
	return resp
}

func TestPositiveInt(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"3", 3, true},
		{" 12 ", 12, true},
		{"", 0, false},
		{"null", 0, false},
		{"0", 0, false},
		{"-2", 0, false},
		{"2.5", 0, false},
		{"2.0", 0, false},
		{"true", 0, false},
		{`"3"`, 0, false},
		{"[3]", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, test := range tests {
		got, err := positiveInt(json.RawMessage(test.raw), "floor", types.ErrInvalidFloor)
		if test.ok && (err != nil || got != test.want) {
			t.Errorf("positiveInt(%q) = %d, %v, expected %d", test.raw, got, err, test.want)
		}
		if !test.ok && types.KindOf(err) != types.KindInvalidFloor {
			t.Errorf("positiveInt(%q) = %d, %v, expected an InvalidFloor error", test.raw, got, err)
		}
	}
}

func TestStatusOf(t *testing.T) {
	tests := map[types.ErrorKind]int{
		types.KindInvalidCount:         http.StatusBadRequest,
		types.KindInvalidFloor:         http.StatusBadRequest,
		types.KindNoElevatorsAvailable: http.StatusBadRequest,
		types.KindNoPendingRequest:     http.StatusBadRequest,
		types.KindBadRequest:           http.StatusBadRequest,
		types.KindNotFound:             http.StatusNotFound,
		types.KindUnavailable:          http.StatusConflict,
		types.KindClosed:               http.StatusServiceUnavailable,
		types.KindInternal:             http.StatusInternalServerError,
	}
	for kind, want := range tests {
		if got := StatusOf(kind); got != want {
			t.Errorf("StatusOf(%s) = %d, expected %d", kind, got, want)
		}
	}
}

func TestRejectsMalformedInput(t *testing.T) {
	f := newFleet(t)
	tests := []struct {
		cmd  Command
		kind types.ErrorKind
	}{
		{Command{Op: "fly"}, types.KindBadRequest},
		{Command{Op: OpInitialize}, types.KindInvalidCount},
		{Command{Op: OpInitialize, Count: json.RawMessage("true")}, types.KindInvalidCount},
		{Command{Op: OpInitialize, Count: json.RawMessage("1.5")}, types.KindInvalidCount},
		{Command{Op: OpInitialize, Count: Int(0)}, types.KindInvalidCount},
		{Command{Op: OpDispatch, Pickup: Int(2)}, types.KindInvalidFloor},
		{Command{Op: OpDispatch, Pickup: json.RawMessage(`"2"`), Destination: Int(3)}, types.KindInvalidFloor},
		{Command{Op: OpDispatch, Pickup: Int(-1), Destination: Int(3)}, types.KindInvalidFloor},
		{Command{Op: OpStep}, types.KindNotFound},
		{Command{Op: OpStep, ElevatorID: json.RawMessage("1.0")}, types.KindNotFound},
	}
	for _, test := range tests {
		resp := Execute(f, test.cmd)
		if resp.OK || resp.Kind != test.kind {
			t.Errorf("Execute(%+v) = %+v, expected kind %s", test.cmd, resp, test.kind)
		}
		if resp.Status != StatusOf(test.kind) {
			t.Errorf("Execute(%+v) status = %d, expected %d", test.cmd, resp.Status, StatusOf(test.kind))
		}
	}

	elevators := mustExecute(t, f, Command{Op: OpElevators}).Data.([]types.Elevator)
	if len(elevators) != 0 {
		t.Errorf("rejected commands created %d elevators", len(elevators))
	}
}

func TestScenario(t *testing.T) {
	f := newFleet(t)

	resp := mustExecute(t, f, Command{Op: OpInitialize, Count: Int(2)})
	if resp.Status != http.StatusOK {
		t.Errorf("initialize status = %d, expected %d", resp.Status, http.StatusOK)
	}

	resp = mustExecute(t, f, Command{Op: OpDispatch, Pickup: Int(5), Destination: Int(9)})
	if resp.Status != http.StatusCreated {
		t.Errorf("dispatch status = %d, expected %d", resp.Status, http.StatusCreated)
	}
	if id := resp.Data.(map[string]any)["elevator_id"]; id != 1 {
		t.Errorf("dispatch elevator_id = %v, expected 1", id)
	}

	next := mustExecute(t, f, Command{Op: OpNextFloor, ElevatorID: Int(1)}).Data.(map[string]int)
	if next["next_floor"] != 5 {
		t.Errorf("next_floor = %d, expected 5", next["next_floor"])
	}
	dir := mustExecute(t, f, Command{Op: OpDirection, ElevatorID: Int(1)}).Data.(map[string]any)
	if dir["direction"] != types.MD_Up {
		t.Errorf("direction = %v, expected %v", dir["direction"], types.MD_Up)
	}

	first := mustExecute(t, f, Command{Op: OpStep, ElevatorID: Int(1)}).Data.(types.Move)
	second := mustExecute(t, f, Command{Op: OpStep, ElevatorID: Int(1)}).Data.(types.Move)
	if first.To != 5 || first.Completed || second.To != 9 || !second.Completed {
		t.Errorf("steps = %+v, %+v, expected 1->5 then 5->9 completed", first, second)
	}

	resp = Execute(f, Command{Op: OpStep, ElevatorID: Int(1)})
	if resp.OK || resp.Kind != types.KindNoPendingRequest {
		t.Errorf("third step = %+v, expected NoPendingRequest", resp)
	}

	requests := mustExecute(t, f, Command{Op: OpRequests, ElevatorID: Int(1)}).Data.([]types.Request)
	if len(requests) != 1 || !requests[0].IsComplete {
		t.Errorf("requests = %+v, expected one completed request", requests)
	}
}

func TestToggles(t *testing.T) {
	f := newFleet(t)
	mustExecute(t, f, Command{Op: OpInitialize, Count: Int(1)})
	mustExecute(t, f, Command{Op: OpDispatch, Pickup: Int(3), Destination: Int(4)})

	door := mustExecute(t, f, Command{Op: OpToggleDoor, ElevatorID: Int(1)}).Data.(map[string]any)
	if door["is_door_open"] != true {
		t.Errorf("toggle_door = %v, expected the door open", door)
	}
	resp := Execute(f, Command{Op: OpStep, ElevatorID: Int(1)})
	if resp.Kind != types.KindUnavailable || resp.Status != http.StatusConflict {
		t.Errorf("step with open door = %+v, expected Unavailable/409", resp)
	}
	mustExecute(t, f, Command{Op: OpToggleDoor, ElevatorID: Int(1)})

	maintenance := mustExecute(t, f, Command{Op: OpToggleMaintenance, ElevatorID: Int(1)}).Data.(map[string]any)
	if maintenance["in_maintenance"] != true {
		t.Errorf("toggle_maintenance = %v, expected maintenance on", maintenance)
	}
	resp = Execute(f, Command{Op: OpDispatch, Pickup: Int(1), Destination: Int(2)})
	if resp.Kind != types.KindNoElevatorsAvailable {
		t.Errorf("dispatch during maintenance = %+v, expected NoElevatorsAvailable", resp)
	}

	resp = Execute(f, Command{Op: OpElevator, ElevatorID: Int(7)})
	if resp.Kind != types.KindNotFound || resp.Status != http.StatusNotFound {
		t.Errorf("elevator 7 = %+v, expected NotFound/404", resp)
	}
}

func TestStepAll(t *testing.T) {
	f := newFleet(t)
	mustExecute(t, f, Command{Op: OpInitialize, Count: Int(2)})

	moves := mustExecute(t, f, Command{Op: OpStepAll}).Data.(map[string]any)["moves"].([]types.Move)
	if len(moves) != 0 {
		t.Errorf("step_all on idle fleet = %+v, expected no moves", moves)
	}

	mustExecute(t, f, Command{Op: OpDispatch, Pickup: Int(2), Destination: Int(6)})
	moves = mustExecute(t, f, Command{Op: OpStepAll}).Data.(map[string]any)["moves"].([]types.Move)
	if len(moves) != 1 || moves[0].To != 2 {
		t.Errorf("step_all = %+v, expected one move to floor 2", moves)
	}
}

func TestClosedFleet(t *testing.T) {
	f := newFleet(t)
	f.Close()
	resp := Execute(f, Command{Op: OpElevators})
	if resp.Kind != types.KindClosed || resp.Status != http.StatusServiceUnavailable {
		t.Errorf("Execute() on closed fleet = %+v, expected Closed/503", resp)
	}
}

func TestCommandJSON(t *testing.T) {
	var cmd Command
	if err := json.Unmarshal([]byte(`{"op":"dispatch","requested_floor":5,"destination_floor":9}`), &cmd); err != nil {
		t.Fatalf("Unmarshal() returned %v", err)
	}
	if cmd.Op != OpDispatch || string(cmd.Pickup) != "5" || string(cmd.Destination) != "9" {
		t.Errorf("Unmarshal() = %+v", cmd)
	}
}
