// Package api serves the simulator over JSON/HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"liftbank/src/command"
	"liftbank/src/config"
	"liftbank/src/fleet"
	"liftbank/src/logger"
	"liftbank/src/types"
)

var Log = logger.GetLogger()

// route is an action addressed to one elevator: /{id}/{action}/.
type route struct {
	method string
	op     command.Op
}

var routes = map[string]route{
	"get_user_requests":  {http.MethodGet, command.OpRequests},
	"get_next_floor":     {http.MethodGet, command.OpNextFloor},
	"check_direction":    {http.MethodGet, command.OpDirection},
	"door_status":        {http.MethodPost, command.OpToggleDoor},
	"toggle_maintenance": {http.MethodPost, command.OpToggleMaintenance},
	"move_elevator":      {http.MethodPost, command.OpStep},
}

type Server struct {
	fleet *fleet.Fleet
	mux   *http.ServeMux
}

func New(f *fleet.Fleet) *Server {
	s := &Server{fleet: f, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /initialize_elevators/{$}", s.withBody(command.OpInitialize))
	s.mux.HandleFunc("POST /save_user_request/{$}", s.withBody(command.OpDispatch))
	s.mux.HandleFunc("POST /step_all/{$}", s.handleStepAll)
	s.mux.HandleFunc("GET /elevators/{$}", s.handleElevators)
	// /elevators/{id}/ shares its shape with the per-elevator actions.
	s.mux.HandleFunc("/{first}/{second}/{$}", s.handleElevatorRoute)
	return s
}

func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: config.CommandTimeout,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	Log.Info().Str("addr", ln.Addr().String()).Msg("HTTP API listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP API: %w", err)
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) withBody(op command.Op) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cmd command.Command
		r.Body = http.MaxBytesReader(w, r.Body, config.MaxCommandSize)
		// An empty body is a command with every field missing.
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil && !errors.Is(err, io.EOF) {
			writeResponse(w, command.Failure(fmt.Errorf("decode body: %v: %w", err, command.ErrBadRequest)))
			return
		}
		cmd.Op = op
		s.execute(w, cmd)
	}
}

func (s *Server) handleStepAll(w http.ResponseWriter, r *http.Request) {
	s.execute(w, command.Command{Op: command.OpStepAll})
}

func (s *Server) handleElevators(w http.ResponseWriter, r *http.Request) {
	s.execute(w, command.Command{Op: command.OpElevators})
}

func (s *Server) handleElevatorRoute(w http.ResponseWriter, r *http.Request) {
	first, second := r.PathValue("first"), r.PathValue("second")
	if first == "elevators" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		s.executeOn(w, command.OpElevator, second)
		return
	}

	rt, ok := routes[second]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if r.Method != rt.method {
		methodNotAllowed(w, rt.method)
		return
	}
	s.executeOn(w, rt.op, first)
}

// executeOn runs op on the elevator named by a path segment. Anything other
// than a positive integer cannot name an elevator.
func (s *Server) executeOn(w http.ResponseWriter, op command.Op, rawID string) {
	id, err := strconv.Atoi(rawID)
	if err != nil || id <= 0 {
		writeResponse(w, command.Failure(fmt.Errorf("elevator %q: %w", rawID, types.ErrNotFound)))
		return
	}
	s.execute(w, command.Command{Op: op, ElevatorID: command.Int(id)})
}

func (s *Server) execute(w http.ResponseWriter, cmd command.Command) {
	writeResponse(w, command.Execute(s.fleet, cmd))
}

type errorBody struct {
	Error string          `json:"error"`
	Kind  types.ErrorKind `json:"kind"`
}

func writeResponse(w http.ResponseWriter, resp command.Response) {
	if !resp.OK {
		writeJSON(w, resp.Status, errorBody{Error: resp.Error, Kind: resp.Kind})
		return
	}
	writeJSON(w, resp.Status, resp.Data)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		Log.Warn().Err(err).Msg("Failed to write response")
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{
		Error: "method not allowed",
		Kind:  types.KindBadRequest,
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		Log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("HTTP request")
	})
}
