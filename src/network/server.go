package network

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"time"

	"liftbank/src/command"
	"liftbank/src/config"
	"liftbank/src/fleet"

	quic "github.com/quic-go/quic-go"
)

type Server struct {
	fleet *fleet.Fleet
	ln    *quic.Listener
}

// Listen binds a QUIC listener on addr.
func Listen(f *fleet.Fleet, addr string) (*Server, error) {
	tlsConf, err := NewServerTLSConfig()
	if err != nil {
		return nil, fmt.Errorf("server tls config: %w", err)
	}
	ln, err := quic.ListenAddr(addr, tlsConf, quicConfig())
	if err != nil {
		return nil, fmt.Errorf("quic listen: %w", err)
	}
	return &Server{fleet: f, ln: ln}, nil
}

func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts connections until ctx is cancelled, then closes the listener.
func (s *Server) Serve(ctx context.Context) error {
	defer s.ln.Close()
	Log.Info().Str("addr", s.Addr().String()).Msg("QUIC transport listening")
	for {
		conn, err := s.ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("quic accept: %w", err)
		}
		Log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("QUIC connection accepted")
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn *quic.Conn) {
	for {
		stream, err := conn.AcceptStream(ctx)
		if err != nil {
			Log.Debug().Str("remote", conn.RemoteAddr().String()).Err(err).Msg("QUIC connection closed")
			return
		}
		go s.handleStream(stream)
	}
}

// handleStream reads one command until the client closes its side, then
// writes one response and closes the stream.
func (s *Server) handleStream(stream *quic.Stream) {
	defer stream.Close()
	_ = stream.SetDeadline(time.Now().Add(config.CommandTimeout))

	resp := s.respond(stream)
	payload, err := json.Marshal(resp)
	if err != nil {
		Log.Error().Err(err).Msg("Failed to encode response")
		return
	}
	if _, err := stream.Write(payload); err != nil {
		Log.Warn().Err(err).Msg("Failed to write response")
	}
}

func (s *Server) respond(r io.Reader) command.Response {
	payload, err := io.ReadAll(io.LimitReader(r, config.MaxCommandSize+1))
	if err != nil {
		return command.Failure(fmt.Errorf("read command: %v: %w", err, command.ErrBadRequest))
	}
	if len(payload) > config.MaxCommandSize {
		return command.Failure(fmt.Errorf("command exceeds %d bytes: %w", config.MaxCommandSize, command.ErrBadRequest))
	}
	var cmd command.Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return command.Failure(fmt.Errorf("decode command: %v: %w", err, command.ErrBadRequest))
	}
	return command.Execute(s.fleet, cmd)
}
