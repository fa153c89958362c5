package network

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"liftbank/src/command"
	"liftbank/src/config"

	quic "github.com/quic-go/quic-go"
)

type Client struct {
	conn *quic.Conn
}

func Dial(ctx context.Context, addr string) (*Client, error) {
	conn, err := quic.DialAddr(ctx, addr, NewClientTLSConfig(), quicConfig())
	if err != nil {
		return nil, fmt.Errorf("quic dial: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Do sends cmd on a new stream and waits for its response.
func (c *Client) Do(ctx context.Context, cmd command.Command) (command.Response, error) {
	streamCtx, cancel := context.WithTimeout(ctx, config.OpenStreamTimeout)
	defer cancel()
	stream, err := c.conn.OpenStreamSync(streamCtx)
	if err != nil {
		return command.Response{}, fmt.Errorf("open stream: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetDeadline(deadline)
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		stream.CancelRead(0)
		stream.CancelWrite(0)
		return command.Response{}, fmt.Errorf("encode command: %w", err)
	}
	if _, err := stream.Write(payload); err != nil {
		stream.CancelRead(0)
		return command.Response{}, fmt.Errorf("write command: %w", err)
	}
	if err := stream.Close(); err != nil {
		return command.Response{}, fmt.Errorf("close send side: %w", err)
	}

	reply, err := io.ReadAll(io.LimitReader(stream, config.MaxResponseSize))
	if err != nil {
		return command.Response{}, fmt.Errorf("read response: %w", err)
	}
	var resp command.Response
	if err := json.Unmarshal(reply, &resp); err != nil {
		return command.Response{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

func (c *Client) Close() error {
	return c.conn.CloseWithError(0, "bye")
}
