package ipc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// RequestTimeout bounds how long a client may take to send its request line.
const RequestTimeout = 2 * time.Second

// Handler answers one validated control request.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Serve answers control clients until ctx ends or the listener closes. Each
// connection carries one JSON request line and gets one JSON response line.
// Malformed or invalid requests are answered here and never reach handler.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	var conns sync.WaitGroup
	defer conns.Wait()

	stop := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stop()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept control connection: %w", err)
		}

		conns.Add(1)
		go func() {
			defer conns.Done()
			defer conn.Close()
			_ = json.NewEncoder(conn).Encode(answer(ctx, conn, handler))
		}()
	}
}

func answer(ctx context.Context, conn net.Conn, handler Handler) Response {
	_ = conn.SetReadDeadline(time.Now().Add(RequestTimeout))
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return failure(fmt.Errorf("%w: read: %v", ErrBadRequest, err))
	}

	req, err := decodeRequest(line)
	if err != nil {
		return failure(err)
	}
	if err := req.Validate(); err != nil {
		return failure(err)
	}
	return handler.Handle(ctx, req)
}

func decodeRequest(line []byte) (Request, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.DisallowUnknownFields()

	var req Request
	if err := dec.Decode(&req); err != nil {
		return Request{}, fmt.Errorf("%w: decode: %v", ErrBadRequest, err)
	}
	return req, nil
}
