package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSendRoundTrip(t *testing.T) {
	runtimeDir := t.TempDir()
	socketPath := filepath.Join(runtimeDir, "voicecmd.sock")

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- Serve(ctx, listener, HandlerFunc(func(_ context.Context, req Request) Response {
			require.Equal(t, "status", req.Command)
			return Response{OK: true, State: "listening", Message: "ok"}
		}))
	}()

	resp, err := Send(context.Background(), socketPath, Request{Command: "status"}, 200*time.Millisecond)
	require.NoError(t, err)
	require.True(t, resp.OK)
	require.Equal(t, "listening", resp.State)
	require.Equal(t, "ok", resp.Message)

	cancel()
	require.NoError(t, <-serveDone)
}

func TestSendDecodeResponseError(t *testing.T) {
	runtimeDir := t.TempDir()
	socketPath := filepath.Join(runtimeDir, "voicecmd.sock")

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			return
		}
		defer conn.Close()

		reader := bufio.NewReader(conn)
		_, _ = reader.ReadBytes('\n')
		_, _ = conn.Write([]byte("not-json\n"))
	}()

	_, err = Send(context.Background(), socketPath, Request{Command: "status"}, 200*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode response")
}

func TestSendReadResponseError(t *testing.T) {
	runtimeDir := t.TempDir()
	socketPath := filepath.Join(runtimeDir, "voicecmd.sock")

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			return
		}
		_ = conn.Close()
	}()

	_, err = Send(context.Background(), socketPath, Request{Command: "status"}, 200*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "read response")
}

func TestServeAnswersMalformedRequestsWithoutHandler(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), SocketName)
	stop := serveForTest(t, socketPath, HandlerFunc(func(_ context.Context, req Request) Response {
		t.Errorf("handler reached with %+v", req)
		return Response{OK: true}
	}))
	defer stop()

	tests := []struct {
		name    string
		line    string
		wantErr string
	}{
		{name: "not json", line: "not-json", wantErr: "decode"},
		{name: "unknown field", line: `{"command":"status","argv":["x"]}`, wantErr: "unknown field"},
		{name: "unknown command", line: `{"command":"reboot"}`, wantErr: `unknown command "reboot"`},
		{name: "status with args", line: `{"command":"status","args":["now"]}`, wantErr: "status takes no arguments"},
		{name: "ptt without state", line: `{"command":"ptt"}`, wantErr: "ptt takes exactly 1"},
		{name: "ptt bad state", line: `{"command":"ptt","args":["hold"]}`, wantErr: "press or release"},
		{name: "macro without id", line: `{"command":"macro","args":[]}`, wantErr: "macro takes at least 1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := rawRoundTrip(t, socketPath, tc.line)
			require.False(t, resp.OK)
			require.Contains(t, resp.Error, ErrBadRequest.Error())
			require.Contains(t, resp.Error, tc.wantErr)
		})
	}
}

func TestServePassesArgsToHandler(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), SocketName)
	got := make(chan Request, 1)
	stop := serveForTest(t, socketPath, HandlerFunc(func(_ context.Context, req Request) Response {
		got <- req
		return Response{OK: true, Message: "macro ksp/crew set (2 values)"}
	}))
	defer stop()

	resp := rawRoundTrip(t, socketPath, `{"command":"macro","args":["ksp/crew","Jeb","Bill"]}`)
	require.True(t, resp.OK, resp.Error)
	require.Equal(t, Request{Command: CommandMacro, Args: []string{"ksp/crew", "Jeb", "Bill"}}, <-got)
}

func TestRequestValidate(t *testing.T) {
	require.NoError(t, Request{Command: CommandPTT, Args: []string{"release"}}.Validate())
	require.NoError(t, Request{Command: CommandMacro, Args: []string{"ksp/crew"}}.Validate())
	require.ErrorIs(t, Request{Command: CommandToggle, Args: []string{"x"}}.Validate(), ErrBadRequest)
	require.True(t, IsControl("resync"))
	require.False(t, IsControl("serve"))
}

func rawRoundTrip(t *testing.T, socketPath, line string) Response {
	t.Helper()

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(line + "\n"))
	require.NoError(t, err)

	reply, err := bufio.NewReader(conn).ReadBytes('\n')
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(reply, &resp))
	return resp
}

func TestProbe(t *testing.T) {
	runtimeDir := t.TempDir()
	socketPath := filepath.Join(runtimeDir, "voicecmd.sock")

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- Serve(ctx, listener, HandlerFunc(func(_ context.Context, req Request) Response {
			if req.Command == "status" {
				return Response{OK: true, State: "paused"}
			}
			return Response{OK: false, Error: "bad"}
		}))
	}()

	alive, probeErr := Probe(context.Background(), socketPath, 200*time.Millisecond)
	require.NoError(t, probeErr)
	require.True(t, alive)

	cancel()
	require.NoError(t, <-serveDone)

	alive, probeErr = Probe(context.Background(), socketPath, 100*time.Millisecond)
	require.NoError(t, probeErr)
	require.False(t, alive)
}

func TestCallCarriesArgsAndSurfacesErrors(t *testing.T) {
	runtimeDir := t.TempDir()
	socketPath := filepath.Join(runtimeDir, "voicecmd.sock")

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- Serve(ctx, listener, HandlerFunc(func(_ context.Context, req Request) Response {
			if req.Command == "ptt" && len(req.Args) == 1 && req.Args[0] == "press" {
				return Response{OK: true, State: "ptt"}
			}
			return Response{OK: false, Error: "unsupported"}
		}))
	}()

	resp, err := Call(context.Background(), socketPath, "ptt", "press")
	require.NoError(t, err)
	require.Equal(t, "ptt", resp.State)

	_, err = Call(context.Background(), socketPath, "ptt", "release")
	require.EqualError(t, err, "ptt: unsupported")

	resp, err = Call(context.Background(), socketPath, "ptt", "wiggle")
	require.Error(t, err)
	require.Contains(t, resp.Error, "press or release")

	cancel()
	require.NoError(t, <-serveDone)

	_, err = Call(context.Background(), filepath.Join(runtimeDir, "missing.sock"), "status")
	require.ErrorIs(t, err, ErrNoConsumer)
}
