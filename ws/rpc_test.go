package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/datakeeper/scanrelay/channel"
	"github.com/datakeeper/scanrelay/dispatch"
	"github.com/datakeeper/scanrelay/rpc"
	"github.com/datakeeper/scanrelay/scan"
	"github.com/datakeeper/scanrelay/watch"
	"github.com/sourcegraph/jsonrpc2"
)

const testToken = "test-token"

// recordingDispatcher records requests instead of broadcasting them.
type recordingDispatcher struct {
	mu   sync.Mutex
	reqs []scan.Request
	err  error
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, req scan.Request) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.reqs = append(d.reqs, req)
	return nil
}

func (d *recordingDispatcher) paths() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.reqs))
	for i, r := range d.reqs {
		out[i] = r.Path.Path
	}
	return out
}

type testEnv struct {
	t          *testing.T
	dispatcher *recordingDispatcher
	events     *watch.EventWatcher
	conn       *jsonrpc2.Conn
	notifs     chan *jsonrpc2.Request
	ctx        context.Context
}

type clientHandler struct {
	notifs chan *jsonrpc2.Request
}

func (h *clientHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if req.Notif {
		h.notifs <- req
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	d := &recordingDispatcher{}
	events := watch.NewEventWatcher()
	listener := channel.NewListener(scan.Validator{}, dispatch.Observed{Next: d, Observer: events}, channel.Options{})
	h := NewRPCHandler(testToken, "test", true, channel.Registry{channel.Name: listener}, events)
	server := httptest.NewServer(h)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	wsConn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		cancel()
		server.Close()
		t.Fatalf("failed to connect: %v", err)
	}

	notifs := make(chan *jsonrpc2.Request, 8)
	conn := jsonrpc2.NewConn(ctx, newWebSocketStream(wsConn), &clientHandler{notifs: notifs})

	t.Cleanup(func() {
		conn.Close()
		cancel()
		server.Close()
		events.Stop()
	})

	return &testEnv{
		t:          t,
		dispatcher: d,
		events:     events,
		conn:       conn,
		notifs:     notifs,
		ctx:        ctx,
	}
}

func (e *testEnv) auth() rpc.AuthResult {
	e.t.Helper()
	var result rpc.AuthResult
	if err := e.conn.Call(e.ctx, "auth", rpc.AuthParams{Token: testToken}, &result); err != nil {
		e.t.Fatalf("auth failed: %v", err)
	}
	return result
}

func (e *testEnv) call(method string, params any) (json.RawMessage, *jsonrpc2.Error) {
	e.t.Helper()
	var result json.RawMessage
	err := e.conn.Call(e.ctx, method, params, &result)
	if err == nil {
		return result, nil
	}
	var rpcErr *jsonrpc2.Error
	if !errors.As(err, &rpcErr) {
		e.t.Fatalf("call %s: transport error: %v", method, err)
	}
	return nil, rpcErr
}

func errorKind(t *testing.T, rpcErr *jsonrpc2.Error) channel.ErrorKind {
	t.Helper()
	if rpcErr.Data == nil {
		t.Fatal("expected error data")
	}
	var data rpc.ErrorData
	if err := json.Unmarshal(*rpcErr.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal error data: %v", err)
	}
	return data.Kind
}

func strPtr(s string) *string { return &s }

func TestRPC_AuthRequiredFirst(t *testing.T) {
	env := newTestEnv(t)

	_, rpcErr := env.call("database_export_channel.scanFile", rpc.ScanFileParams{Path: strPtr("/sdcard/a.jpg")})
	if rpcErr == nil || rpcErr.Code != jsonrpc2.CodeInvalidRequest {
		t.Fatalf("expected invalid request error, got %v", rpcErr)
	}
	if len(env.dispatcher.paths()) != 0 {
		t.Error("expected no dispatch before auth")
	}
}

func TestRPC_AuthInvalidToken(t *testing.T) {
	env := newTestEnv(t)

	_, rpcErr := env.call("auth", rpc.AuthParams{Token: "wrong"})
	if rpcErr == nil || rpcErr.Message != "invalid token" {
		t.Fatalf("expected invalid token error, got %v", rpcErr)
	}
}

func TestRPC_AuthListsChannels(t *testing.T) {
	env := newTestEnv(t)

	result := env.auth()
	if result.Version != "test" {
		t.Errorf("expected version test, got %s", result.Version)
	}
	if len(result.Channels) != 1 || result.Channels[0] != channel.Name {
		t.Errorf("expected [%s], got %v", channel.Name, result.Channels)
	}
}

func TestRPC_ScanFile(t *testing.T) {
	env := newTestEnv(t)
	env.auth()

	result, rpcErr := env.call("database_export_channel.scanFile", rpc.ScanFileParams{Path: strPtr("/storage/emulated/0/Pictures/img.jpg")})
	if rpcErr != nil {
		t.Fatalf("unexpected error: %v", rpcErr)
	}
	if len(result) != 0 && string(result) != "null" {
		t.Errorf("expected no payload, got %s", result)
	}

	paths := env.dispatcher.paths()
	if len(paths) != 1 || paths[0] != "/storage/emulated/0/Pictures/img.jpg" {
		t.Errorf("unexpected dispatches: %v", paths)
	}
}

func TestRPC_ScanFile_NullPath(t *testing.T) {
	env := newTestEnv(t)
	env.auth()

	_, rpcErr := env.call("database_export_channel.scanFile", rpc.ScanFileParams{Path: nil})
	if rpcErr == nil {
		t.Fatal("expected error for null path")
	}
	if rpcErr.Code != rpc.CodeValidation {
		t.Errorf("expected code %d, got %d", rpc.CodeValidation, rpcErr.Code)
	}
	if kind := errorKind(t, rpcErr); kind != channel.ErrorEmpty {
		t.Errorf("expected kind empty, got %s", kind)
	}
	if len(env.dispatcher.paths()) != 0 {
		t.Error("expected no dispatch")
	}
}

func TestRPC_ScanFile_NoParams(t *testing.T) {
	env := newTestEnv(t)
	env.auth()

	_, rpcErr := env.call("database_export_channel.scanFile", nil)
	if rpcErr == nil || errorKind(t, rpcErr) != channel.ErrorEmpty {
		t.Fatalf("expected empty error, got %v", rpcErr)
	}
}

func TestRPC_ScanFile_ArrayParams(t *testing.T) {
	env := newTestEnv(t)
	env.auth()

	_, rpcErr := env.call("database_export_channel.scanFile", []string{"/sdcard/a.jpg"})
	if rpcErr == nil || rpcErr.Code != jsonrpc2.CodeInvalidParams {
		t.Fatalf("expected invalid params error, got %v", rpcErr)
	}
}

func TestRPC_ScanFile_DispatchFailure(t *testing.T) {
	env := newTestEnv(t)
	env.dispatcher.err = &dispatch.Error{Kind: dispatch.KindSubmissionFailed, Backend: "fake"}
	env.auth()

	_, rpcErr := env.call("database_export_channel.scanFile", rpc.ScanFileParams{Path: strPtr("/sdcard/a.jpg")})
	if rpcErr == nil || rpcErr.Code != rpc.CodeDispatch {
		t.Fatalf("expected dispatch error, got %v", rpcErr)
	}
	if kind := errorKind(t, rpcErr); kind != channel.ErrorSubmissionFailed {
		t.Errorf("expected kind submission_failed, got %s", kind)
	}
}

func TestRPC_NotImplemented(t *testing.T) {
	env := newTestEnv(t)
	env.auth()

	_, rpcErr := env.call("database_export_channel.exportDatabase", map[string]any{"path": "/sdcard/a.db"})
	if rpcErr == nil || rpcErr.Code != jsonrpc2.CodeMethodNotFound || rpcErr.Message != "not implemented" {
		t.Fatalf("expected not implemented, got %v", rpcErr)
	}
	if rpcErr.Data != nil {
		t.Error("not implemented must not carry an error kind")
	}
	if len(env.dispatcher.paths()) != 0 {
		t.Error("expected no dispatch")
	}
}

func TestRPC_UnknownChannel(t *testing.T) {
	env := newTestEnv(t)
	env.auth()

	_, rpcErr := env.call("other_channel.scanFile", rpc.ScanFileParams{Path: strPtr("/sdcard/a.jpg")})
	if rpcErr == nil || rpcErr.Code != jsonrpc2.CodeMethodNotFound {
		t.Fatalf("expected method not found, got %v", rpcErr)
	}
}

func TestRPC_ScanSubscribe(t *testing.T) {
	env := newTestEnv(t)
	env.auth()

	result, rpcErr := env.call("scan.subscribe", nil)
	if rpcErr != nil {
		t.Fatalf("subscribe failed: %v", rpcErr)
	}
	var sub rpc.ScanSubscribeResult
	if err := json.Unmarshal(result, &sub); err != nil || sub.ID == "" {
		t.Fatalf("unexpected subscribe result %s (%v)", result, err)
	}

	if _, rpcErr := env.call("database_export_channel.scanFile", rpc.ScanFileParams{Path: strPtr("/sdcard/DCIM/b.jpg")}); rpcErr != nil {
		t.Fatalf("scanFile failed: %v", rpcErr)
	}

	select {
	case n := <-env.notifs:
		if n.Method != watch.MethodScanDispatched {
			t.Fatalf("expected %s, got %s", watch.MethodScanDispatched, n.Method)
		}
		var params rpc.ScanDispatchedParams
		if err := json.Unmarshal(*n.Params, &params); err != nil {
			t.Fatal(err)
		}
		if params.ID != sub.ID || params.Path != "/sdcard/DCIM/b.jpg" || params.URI != "file:///sdcard/DCIM/b.jpg" {
			t.Errorf("unexpected params %+v", params)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for scan.dispatched")
	}

	if _, rpcErr := env.call("scan.unsubscribe", rpc.ScanUnsubscribeParams{ID: sub.ID}); rpcErr != nil {
		t.Fatalf("unsubscribe failed: %v", rpcErr)
	}
	if env.events.HasSubscriptions() {
		t.Error("expected subscription removed")
	}
}

func TestRPC_ScanUnsubscribe_MissingID(t *testing.T) {
	env := newTestEnv(t)
	env.auth()

	_, rpcErr := env.call("scan.unsubscribe", rpc.ScanUnsubscribeParams{})
	if rpcErr == nil || rpcErr.Code != jsonrpc2.CodeInvalidParams {
		t.Fatalf("expected invalid params, got %v", rpcErr)
	}
}
