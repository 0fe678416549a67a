package ws

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/datakeeper/scanrelay/channel"
	"github.com/datakeeper/scanrelay/logger"
	"github.com/datakeeper/scanrelay/rpc"
	"github.com/datakeeper/scanrelay/watch"
	"github.com/google/uuid"
	"github.com/sourcegraph/jsonrpc2"
)

// writeTimeout bounds a single frame write to a client.
const writeTimeout = 10 * time.Second

// RPCHandler handles JSON-RPC 2.0 over WebSocket.
type RPCHandler struct {
	token    string
	version  string
	devMode  bool
	channels channel.Registry
	events   *watch.EventWatcher
}

func NewRPCHandler(token, version string, devMode bool, channels channel.Registry, events *watch.EventWatcher) *RPCHandler {
	return &RPCHandler{
		token:    token,
		version:  version,
		devMode:  devMode,
		channels: channels,
		events:   events,
	}
}

func (h *RPCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: h.devMode,
	})
	if err != nil {
		slog.Error("failed to accept websocket", "error", err)
		return
	}

	h.handleConnection(r.Context(), conn)
}

func (h *RPCHandler) handleConnection(ctx context.Context, wsConn *websocket.Conn) {
	stream := newWebSocketStream(wsConn)
	connID := uuid.Must(uuid.NewV7()).String()
	h.HandleStream(ctx, stream, connID)
}

// HandleStream serves one JSON-RPC connection until the peer disconnects.
func (h *RPCHandler) HandleStream(ctx context.Context, stream jsonrpc2.ObjectStream, connID string) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r, "websocket connection crashed", "connId", connID)
		}
	}()

	log := slog.With("connId", connID)
	log.Info("new connection")

	state := &rpcConnState{
		connID: connID,
		log:    log,
	}

	handler := &rpcMethodHandler{
		RPCHandler: h,
		state:      state,
		log:        log,
	}

	rpcConn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.AsyncHandler(handler))
	state.setConn(rpcConn)

	<-rpcConn.DisconnectNotify()

	state.cleanup()
	log.Info("connection closed")
}

// rpcConnState tracks per-connection state.
type rpcConnState struct {
	mu            sync.Mutex
	connID        string
	conn          *jsonrpc2.Conn
	notifier      *JSONRPCNotifier
	log           *slog.Logger
	subscriptions map[string]watch.Watcher // subID → watcher for cleanup
}

func (s *rpcConnState) setConn(conn *jsonrpc2.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.notifier = NewJSONRPCNotifier(conn)
	s.subscriptions = make(map[string]watch.Watcher)
	s.mu.Unlock()
}

func (s *rpcConnState) getNotifier() watch.Notifier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifier
}

func (s *rpcConnState) trackSubscription(id string, watcher watch.Watcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[id] = watcher
}

func (s *rpcConnState) untrackSubscription(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.subscriptions[id]
	delete(s.subscriptions, id)
	return ok
}

func (s *rpcConnState) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, watcher := range s.subscriptions {
		watcher.Unsubscribe(id)
	}
	s.subscriptions = nil
}

type rpcMethodHandler struct {
	*RPCHandler
	state         *rpcConnState
	log           *slog.Logger
	authenticated bool
	authMu        sync.Mutex
}

func (h *rpcMethodHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r, "rpc handler panic", "method", req.Method, "connId", h.state.connID)
		}
	}()

	h.log.Debug("received request", "method", req.Method, "id", req.ID)

	// Auth must be the first request
	if !h.isAuthenticated() {
		if req.Method != "auth" {
			h.replyError(ctx, conn, req, jsonrpc2.CodeInvalidRequest, "first request must be auth", nil)
			conn.Close()
			return
		}
		h.handleAuth(ctx, conn, req)
		return
	}

	switch req.Method {
	case "scan.subscribe":
		h.handleScanSubscribe(ctx, conn, req)
	case "scan.unsubscribe":
		h.handleScanUnsubscribe(ctx, conn, req)
	default:
		h.handleChannelCall(ctx, conn, req)
	}
}

func (h *rpcMethodHandler) isAuthenticated() bool {
	h.authMu.Lock()
	defer h.authMu.Unlock()
	return h.authenticated
}

func (h *rpcMethodHandler) setAuthenticated() {
	h.authMu.Lock()
	h.authenticated = true
	h.authMu.Unlock()
}

func (h *rpcMethodHandler) handleAuth(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	var params rpc.AuthParams
	if err := unmarshalParams(req, &params); err != nil {
		h.replyError(ctx, conn, req, jsonrpc2.CodeInvalidParams, "invalid params", nil)
		conn.Close()
		return
	}

	if subtle.ConstantTimeCompare([]byte(params.Token), []byte(h.token)) != 1 {
		h.log.Warn("invalid auth token")
		h.replyError(ctx, conn, req, jsonrpc2.CodeInvalidRequest, "invalid token", nil)
		conn.Close()
		return
	}

	h.setAuthenticated()
	h.log.Info("authenticated")

	result := rpc.AuthResult{
		Version:  h.version,
		Channels: h.channels.Names(),
	}
	if err := conn.Reply(ctx, req.ID, result); err != nil {
		h.log.Error("failed to send auth response", "error", err)
	}
}

// replyError skips notifications: they have no id to reply to.
func (h *rpcMethodHandler) replyError(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request, code int64, message string, data any) {
	if req.Notif {
		return
	}
	rpcErr := &jsonrpc2.Error{
		Code:    code,
		Message: message,
	}
	if data != nil {
		rpcErr.SetError(data)
	}
	if replyErr := conn.ReplyWithError(ctx, req.ID, rpcErr); replyErr != nil {
		h.log.Error("failed to send error response", "error", replyErr)
	}
}

func unmarshalParams(req *jsonrpc2.Request, v interface{}) error {
	if req.Params == nil {
		return errors.New("params required")
	}
	return json.Unmarshal(*req.Params, v)
}

// webSocketStream adapts coder/websocket to jsonrpc2.ObjectStream.
type webSocketStream struct {
	conn *websocket.Conn
	mu   sync.Mutex // protects writes
}

func newWebSocketStream(conn *websocket.Conn) *webSocketStream {
	return &webSocketStream{conn: conn}
}

func (s *webSocketStream) ReadObject(v interface{}) error {
	_, data, err := s.conn.Read(context.Background())
	if err != nil {
		// Treat normal close frames as EOF so jsonrpc2 shuts down gracefully
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			return io.EOF
		}
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *webSocketStream) WriteObject(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Write(ctx, websocket.MessageText, data)
}

func (s *webSocketStream) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "")
}

// Ensure webSocketStream implements ObjectStream
var _ jsonrpc2.ObjectStream = (*webSocketStream)(nil)
