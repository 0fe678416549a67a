package ws

import (
	"context"

	"github.com/datakeeper/scanrelay/rpc"
	"github.com/sourcegraph/jsonrpc2"
)

func (h *rpcMethodHandler) handleScanSubscribe(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if h.events == nil {
		h.replyError(ctx, conn, req, jsonrpc2.CodeMethodNotFound, "scan events are disabled", nil)
		return
	}

	id := h.events.Subscribe(h.state.getNotifier())
	h.state.trackSubscription(id, h.events)
	h.log.Debug("subscribed", "watcher", "scan", "watchId", id)

	if err := conn.Reply(ctx, req.ID, rpc.ScanSubscribeResult{ID: id}); err != nil {
		h.log.Error("failed to send scan subscribe response", "error", err)
	}
}

func (h *rpcMethodHandler) handleScanUnsubscribe(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	var params rpc.ScanUnsubscribeParams
	if err := unmarshalParams(req, &params); err != nil {
		h.replyError(ctx, conn, req, jsonrpc2.CodeInvalidParams, "invalid params", nil)
		return
	}
	if params.ID == "" {
		h.replyError(ctx, conn, req, jsonrpc2.CodeInvalidParams, "id is required", nil)
		return
	}

	// Only subscriptions owned by this connection may be removed.
	if h.state.untrackSubscription(params.ID) {
		h.events.Unsubscribe(params.ID)
		h.log.Debug("unsubscribed", "watcher", "scan", "watchId", params.ID)
	}

	if err := conn.Reply(ctx, req.ID, struct{}{}); err != nil {
		h.log.Error("failed to send scan unsubscribe response", "error", err)
	}
}
