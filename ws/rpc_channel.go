package ws

import (
	"context"
	"encoding/json"

	"github.com/datakeeper/scanrelay/channel"
	"github.com/datakeeper/scanrelay/rpc"
	"github.com/sourcegraph/jsonrpc2"
)

// handleChannelCall routes "<channel>.<method>" requests to the channel's
// listener and maps its Result onto a JSON-RPC reply.
func (h *rpcMethodHandler) handleChannelCall(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	target, method, ok := h.channels.Resolve(req.Method)
	if !ok {
		h.replyError(ctx, conn, req, jsonrpc2.CodeMethodNotFound, "method not found: "+req.Method, nil)
		return
	}

	var args map[string]any
	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &args); err != nil {
			h.replyError(ctx, conn, req, jsonrpc2.CodeInvalidParams, "params must be an object", nil)
			return
		}
	}

	res := target.Handle(ctx, method, args)

	switch res.Status {
	case channel.StatusSuccess:
		if req.Notif {
			return
		}
		if err := conn.Reply(ctx, req.ID, nil); err != nil {
			h.log.Error("failed to send channel response", "method", req.Method, "error", err)
		}
	case channel.StatusNotImplemented:
		h.replyError(ctx, conn, req, jsonrpc2.CodeMethodNotFound, "not implemented", nil)
	default:
		h.replyError(ctx, conn, req, errorCode(res.Kind), res.Message, rpc.ErrorData{Kind: res.Kind})
	}
}

func errorCode(kind channel.ErrorKind) int64 {
	if kind == channel.ErrorSubmissionFailed {
		return rpc.CodeDispatch
	}
	return rpc.CodeValidation
}
