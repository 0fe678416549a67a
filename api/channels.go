// Package api exposes channel invocations over plain HTTP for callers
// that cannot hold a WebSocket open.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/datakeeper/scanrelay/channel"
)

const maxBodyBytes = 64 << 10

type ChannelHandler struct {
	channels channel.Registry
}

func NewChannelHandler(channels channel.Registry) *ChannelHandler {
	return &ChannelHandler{channels: channels}
}

// Register mounts POST /api/channels/{channel}/{method} on mux.
func (h *ChannelHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/channels/{channel}/{method}", h.invoke)
}

func (h *ChannelHandler) invoke(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("channel")
	method := r.PathValue("method")

	target, ok := h.channels[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, channel.Failure("", "channel not found: "+name))
		return
	}

	args, err := decodeArgs(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, channel.Failure("", err.Error()))
		return
	}

	res := target.Handle(r.Context(), method, args)
	writeJSON(w, statusFor(res), res)
}

// decodeArgs accepts an empty body as "no arguments".
func decodeArgs(r *http.Request) (map[string]any, error) {
	var args map[string]any
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&args); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errors.New("body must be a JSON object")
	}
	return args, nil
}

func statusFor(res channel.Result) int {
	switch res.Status {
	case channel.StatusSuccess:
		return http.StatusOK
	case channel.StatusNotImplemented:
		return http.StatusNotImplemented
	}
	if res.Kind == channel.ErrorSubmissionFailed {
		return http.StatusBadGateway
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}
