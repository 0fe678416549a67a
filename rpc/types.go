// Package rpc defines JSON-RPC 2.0 wire format types for WebSocket communication.
// These types represent the params and result structures for all RPC methods.
package rpc

import (
	"github.com/datakeeper/scanrelay/channel"
	"github.com/datakeeper/scanrelay/watch"
)

// Application error codes. Method-not-found (-32601) doubles as the
// "not implemented" signal for unknown channel methods.
const (
	CodeValidation int64 = -32001
	CodeDispatch   int64 = -32002
)

// Client → Server

type AuthParams struct {
	Token string `json:"token"`
}

type AuthResult struct {
	Version  string   `json:"version"`
	Channels []string `json:"channels"`
}

// ScanFileParams are the arguments of database_export_channel.scanFile.
type ScanFileParams struct {
	Path *string `json:"path"`
}

// ErrorData is attached to validation and dispatch errors.
type ErrorData struct {
	Kind channel.ErrorKind `json:"kind"`
}

// Scan event feed

type ScanSubscribeResult struct {
	ID string `json:"id"`
}

type ScanUnsubscribeParams struct {
	ID string `json:"id"`
}

// Server → Client

type ScanDispatchedParams = watch.ScanDispatchedParams
