package jsonrpc

import "encoding/json"

// Request is a JSON-RPC 2.0 request envelope
type Request struct {
	JsonRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      interface{}     `json:"id"`
}

// Response is a JSON-RPC 2.0 response envelope
type Response struct {
	JsonRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Protocol-level error codes
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Application error codes, one per registry error so clients can branch
// without parsing messages
const (
	CodeUnauthorized              = 100
	CodeProxyNotWhitelisted       = 101
	CodeProxyAlreadyRegistered    = 102
	CodeProxyNotRegistered        = 103
	CodeTooManyProxiesForSymbol   = 104
	CodeTooManyWhitelistedProxies = 105
	CodeSymbolNotRegistered       = 106
	CodeMappingNotFound           = 107
	CodeInvalidPriorityBatch      = 108
	CodePriceNotAvailable         = 109
	CodeNotInitialized            = 110
	CodeAlreadyInitialized        = 111
)
