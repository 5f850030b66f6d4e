package ipc

import (
	"encoding/json"
	"fmt"
	"time"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus        CommandType = "GET_STATUS"
	CommandSetBehindDesktop CommandType = "SET_BEHIND_DESKTOP"
	CommandRestoreWindow    CommandType = "RESTORE_WINDOW"
	CommandGetWorkerWindow  CommandType = "GET_WORKER_WINDOW"
	CommandIsValidWindow    CommandType = "IS_VALID_WINDOW"
	CommandListRelocations  CommandType = "LIST_RELOCATIONS"
	CommandRestoreAll       CommandType = "RESTORE_ALL"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	UptimeSeconds int64  `json:"uptime_seconds"`
	DaemonRunning bool   `json:"daemon_running"`
	Relocations   int    `json:"relocations"`
	Locator       string `json:"locator"`
	WorkerWindow  string `json:"worker_window,omitempty"`
}

// HandlePayload carries a window handle in its decimal string form.
type HandlePayload struct {
	Handle string `json:"handle"`
}

// ResultData is returned by SET_BEHIND_DESKTOP and RESTORE_WINDOW.
type ResultData struct {
	Success bool `json:"success"`
}

// WorkerData is returned by GET_WORKER_WINDOW.
type WorkerData struct {
	Found  bool   `json:"found"`
	Handle string `json:"handle,omitempty"`
}

// ValidData is returned by IS_VALID_WINDOW.
type ValidData struct {
	Valid bool `json:"valid"`
}

// RelocationInfo describes one relocated window.
type RelocationInfo struct {
	Handle    string    `json:"handle"`
	Parent    string    `json:"parent"`
	Container string    `json:"container"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Filled    bool      `json:"filled"`
	MovedAt   time.Time `json:"moved_at"`
}

// RelocationsData is returned by LIST_RELOCATIONS.
type RelocationsData struct {
	Relocations []RelocationInfo `json:"relocations"`
}

// RestoreAllData is returned by RESTORE_ALL.
type RestoreAllData struct {
	Restored []string          `json:"restored"`
	Failed   map[string]string `json:"failed,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
