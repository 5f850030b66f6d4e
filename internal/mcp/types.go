package mcp

import "time"

// WindowInput is the input for tools that act on one window.
type WindowInput struct {
	Handle string `json:"handle" jsonschema:"required,Native window handle as a decimal string (e.g. 2230926)"`
}

// ResultOutput is the output for set_window_behind_desktop and restore_window.
type ResultOutput struct {
	Handle  string `json:"handle"`
	Success bool   `json:"success"`
}

// GetWorkerWindowInput is the (empty) input for get_worker_window.
type GetWorkerWindowInput struct{}

// GetWorkerWindowOutput is the output for get_worker_window.
type GetWorkerWindowOutput struct {
	Found  bool   `json:"found"`
	Handle string `json:"handle,omitempty"`
}

// IsValidWindowOutput is the output for is_valid_window.
type IsValidWindowOutput struct {
	Handle string `json:"handle"`
	Valid  bool   `json:"valid"`
}

// ListRelocationsInput is the (empty) input for list_relocations.
type ListRelocationsInput struct{}

// RelocationInfo describes a single relocated window.
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

// ListRelocationsOutput is the output for list_relocations.
type ListRelocationsOutput struct {
	Relocations []RelocationInfo `json:"relocations"`
}
