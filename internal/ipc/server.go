package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/underlay/internal/runtimepath"
	"github.com/1broseidon/underlay/internal/wallpaper"
)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	api          *wallpaper.API
	locatorName  string
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on the default socket path.
func NewServer(api *wallpaper.API, locatorName string) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, api, locatorName), nil
}

// NewServerAt creates a new IPC server listening on socketPath.
func NewServerAt(socketPath string, api *wallpaper.API, locatorName string) *Server {
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath:  socketPath,
		api:         api,
		locatorName: locatorName,
		startTime:   time.Now(),
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandSetBehindDesktop:
		return s.handleSetBehindDesktop(req.Payload)
	case CommandRestoreWindow:
		return s.handleRestoreWindow(req.Payload)
	case CommandGetWorkerWindow:
		return s.handleGetWorkerWindow()
	case CommandIsValidWindow:
		return s.handleIsValidWindow(req.Payload)
	case CommandListRelocations:
		return s.handleListRelocations()
	case CommandRestoreAll:
		return s.handleRestoreAll()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	worker, _ := s.api.GetWorkerWindow()
	status := StatusData{
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
		Relocations:   len(s.api.Manager().Records()),
		Locator:       s.locatorName,
		WorkerWindow:  worker,
	}

	resp, _ := NewOKResponse(status)
	return resp
}

func decodeHandle(payload json.RawMessage) (string, error) {
	var req HandlePayload
	if len(payload) == 0 {
		return "", fmt.Errorf("handle is required")
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return "", fmt.Errorf("invalid handle payload: %v", err)
	}
	return req.Handle, nil
}

func (s *Server) handleSetBehindDesktop(payload json.RawMessage) *Response {
	handle, err := decodeHandle(payload)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	ok, err := s.api.SetWindowBehindDesktop(handle)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	log.Printf("IPC: set %s behind desktop: %t", handle, ok)

	resp, _ := NewOKResponse(ResultData{Success: ok})
	return resp
}

func (s *Server) handleRestoreWindow(payload json.RawMessage) *Response {
	handle, err := decodeHandle(payload)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	ok, err := s.api.RestoreWindow(handle)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	log.Printf("IPC: restore %s: %t", handle, ok)

	resp, _ := NewOKResponse(ResultData{Success: ok})
	return resp
}

func (s *Server) handleGetWorkerWindow() *Response {
	handle, ok := s.api.GetWorkerWindow()
	resp, _ := NewOKResponse(WorkerData{Found: ok, Handle: handle})
	return resp
}

// handleIsValidWindow never fails; a handle it cannot use is not valid.
func (s *Server) handleIsValidWindow(payload json.RawMessage) *Response {
	var req struct {
		Handle any `json:"handle"`
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			req.Handle = nil
		}
	}
	resp, _ := NewOKResponse(ValidData{Valid: s.api.IsValidWindow(req.Handle)})
	return resp
}

func (s *Server) handleListRelocations() *Response {
	records := s.api.Manager().Records()
	infos := make([]RelocationInfo, 0, len(records))
	for _, rec := range records {
		infos = append(infos, RelocationInfo{
			Handle:    wallpaper.FormatHandle(rec.Window),
			Parent:    wallpaper.FormatHandle(rec.Parent),
			Container: wallpaper.FormatHandle(rec.Container),
			X:         rec.Bounds.X,
			Y:         rec.Bounds.Y,
			Width:     rec.Bounds.Width,
			Height:    rec.Bounds.Height,
			Filled:    rec.Filled,
			MovedAt:   rec.MovedAt,
		})
	}

	resp, _ := NewOKResponse(RelocationsData{Relocations: infos})
	return resp
}

func (s *Server) handleRestoreAll() *Response {
	records := s.api.Manager().Records()
	failed := s.api.Manager().RestoreAll()

	data := RestoreAllData{Restored: []string{}}
	for _, rec := range records {
		handle := wallpaper.FormatHandle(rec.Window)
		if err, ok := failed[rec.Window]; ok {
			if data.Failed == nil {
				data.Failed = make(map[string]string)
			}
			data.Failed[handle] = err.Error()
			continue
		}
		data.Restored = append(data.Restored, handle)
	}
	log.Printf("IPC: restored %d windows, %d failed", len(data.Restored), len(data.Failed))

	resp, _ := NewOKResponse(data)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
