package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/underlay/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for the socket at socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends command with an optional payload and decodes the data into out.
func (c *Client) call(command CommandType, payload interface{}, out interface{}) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SetWindowBehindDesktop asks the daemon to relocate handle.
func (c *Client) SetWindowBehindDesktop(handle string) (bool, error) {
	var data ResultData
	if err := c.call(CommandSetBehindDesktop, HandlePayload{Handle: handle}, &data); err != nil {
		return false, err
	}
	return data.Success, nil
}

// RestoreWindow asks the daemon to restore handle.
func (c *Client) RestoreWindow(handle string) (bool, error) {
	var data ResultData
	if err := c.call(CommandRestoreWindow, HandlePayload{Handle: handle}, &data); err != nil {
		return false, err
	}
	return data.Success, nil
}

// GetWorkerWindow asks the daemon for the background container handle.
func (c *Client) GetWorkerWindow() (*WorkerData, error) {
	var data WorkerData
	if err := c.call(CommandGetWorkerWindow, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// IsValidWindow asks the daemon whether handle is a live window.
func (c *Client) IsValidWindow(handle string) (bool, error) {
	var data ValidData
	if err := c.call(CommandIsValidWindow, HandlePayload{Handle: handle}, &data); err != nil {
		return false, err
	}
	return data.Valid, nil
}

// ListRelocations retrieves the windows the daemon has relocated.
func (c *Client) ListRelocations() ([]RelocationInfo, error) {
	var data RelocationsData
	if err := c.call(CommandListRelocations, nil, &data); err != nil {
		return nil, err
	}
	return data.Relocations, nil
}

// RestoreAll asks the daemon to restore every relocated window.
func (c *Client) RestoreAll() (*RestoreAllData, error) {
	var data RestoreAllData
	if err := c.call(CommandRestoreAll, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
