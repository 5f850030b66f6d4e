package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/underlay/internal/wallpaper"
)

func (s *Server) handleSetWindowBehindDesktop(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, ResultOutput, error) {
	ok, err := s.api.SetWindowBehindDesktop(args.Handle)
	if err != nil {
		return nil, ResultOutput{}, err
	}
	return nil, ResultOutput{Handle: args.Handle, Success: ok}, nil
}

func (s *Server) handleRestoreWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, ResultOutput, error) {
	ok, err := s.api.RestoreWindow(args.Handle)
	if err != nil {
		return nil, ResultOutput{}, err
	}
	return nil, ResultOutput{Handle: args.Handle, Success: ok}, nil
}

func (s *Server) handleGetWorkerWindow(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetWorkerWindowInput) (*mcpsdk.CallToolResult, GetWorkerWindowOutput, error) {
	handle, ok := s.api.GetWorkerWindow()
	return nil, GetWorkerWindowOutput{Found: ok, Handle: handle}, nil
}

func (s *Server) handleIsValidWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, IsValidWindowOutput, error) {
	return nil, IsValidWindowOutput{Handle: args.Handle, Valid: s.api.IsValidWindow(args.Handle)}, nil
}

func (s *Server) handleListRelocations(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListRelocationsInput) (*mcpsdk.CallToolResult, ListRelocationsOutput, error) {
	records := s.api.Manager().Records()
	out := ListRelocationsOutput{Relocations: make([]RelocationInfo, 0, len(records))}
	for _, rec := range records {
		out.Relocations = append(out.Relocations, RelocationInfo{
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
	return nil, out, nil
}
