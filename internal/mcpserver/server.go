// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes read-only dealership inventory tools for LLM integration
// via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/asapfoodtrailer/dealerd/internal/store"
)

// Server wraps the MCP server with dealership tools.
type Server struct {
	mcp   *server.MCPServer
	store store.Store
}

// New creates a new MCP server with all inventory tools registered.
func New(st store.Store) *Server {
	s := &Server{store: st}

	s.mcp = server.NewMCPServer(
		"Dealerd",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_inventory",
		mcp.WithDescription("Search the vehicle inventory. All filters are optional; "+
			"omitted filters match everything."),
		mcp.WithString("category", mcp.Description("truck or trailer")),
		mcp.WithString("condition", mcp.Description("new or used")),
		mcp.WithString("usage", mcp.Description("sale or rent")),
		mcp.WithString("status", mcp.Description("available, rented or sold")),
		mcp.WithString("search", mcp.Description("Substring match on title or description")),
		mcp.WithString("max_price", mcp.Description("Inclusive upper price bound in dollars")),
	), s.searchInventory)

	s.mcp.AddTool(mcp.NewTool("get_vehicle",
		mcp.WithDescription("Read one vehicle listing by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Vehicle id")),
	), s.getVehicle)

	s.mcp.AddTool(mcp.NewTool("fleet_stats",
		mcp.WithDescription("Fleet counters: total vehicles and counts per status."),
	), s.fleetStats)

	s.mcp.AddTool(mcp.NewTool("most_viewed",
		mcp.WithDescription("The most viewed listings, highest view count first."),
		mcp.WithString("limit", mcp.Description("Maximum number of listings (default 5)")),
	), s.mostViewed)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchInventory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := &store.Filters{
		Category:  req.GetString("category", ""),
		Condition: req.GetString("condition", ""),
		Usage:     req.GetString("usage", ""),
		Status:    req.GetString("status", ""),
		Search:    req.GetString("search", ""),
	}
	if raw := req.GetString("max_price", ""); raw != "" {
		max, err := strconv.Atoi(raw)
		if err != nil {
			return mcp.NewToolResultError("max_price must be an integer"), nil
		}
		f.MaxPrice = &max
	}

	vehicles, err := s.store.ListVehicles(ctx, f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(vehicles, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getVehicle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.store.GetVehicle(ctx, id)
	if err != nil {
		return mcp.NewToolResultError("not found: " + id), nil
	}
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) fleetStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.store.FleetStats(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(stats, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) mostViewed(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := 5
	if raw := req.GetString("limit", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return mcp.NewToolResultError("limit must be a positive integer"), nil
		}
		limit = n
	}
	vehicles, err := s.store.MostViewed(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(vehicles, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
