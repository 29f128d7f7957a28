package mcpserver

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/asapfoodtrailer/dealerd/internal/models"
	"github.com/asapfoodtrailer/dealerd/internal/store"
)

func testServer(t *testing.T) (*Server, store.Store) {
	t.Helper()

	fs := store.NewFile(filepath.Join(t.TempDir(), "seed.json"))
	t.Cleanup(func() { fs.Close(context.Background()) })

	srv := New(fs)
	return srv, fs
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so we invoke the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_inventory":
		result, err = srv.searchInventory(ctx, req)
	case "get_vehicle":
		result, err = srv.getVehicle(ctx, req)
	case "fleet_stats":
		result, err = srv.fleetStats(ctx, req)
	case "most_viewed":
		result, err = srv.mostViewed(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func seedVehicle(t *testing.T, st store.Store, v models.Vehicle) *models.Vehicle {
	t.Helper()
	created, err := st.CreateVehicle(context.Background(), v)
	if err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	return created
}

func TestSearchInventoryFilters(t *testing.T) {
	srv, st := testServer(t)
	seedVehicle(t, st, models.Vehicle{Title: "Cheap Trailer", Category: models.CategoryTrailer, Price: 10000})
	seedVehicle(t, st, models.Vehicle{Title: "Fancy Trailer", Category: models.CategoryTrailer, Price: 50000})
	seedVehicle(t, st, models.Vehicle{Title: "Box Truck", Category: models.CategoryTruck, Price: 30000})

	r := callTool(t, srv, "search_inventory", map[string]interface{}{
		"category":  "trailer",
		"max_price": "20000",
	})
	text := resultText(r)
	if !strings.Contains(text, "Cheap Trailer") {
		t.Errorf("missing match in %q", text)
	}
	if strings.Contains(text, "Fancy Trailer") || strings.Contains(text, "Box Truck") {
		t.Errorf("unexpected matches in %q", text)
	}
}

func TestSearchInventoryBadPrice(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "search_inventory", map[string]interface{}{"max_price": "lots"})
	if !r.IsError {
		t.Fatal("expected error result")
	}
}

func TestGetVehicle(t *testing.T) {
	srv, st := testServer(t)
	created := seedVehicle(t, st, models.Vehicle{Title: "Taco Truck", Category: models.CategoryTruck})

	r := callTool(t, srv, "get_vehicle", map[string]interface{}{"id": created.ID})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "Taco Truck") {
		t.Errorf("missing vehicle in %q", resultText(r))
	}

	r = callTool(t, srv, "get_vehicle", map[string]interface{}{"id": "ghost"})
	if !r.IsError {
		t.Fatal("expected error for missing id")
	}
}

func TestFleetStats(t *testing.T) {
	srv, st := testServer(t)
	seedVehicle(t, st, models.Vehicle{Title: "A", Status: models.StatusAvailable})
	seedVehicle(t, st, models.Vehicle{Title: "B", Status: models.StatusSold})

	r := callTool(t, srv, "fleet_stats", nil)
	text := resultText(r)
	if !strings.Contains(text, `"total": 2`) {
		t.Errorf("stats = %q", text)
	}
	if !strings.Contains(text, `"sold": 1`) {
		t.Errorf("stats = %q", text)
	}
}

func TestMostViewed(t *testing.T) {
	srv, st := testServer(t)
	seedVehicle(t, st, models.Vehicle{Title: "Quiet Listing"})
	b := seedVehicle(t, st, models.Vehicle{Title: "Popular Listing"})
	for i := 0; i < 3; i++ {
		if err := st.IncrementViews(context.Background(), b.ID); err != nil {
			t.Fatalf("IncrementViews: %v", err)
		}
	}

	r := callTool(t, srv, "most_viewed", map[string]interface{}{"limit": "1"})
	text := resultText(r)
	if !strings.Contains(text, "Popular Listing") {
		t.Errorf("missing top listing in %q", text)
	}
	if strings.Contains(text, "Quiet Listing") {
		t.Errorf("limit not applied in %q", text)
	}
}
