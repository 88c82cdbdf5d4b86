package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"moodboard/internal/composer"
	"moodboard/internal/domain"
	"moodboard/internal/nodeops"
)

func (s *Server) registerNodeTools() {
	// ── add_decor_item ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_decor_item",
		mcp.WithDescription("Place a catalog product on the current page. Position is auto-calculated if not provided."),
		mcp.WithString("productId", mcp.Description("Product ID from import_catalog"), mcp.Required()),
		mcp.WithString("name", mcp.Description("Product name, only needed for products that were not imported")),
		mcp.WithString("imageUrl", mcp.Description("Product image URL, only for products that were not imported")),
		mcp.WithNumber("x", mcp.Description("X position (optional, auto-layout if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional, auto-layout if omitted)")),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleAddDecorItem)

	// ── add_text ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_text",
		mcp.WithDescription("Add a text box to the current page"),
		mcp.WithString("content", mcp.Description("Text"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("X position (optional, auto-layout if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional, auto-layout if omitted)")),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleAddText)

	// ── list_nodes ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_nodes",
		mcp.WithDescription("List the nodes of a page bottom to top, hidden ones included"),
		mcp.WithNumber("page", mcp.Description("Page index (optional, defaults to the current page)")),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleListNodes)

	// ── update_node ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_node",
		mcp.WithDescription(`Patch a node. patch is JSON such as {"x":10,"opacity":0.5,"text":{"content":"Hi","fontSize":32}} or {"decor":{"displayMode":"clean"}}`),
		mcp.WithString("nodeId", mcp.Description("Node ID"), mcp.Required()),
		mcp.WithString("patch", mcp.Description("JSON node patch"), mcp.Required()),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleUpdateNode)

	// ── move_node ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_node",
		mcp.WithDescription("Move a node to a new position"),
		mcp.WithString("nodeId", mcp.Description("Node ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New X position"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("New Y position"), mcp.Required()),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleMoveNode)

	// ── resize_node ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resize_node",
		mcp.WithDescription("Resize a node (minimum 20x20)"),
		mcp.WithString("nodeId", mcp.Description("Node ID"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("New width"), mcp.Required()),
		mcp.WithNumber("height", mcp.Description("New height"), mcp.Required()),
		mcp.WithNumber("rotation", mcp.Description("Rotation in degrees (optional)")),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleResizeNode)

	// ── remove_nodes ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("remove_nodes",
		mcp.WithDescription("Remove nodes. Undoable with undo."),
		mcp.WithString("nodeIds", mcp.Description("Comma-separated node IDs"), mcp.Required()),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleRemoveNodes)

	// ── duplicate_nodes ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("duplicate_nodes",
		mcp.WithDescription("Duplicate nodes with a small offset; the copies become the selection"),
		mcp.WithString("nodeIds", mcp.Description("Comma-separated node IDs"), mcp.Required()),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleDuplicateNodes)

	// ── reorder_node ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("reorder_node",
		mcp.WithDescription("Change a node's stacking order within its page"),
		mcp.WithString("nodeId", mcp.Description("Node ID"), mcp.Required()),
		mcp.WithString("direction",
			mcp.Description("front, back, forward or backward"),
			mcp.Enum("front", "back", "forward", "backward"),
			mcp.Required(),
		),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleReorderNode)

	// ── toggle_node ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("toggle_node",
		mcp.WithDescription("Toggle a node's lock or visibility flag"),
		mcp.WithString("nodeId", mcp.Description("Node ID"), mcp.Required()),
		mcp.WithString("flag", mcp.Description("lock or visibility"), mcp.Enum("lock", "visibility"), mcp.Required()),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleToggleNode)

	// ── select_nodes ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_nodes",
		mcp.WithDescription("Replace the selection. Pass all=true to select every node on the current page, or no ids to clear it."),
		mcp.WithString("nodeIds", mcp.Description("Comma-separated node IDs")),
		mcp.WithBoolean("all", mcp.Description("Select the whole current page")),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleSelectNodes)
}

// position returns the x/y arguments when both are present.
func position(req mcp.CallToolRequest) *composer.Point {
	args := req.GetArguments()
	_, hasX := args["x"]
	_, hasY := args["y"]
	if !hasX || !hasY {
		return nil
	}
	return &composer.Point{X: req.GetFloat("x", 0), Y: req.GetFloat("y", 0)}
}

func (s *Server) handleAddDecorItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := s.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}
	productID := req.GetString("productId", "")
	if productID == "" {
		return nil, fmt.Errorf("productId is required")
	}

	item, err := s.catalogItems([]string{productID})
	if err != nil {
		name := req.GetString("name", "")
		if name == "" {
			return nil, err
		}
		adhoc := domain.CatalogItem{ProductID: productID, Name: name, ImageURL: req.GetString("imageUrl", ""), Quantity: 1}
		if err := adhoc.Validate(); err != nil {
			return nil, err
		}
		item = []domain.CatalogItem{adhoc}
	}

	id := store.AddDecorItem(item[0], position(req))
	n, _ := store.Node(id)
	return jsonResult(summarizeNode(n))
}

func (s *Server) handleAddText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := s.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}
	id := store.AddText(req.GetString("content", ""), position(req))
	n, _ := store.Node(id)
	return jsonResult(summarizeNode(n))
}

func (s *Server) handleListNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := s.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}
	page := req.GetInt("page", store.CurrentPage())
	if page < 0 || page >= store.TotalPages() {
		return nil, fmt.Errorf("page %d out of range (0-%d)", page, store.TotalPages()-1)
	}
	return jsonResult(summarizeNodes(nodeops.SortByZIndex(store.NodesForPage(page))))
}

// nodeChange runs op against one node and reports a missing node as an
// error so the agent can correct itself.
func (s *Server) nodeChange(ctx context.Context, req mcp.CallToolRequest, op func(*composer.Store, string) bool) (*mcp.CallToolResult, error) {
	store, err := s.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}
	id := req.GetString("nodeId", "")
	if _, ok := store.Node(id); !ok {
		return nil, fmt.Errorf("node %q not found", id)
	}
	op(store, id)
	n, _ := store.Node(id)
	return jsonResult(summarizeNode(n))
}

func (s *Server) handleUpdateNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var patch nodeops.NodePatch
	if err := parseJSON(req.GetString("patch", ""), &patch); err != nil {
		return nil, fmt.Errorf("invalid patch: %w", err)
	}
	if patch.IsEmpty() {
		return nil, fmt.Errorf("patch changes nothing")
	}
	return s.nodeChange(ctx, req, func(st *composer.Store, id string) bool {
		return st.UpdateNodeWithHistory(id, patch, "update node")
	})
}

func (s *Server) handleMoveNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	patch := nodeops.Move(req.GetFloat("x", 0), req.GetFloat("y", 0))
	return s.nodeChange(ctx, req, func(st *composer.Store, id string) bool {
		return st.UpdateNodeWithHistory(id, patch, "move node")
	})
}

func (s *Server) handleResizeNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, h := req.GetFloat("width", 0), req.GetFloat("height", 0)
	patch := nodeops.NodePatch{Width: &w, Height: &h}
	if _, ok := req.GetArguments()["rotation"]; ok {
		r := req.GetFloat("rotation", 0)
		patch.Rotation = &r
	}
	return s.nodeChange(ctx, req, func(st *composer.Store, id string) bool {
		return st.UpdateNodeWithHistory(id, patch, "resize node")
	})
}

func (s *Server) handleRemoveNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := s.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}
	ids := splitIDs(req.GetString("nodeIds", ""))
	if len(ids) == 0 {
		return nil, fmt.Errorf("nodeIds is required")
	}
	if !store.RemoveNodes(ids) {
		return textResult("No matching nodes"), nil
	}
	return textResult(fmt.Sprintf("Removed %d node(s)", len(ids))), nil
}

func (s *Server) handleDuplicateNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := s.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}
	ids := splitIDs(req.GetString("nodeIds", ""))
	if len(ids) == 0 {
		return nil, fmt.Errorf("nodeIds is required")
	}
	store.SelectMany(ids)
	return jsonResult(map[string]any{"created": store.DuplicateSelected()})
}

func (s *Server) handleReorderNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var op func(*composer.Store, string) bool
	switch req.GetString("direction", "") {
	case "front":
		op = (*composer.Store).BringToFront
	case "back":
		op = (*composer.Store).SendToBack
	case "forward":
		op = (*composer.Store).BringForward
	case "backward":
		op = (*composer.Store).SendBackward
	default:
		return nil, fmt.Errorf("direction must be front, back, forward or backward")
	}
	return s.nodeChange(ctx, req, op)
}

func (s *Server) handleToggleNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch req.GetString("flag", "") {
	case "lock":
		return s.nodeChange(ctx, req, (*composer.Store).ToggleLock)
	case "visibility":
		return s.nodeChange(ctx, req, (*composer.Store).ToggleVisibility)
	default:
		return nil, fmt.Errorf("flag must be lock or visibility")
	}
}

func (s *Server) handleSelectNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := s.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}
	switch ids := splitIDs(req.GetString("nodeIds", "")); {
	case req.GetBool("all", false):
		store.SelectAll()
	case len(ids) == 0:
		store.ClearSelection()
	default:
		store.SelectMany(ids)
	}
	return jsonResult(map[string]any{"selection": store.Selection()})
}
