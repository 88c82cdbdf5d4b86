package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"moodboard/internal/domain"
)

func (s *Server) registerPageTools() {
	// ── add_page ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_page",
		mcp.WithDescription("Append an empty page and make it current"),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleAddPage)

	// ── remove_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("remove_page",
		mcp.WithDescription("Remove a page and its nodes; later pages shift down. The last page cannot be removed. Undoable."),
		mcp.WithNumber("page", mcp.Description("Page index"), mcp.Required()),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleRemovePage)

	// ── set_current_page ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_current_page",
		mcp.WithDescription("Switch the current page. New nodes and templates go to the current page."),
		mcp.WithNumber("page", mcp.Description("Page index"), mcp.Required()),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleSetCurrentPage)

	// ── get_page_state ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_page_state",
		mcp.WithDescription("Render snapshot of a page: size, background and visible nodes bottom to top"),
		mcp.WithNumber("page", mcp.Description("Page index (optional, defaults to the current page)")),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleGetPageState)

	// ── arrange_page ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("arrange_page",
		mcp.WithDescription("Lay the current page's nodes out on a grid in stacking order"),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleArrangePage)

	// ── set_background ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_background",
		mcp.WithDescription("Set the scene background to a colour, a gradient or an image"),
		mcp.WithString("type", mcp.Description("color, gradient or image"), mcp.Enum("color", "gradient", "image"), mcp.Required()),
		mcp.WithString("color", mcp.Description("Hex colour for type=color, e.g. #fef3c7")),
		mcp.WithString("colors", mcp.Description("Comma-separated hex colours for type=gradient")),
		mcp.WithString("direction", mcp.Description("Gradient direction, e.g. 'to right' or 'to bottom'")),
		mcp.WithString("url", mcp.Description("Image URL for type=image")),
		mcp.WithString("fit", mcp.Description("cover, contain or stretch for type=image"), mcp.Enum("cover", "contain", "stretch")),
		mcp.WithNumber("opacity", mcp.Description("Image opacity 0-1 (default 1)")),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleSetBackground)
}

func (s *Server) handleAddPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := s.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}
	page := store.AddPage()
	return jsonResult(map[string]int{"page": page, "totalPages": store.TotalPages()})
}

func (s *Server) handleRemovePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := s.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}
	page := req.GetInt("page", -1)
	if !store.RemovePage(page) {
		return nil, fmt.Errorf("cannot remove page %d of %d", page, store.TotalPages())
	}
	return jsonResult(map[string]int{"currentPage": store.CurrentPage(), "totalPages": store.TotalPages()})
}

func (s *Server) handleSetCurrentPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := s.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}
	page := req.GetInt("page", -1)
	if !store.SetCurrentPage(page) {
		return nil, fmt.Errorf("page %d out of range (0-%d)", page, store.TotalPages()-1)
	}
	return textResult(fmt.Sprintf("Current page set to %d", page)), nil
}

func (s *Server) handleGetPageState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := s.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}
	state, ok := store.PageState(req.GetInt("page", store.CurrentPage()))
	if !ok {
		return nil, fmt.Errorf("page out of range (0-%d)", store.TotalPages()-1)
	}
	return jsonResult(state)
}

func (s *Server) handleArrangePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := s.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}
	if !store.ArrangePage() {
		return textResult("Nothing to arrange"), nil
	}
	return jsonResult(summarizeNodes(store.SortedNodes()))
}

func (s *Server) handleSetBackground(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := s.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}

	var bg domain.Background
	switch req.GetString("type", "") {
	case "color":
		c := strings.TrimSpace(req.GetString("color", ""))
		if c == "" {
			return nil, fmt.Errorf("color is required for type=color")
		}
		bg = domain.ColorBackground(c)
	case "gradient":
		colors := splitIDs(req.GetString("colors", ""))
		if len(colors) < 2 {
			return nil, fmt.Errorf("a gradient needs at least two colors")
		}
		bg = domain.GradientBackground(colors, req.GetString("direction", "to bottom"))
	case "image":
		url := req.GetString("url", "")
		if url == "" {
			return nil, fmt.Errorf("url is required for type=image")
		}
		fit := domain.ImageFit(req.GetString("fit", string(domain.ImageFitCover)))
		bg = domain.ImageBackground(url, fit, req.GetFloat("opacity", 1))
	default:
		return nil, fmt.Errorf("type must be color, gradient or image")
	}

	store.SetBackground(bg)
	return jsonResult(store.Background())
}
