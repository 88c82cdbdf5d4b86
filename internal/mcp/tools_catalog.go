package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"moodboard/internal/catalog"
	"moodboard/internal/export"
)

func (s *Server) registerCatalogTools() {
	// ── list_catalog_sources ───────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_catalog_sources",
		mcp.WithDescription("List catalog source types and their config fields"),
	), s.handleListCatalogSources)

	// ── import_catalog ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("import_catalog",
		mcp.WithDescription(`Import rentable products from a source. config is JSON, e.g. {"filePath":"/data/items.csv"} for csv_file or {"url":"https://...","dataPath":"items"} for http. Invalid rows are reported.`),
		mcp.WithString("type", mcp.Description("Source type from list_catalog_sources"), mcp.Required()),
		mcp.WithString("config", mcp.Description("JSON source config"), mcp.Required()),
	), s.handleImportCatalog)

	// ── list_catalog ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_catalog",
		mcp.WithDescription("List the products imported so far"),
	), s.handleListCatalog)
}

func (s *Server) registerExportTools() {
	// ── export_png ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("export_png",
		mcp.WithDescription("Render a page as a PNG wireframe file"),
		mcp.WithString("path", mcp.Description("Output file path"), mcp.Required()),
		mcp.WithNumber("page", mcp.Description("Page index (optional, defaults to the current page)")),
		mcp.WithNumber("scale", mcp.Description("Pixel scale (default 1)")),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleExportPNG)
}

func (s *Server) handleListCatalogSources(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(catalog.List())
}

func (s *Server) handleImportCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ := req.GetString("type", "")
	if typ == "" {
		return nil, fmt.Errorf("type is required")
	}
	var cfg catalog.Config
	if err := parseJSON(req.GetString("config", "{}"), &cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	res, err := catalog.Import(ctx, typ, cfg)
	if err != nil {
		return nil, err
	}
	s.rememberItems(res.Items)
	s.log.Info("catalog imported",
		zap.String("source", typ),
		zap.Int("items", len(res.Items)),
		zap.Int("rejected", len(res.Rejected)),
	)
	return jsonResult(res)
}

func (s *Server) handleListCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, _ := s.catalogItems(nil)
	return jsonResult(items)
}

func (s *Server) handleExportPNG(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := s.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}
	path := req.GetString("path", "")
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	page := req.GetInt("page", store.CurrentPage())
	state, ok := store.PageState(page)
	if !ok {
		return nil, fmt.Errorf("page %d out of range (0-%d)", page, store.TotalPages()-1)
	}
	if err := export.WritePNG(path, state, req.GetFloat("scale", 1)); err != nil {
		return nil, fmt.Errorf("export png: %w", err)
	}
	return textResult(fmt.Sprintf("Page %d written to %s", page, path)), nil
}
