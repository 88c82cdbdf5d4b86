package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTemplateTools() {
	// ── list_templates ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List layout templates: built-ins plus JSON files from the templates directory"),
	), s.handleListTemplates)

	// ── apply_template ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("apply_template",
		mcp.WithDescription("Replace the current page with one decor item per template cell, filled from imported catalog products in order. Products beyond the cell count are reported as dropped."),
		mcp.WithString("templateId", mcp.Description("Template ID"), mcp.Required()),
		mcp.WithString("productIds", mcp.Description("Comma-separated product IDs (optional, defaults to every imported product)")),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleApplyTemplate)

	// ── apply_layout ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("apply_layout",
		mcp.WithDescription("Move and resize the existing nodes of the current page into a template's cells"),
		mcp.WithString("templateId", mcp.Description("Template ID"), mcp.Required()),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleApplyLayout)
}

func (s *Server) handleListTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type templateSummary struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Cells       int    `json:"cells"`
	}
	list := s.templates.List()
	out := make([]templateSummary, len(list))
	for i, t := range list {
		out[i] = templateSummary{ID: t.ID, Name: t.Name, Description: t.Description, Cells: len(t.Cells)}
	}
	return jsonResult(out)
}

func (s *Server) handleApplyTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := s.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}
	tpl, err := s.templates.Get(req.GetString("templateId", ""))
	if err != nil {
		return nil, err
	}
	items, err := s.catalogItems(splitIDs(req.GetString("productIds", "")))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no catalog products to place (use import_catalog first)")
	}
	return jsonResult(store.ApplyTemplate(tpl, items))
}

func (s *Server) handleApplyLayout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := s.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}
	tpl, err := s.templates.Get(req.GetString("templateId", ""))
	if err != nil {
		return nil, err
	}
	moved := store.ApplyLayoutTemplate(tpl)
	return textResult(fmt.Sprintf("Laid out %d node(s) with %s", moved, tpl.Name)), nil
}
