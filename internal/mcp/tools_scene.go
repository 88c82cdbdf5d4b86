package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"moodboard/internal/domain"
)

func (s *Server) registerSceneTools() {
	// ── list_scenes ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_scenes",
		mcp.WithDescription("List saved moodboard scenes, most recently saved first"),
	), s.handleListScenes)

	// ── create_scene ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_scene",
		mcp.WithDescription("Create and save an empty scene, then make it the active scene"),
		mcp.WithString("name", mcp.Description("Scene name"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("Page width in px (default 800)")),
		mcp.WithNumber("height", mcp.Description("Page height in px (default 600)")),
		mcp.WithNumber("totalPages", mcp.Description("Number of pages (default 1)")),
	), s.handleCreateScene)

	// ── open_scene ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("open_scene",
		mcp.WithDescription("Open a saved scene and make it active. Tools that accept sceneId default to it."),
		mcp.WithString("sceneId", mcp.Description("Scene ID"), mcp.Required()),
	), s.handleOpenScene)

	// ── scene_status ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("scene_status",
		mcp.WithDescription("Dirty/saving flags, undo availability, current page and selection of a scene"),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleSceneStatus)

	// ── save_scene ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("save_scene",
		mcp.WithDescription("Persist the scene and record a revision"),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleSaveScene)

	// ── delete_scene (destructive) ─────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_scene",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a saved scene and all of its revisions"),
		mcp.WithString("sceneId", mcp.Description("Scene ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteScene)

	// ── list_revisions ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_revisions",
		mcp.WithDescription("List saved revisions of a scene, newest first"),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleListRevisions)

	// ── restore_revision ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("restore_revision",
		mcp.WithDescription("Load a saved revision into the open scene as one undoable step"),
		mcp.WithString("revisionId", mcp.Description("Revision ID from list_revisions"), mcp.Required()),
		mcp.WithString("sceneId", mcp.Description("Scene ID (optional, defaults to active scene)")),
	), s.handleRestoreRevision)
}

func (s *Server) handleListScenes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.scenes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	return jsonResult(list)
}

func (s *Server) handleCreateScene(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	doc := domain.Document{Name: name}
	if w := req.GetFloat("width", 0); w != 0 {
		doc.Width = &w
	}
	if h := req.GetFloat("height", 0); h != 0 {
		doc.Height = &h
	}
	if p := req.GetInt("totalPages", 0); p != 0 {
		doc.TotalPages = &p
	}

	store, err := s.scenes.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create scene: %w", err)
	}
	s.setActive(store.SceneID())
	return jsonResult(store.Status())
}

func (s *Server) handleOpenScene(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("sceneId", "")
	if id == "" {
		return nil, fmt.Errorf("sceneId is required")
	}
	store, err := s.scenes.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	s.setActive(id)
	return jsonResult(store.Status())
}

func (s *Server) handleSceneStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := s.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}
	return jsonResult(store.Status())
}

func (s *Server) handleSaveScene(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := s.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}
	res, err := s.scenes.Save(ctx, store.SceneID())
	if err != nil {
		return nil, err
	}
	return jsonResult(res)
}

func (s *Server) handleDeleteScene(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("sceneId", "")
	if id == "" {
		return nil, fmt.Errorf("sceneId is required")
	}
	if err := s.scenes.Delete(ctx, id); err != nil {
		return nil, err
	}
	if s.active() == id {
		s.setActive("")
	}
	return textResult(fmt.Sprintf("Scene %s deleted", id)), nil
}

func (s *Server) handleListRevisions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := s.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}
	revs, err := s.scenes.Revisions(ctx, store.SceneID())
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	return jsonResult(revs)
}

func (s *Server) handleRestoreRevision(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	revID := req.GetString("revisionId", "")
	if revID == "" {
		return nil, fmt.Errorf("revisionId is required")
	}
	store, err := s.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}
	if _, err := s.scenes.RestoreRevision(ctx, store.SceneID(), revID); err != nil {
		return nil, err
	}
	return jsonResult(store.Status())
}
