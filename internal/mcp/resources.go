package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	scenesURI    = "moodboard://scenes"
	templatesURI = "moodboard://templates"
	scenePrefix  = "moodboard://scene/"
)

func (s *Server) registerResources() {
	// ── moodboard://scenes ─────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		scenesURI,
		"All Scenes",
		mcp.WithMIMEType("application/json"),
	), s.handleScenesResource)

	// ── moodboard://templates ──────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		templatesURI,
		"Layout Templates",
		mcp.WithMIMEType("application/json"),
	), s.handleTemplatesResource)

	// ── moodboard://scene/{sceneId}/page/{page} ────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"moodboard://scene/{sceneId}/page/{page}",
			"Page State",
		),
		s.handlePageResource,
	)
}

func (s *Server) handleScenesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := s.scenes.List(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(scenesURI, list)
}

func (s *Server) handleTemplatesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(templatesURI, s.templates.List())
}

func (s *Server) handlePageResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	sceneID, page, err := parsePageURI(uri)
	if err != nil {
		return nil, err
	}
	store, err := s.scenes.Open(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	state, ok := store.PageState(page)
	if !ok {
		return nil, fmt.Errorf("page %d out of range (0-%d)", page, store.TotalPages()-1)
	}
	return jsonContents(uri, state)
}

// parsePageURI splits "moodboard://scene/{id}/page/{n}".
func parsePageURI(uri string) (string, int, error) {
	rest, ok := strings.CutPrefix(uri, scenePrefix)
	if !ok {
		return "", 0, fmt.Errorf("not a scene uri: %s", uri)
	}
	id, pageStr, ok := strings.Cut(rest, "/page/")
	if !ok || id == "" {
		return "", 0, fmt.Errorf("could not extract sceneId and page from URI: %s", uri)
	}
	page, err := strconv.Atoi(pageStr)
	if err != nil {
		return "", 0, fmt.Errorf("bad page in URI %s: %w", uri, err)
	}
	return id, page, nil
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
