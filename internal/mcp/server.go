package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"moodboard/internal/composer"
	"moodboard/internal/domain"
	"moodboard/internal/service"
	"moodboard/internal/templates"
)

// Server exposes the composer to AI agents over MCP: tools for every
// editing action, resources for scenes and page state, and prompts.
type Server struct {
	mcp       *server.MCPServer
	scenes    *service.SceneService
	templates *templates.Registry
	log       *zap.Logger

	mu          sync.Mutex
	activeScene string
	// catalog holds the items of the last import, by product id
	catalog map[string]domain.CatalogItem
}

type Deps struct {
	Scenes    *service.SceneService
	Templates *templates.Registry
	Logger    *zap.Logger
	Version   string
}

// New creates and configures the MCP server with all tools, resources
// and prompts.
func New(deps Deps) *Server {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s := &Server{
		scenes:    deps.Scenes,
		templates: deps.Templates,
		log:       log.Named("mcp"),
		catalog:   make(map[string]domain.CatalogItem),
	}

	s.mcp = server.NewMCPServer(
		"moodboard-mcp",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerSceneTools()
	s.registerNodeTools()
	s.registerPageTools()
	s.registerTemplateTools()
	s.registerHistoryTools()
	s.registerCatalogTools()
	s.registerExportTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio serves MCP on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.log.Info("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// MCP returns the underlying server, for in-process clients.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func (s *Server) setActive(id string) {
	s.mu.Lock()
	s.activeScene = id
	s.mu.Unlock()
}

func (s *Server) active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeScene
}

// resolveScene returns the store for the sceneId argument, falling back
// to the active scene.
func (s *Server) resolveScene(ctx context.Context, req mcp.CallToolRequest) (*composer.Store, error) {
	id := req.GetString("sceneId", "")
	if id == "" {
		id = s.active()
	}
	if id == "" {
		return nil, fmt.Errorf("no sceneId provided and no active scene (use open_scene first)")
	}
	return s.scenes.Open(ctx, id)
}

func (s *Server) rememberItems(items []domain.CatalogItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		s.catalog[it.ProductID] = it
	}
}

// catalogItems returns the imported items named in ids, in that order.
// An empty ids returns every imported item sorted by product id.
func (s *Server) catalogItems(ids []string) ([]domain.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ids) == 0 {
		return sortedItems(s.catalog), nil
	}
	out := make([]domain.CatalogItem, 0, len(ids))
	for _, id := range ids {
		it, ok := s.catalog[id]
		if !ok {
			return nil, fmt.Errorf("product %s not imported (use import_catalog first)", id)
		}
		out = append(out, it)
	}
	return out, nil
}
