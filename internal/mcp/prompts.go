package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("compose_moodboard",
		mcp.WithPromptDescription("Guide through composing a moodboard for an event from a product catalog"),
		mcp.WithArgument("theme",
			mcp.ArgumentDescription("Event theme, e.g. 'rustic spring wedding'"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("catalogPath",
			mcp.ArgumentDescription("CSV or JSON file with the rentable products"),
			mcp.RequiredArgument(),
		),
	), s.handleComposePrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("restyle_page",
		mcp.WithPromptDescription("Rework the layout and background of the current page without changing its products"),
		mcp.WithArgument("style",
			mcp.ArgumentDescription("Target look, e.g. 'airy and minimal'"),
			mcp.RequiredArgument(),
		),
	), s.handleRestylePrompt)
}

func (s *Server) handleComposePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	theme := req.Params.Arguments["theme"]
	path := req.Params.Arguments["catalogPath"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Compose a moodboard for: %s", theme),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Compose a moodboard for a "%s" event. Follow these steps:

1. Use create_scene to start a scene named after the theme
2. Import the products with import_catalog (type csv_file or json_file, config {"filePath":"%s"})
3. Pick the products that fit the theme and call apply_template with a template from list_templates
4. Add a title with add_text and style it with update_node
5. Choose a background that matches the palette with set_background
6. Check the result with get_page_state, adjust with move_node / resize_node / reorder_node
7. Save with save_scene and render a preview with export_png

Use undo if a step makes the page worse.`, theme, path),
				},
			},
		},
	}, nil
}

func (s *Server) handleRestylePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	style := req.Params.Arguments["style"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Restyle the current page: %s", style),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Restyle the current page of the active scene to look "%s". Do not add or remove products.

1. Read the page with get_page_state
2. Try apply_layout with templates from list_templates, or arrange_page for a plain grid
3. Adjust text nodes (font size, colour, alignment) with update_node
4. Set a fitting background with set_background
5. Compare with history and undo anything that does not work`, style),
				},
			},
		},
	}, nil
}
