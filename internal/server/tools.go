package server

import (
	"fmt"
	"strings"

	"github.com/ironsheep/artcreator/internal/template"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func materialNames() []string {
	var names []string
	for _, m := range template.Materials() {
		names = append(names, string(m))
	}
	return names
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	limits := make([]string, 0, len(template.Materials()))
	for _, m := range template.Materials() {
		limits = append(limits, fmt.Sprintf("%s %d", m, m.MaxColors()))
	}

	return []Tool{
		// Editing
		{
			Name:        "workflow_import",
			Description: "Load an image file and make it the current image. Discards any generated template; the undo history is kept. Not allowed while a template is being generated.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the image file (PNG, JPEG, GIF, BMP, TIFF or WebP)",
				},
			}, "path"),
		},
		{
			Name:        "workflow_transform",
			Description: "Apply a geometric operation to the current image. The previous image is kept for undo (up to 3 steps).",
			InputSchema: objectSchema(map[string]interface{}{
				"operation": map[string]interface{}{
					"type":        "string",
					"description": "One of rotate_left, rotate_right, mirror, mirror_horizontal, mirror_vertical, crop_center, or crop:x,y,w,h. Crop values are clamped to the image.",
				},
			}, "operation"),
		},
		{
			Name:        "workflow_undo",
			Description: "Restore the image as it was before the most recent transformation.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},

		// Template
		{
			Name:        "workflow_generate_template",
			Description: "Generate a craft template from the current image: a grid of cells, each assigned a palette color. Only allowed right after importing or editing.",
			InputSchema: objectSchema(map[string]interface{}{
				"material": map[string]interface{}{
					"type":        "string",
					"enum":        materialNames(),
					"description": "Craft material. Maximum colors: " + strings.Join(limits, ", "),
				},
				"columns": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Number of grid columns (1-%d). Rows follow the aspect ratio.", template.MaxColumns),
				},
				"colors": map[string]interface{}{
					"type":        "integer",
					"description": "Palette size, limited by the material",
				},
				"cell_size": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Preview pixels per cell (1-%d)", template.MaxCellSize),
				},
				"smoothing": map[string]interface{}{
					"type":        "number",
					"description": "Gaussian blur radius applied before sampling. 0 disables it.",
				},
				"grid_color": map[string]interface{}{
					"type":        "string",
					"description": "Grid line color in the preview, as #RRGGBB",
				},
				"include_cells": map[string]interface{}{
					"type":        "boolean",
					"description": "Include the cell-to-palette index matrix in the result",
					"default":     false,
				},
			}),
		},

		{
			Name:        "workflow_template_cell",
			Description: "Return the palette color assigned to one cell of the generated template.",
			InputSchema: objectSchema(map[string]interface{}{
				"column": map[string]interface{}{
					"type":        "integer",
					"description": "Zero-based cell column",
				},
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Zero-based cell row",
				},
			}, "column", "row"),
		},

		// Inspection
		{
			Name:        "workflow_state",
			Description: "Report the workflow state, undo depth and current image metadata.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        "workflow_image",
			Description: "Return the current image as base64-encoded PNG.",
			InputSchema: objectSchema(map[string]interface{}{
				"scale": map[string]interface{}{
					"type":        "integer",
					"description": "Optional integer upscale factor (1-8). Default 1",
					"default":     1,
				},
			}),
		},
		{
			Name:        "workflow_operations",
			Description: "List the supported transformation operations and template materials.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
