package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func rectProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer", "description": "Left edge (inclusive)"},
			"y1": map[string]interface{}{"type": "integer", "description": "Top edge (inclusive)"},
			"x2": map[string]interface{}{"type": "integer", "description": "Right edge (exclusive)"},
			"y2": map[string]interface{}{"type": "integer", "description": "Bottom edge (exclusive)"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// HUD composition
		{
			Name: "hud_apply",
			Description: "Apply the cyber HUD filter to an image: stylize, detect face and body, " +
				"describe clothing, draw the HUD overlays, identity card and border frame, and save " +
				"the result next to the source as <name>_filtered.png. Returns the output path, the " +
				"stages reached and the resolved layout.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"face_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional face picture for the identity card, used when no face is detected",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "hud_plan",
			Description: "Resolve the HUD layout without drawing: face box with ticks and header bars, " +
				"body outline, label rectangles, connectors and card placement. Give an image path " +
				"(detections are run unless face/body are given) or width and height with rectangles.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"width":  map[string]interface{}{"type": "integer", "description": "Image width when no path is given"},
					"height": map[string]interface{}{"type": "integer", "description": "Image height when no path is given"},
					"face":   rectProperty("Face rectangle; overrides detection"),
					"body":   rectProperty("Body rectangle; overrides detection"),
					"card": map[string]interface{}{
						"type":        "boolean",
						"description": "Plan an identity card. Default: true when a face is present",
					},
				},
			},
		},
		{
			Name:        "hud_fit_text",
			Description: "Find the font size a label text is drawn at: the largest size from start_size down to min_size whose width plus padding fits.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text":  map[string]interface{}{"type": "string", "description": "Label text"},
					"width": map[string]interface{}{"type": "integer", "description": "Label width in pixels"},
					"start_size": map[string]interface{}{
						"type":        "integer",
						"description": "Largest size tried. Default 22",
						"default":     22,
					},
					"min_size": map[string]interface{}{
						"type":        "integer",
						"description": "Smallest size tried. Default 10",
						"default":     10,
					},
				},
				"required": []string{"text", "width"},
			},
		},
		{
			Name: "hud_verify_labels",
			Description: "Read HUD labels back with OCR and compare them with the expected text. " +
				"With labels, reads those rectangles from the image; without, applies the HUD first " +
				"and reads the body labels of the saved result.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"face_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional face picture, as for hud_apply",
					},
					"labels": map[string]interface{}{
						"type":        "array",
						"description": "Label rectangles to read",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"name": map[string]interface{}{"type": "string"},
								"rect": rectProperty("Label rectangle"),
								"want": map[string]interface{}{"type": "string", "description": "Expected text"},
							},
							"required": []string{"rect"},
						},
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "hud_face_panel",
			Description: "Frame a face as a standalone HUD panel (black margin, HUD border, corner brackets). Returns base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"face": rectProperty("Face rectangle; detected when omitted"),
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Width the face crop is resized to. Default 450",
						"default":     450,
					},
					"padding": map[string]interface{}{
						"type":        "number",
						"description": "Crop padding as a fraction of the face size. Default 0.25",
						"default":     0.25,
					},
				},
				"required": []string{"path"},
			},
		},

		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and file size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
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
