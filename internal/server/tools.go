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
		"description": "Absolute path to the page image",
	}
}

// regionProperties are the inputs shared by the tools working on the regions
// of a page.
func regionProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty(),
		"boxes": map[string]interface{}{
			"type":        "array",
			"description": "Detector boxes in processing order. Omit to run the configured detector.",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id":         map[string]interface{}{"type": "string"},
					"confidence": map[string]interface{}{"type": "number"},
					"cx":         map[string]interface{}{"type": "number", "description": "Center X, fraction of the reference width"},
					"cy":         map[string]interface{}{"type": "number", "description": "Center Y, fraction of the reference height"},
					"w":          map[string]interface{}{"type": "number", "description": "Width, fraction of the reference width"},
					"h":          map[string]interface{}{"type": "number", "description": "Height, fraction of the reference height"},
				},
				"required": []string{"cx", "cy", "w", "h"},
			},
		},
		"ref_width": map[string]interface{}{
			"type":        "integer",
			"description": "Width of the image the boxes were detected on (default: the page width)",
		},
		"ref_height": map[string]interface{}{
			"type":        "integer",
			"description": "Height of the image the boxes were detected on (default: the page height)",
		},
	}
}

func rectProperties(props map[string]interface{}) map[string]interface{} {
	props["x1"] = map[string]interface{}{"type": "integer", "description": "Left edge X coordinate (0-based)"}
	props["y1"] = map[string]interface{}{"type": "integer", "description": "Top edge Y coordinate (0-based)"}
	props["x2"] = map[string]interface{}{"type": "integer", "description": "Right edge X coordinate (exclusive)"}
	props["y2"] = map[string]interface{}{"type": "integer", "description": "Bottom edge Y coordinate (exclusive)"}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	extractProps := regionProperties()
	extractProps["preprocess"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Grayscale, binarize and sharpen the page before recognition",
	}
	extractProps["grammar"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Run grammar correction on recognized text",
	}
	extractProps["sort_by_top"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Report regions ordered by their top edge",
	}
	extractProps["include_crops"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Also return each region's crop as base64 PNG, as seen by the recognizer",
	}

	translateProps := regionProperties()
	translateProps["path"] = map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the page image (or use image_base64)",
	}
	translateProps["image_base64"] = map[string]interface{}{
		"type":        "string",
		"description": "Encoded page image (PNG or JPEG), base64",
	}
	translateProps["locale"] = map[string]interface{}{
		"type":        "string",
		"description": "Target locale, e.g. 'fr' or 'de' (default from configuration)",
	}

	annotateProps := regionProperties()
	annotateProps["color"] = map[string]interface{}{
		"type":        "string",
		"description": "Outline color as hex (default: #FF0000)",
		"default":     "#FF0000",
	}
	annotateProps["scale"] = map[string]interface{}{
		"type":        "number",
		"description": "Scale factor of the returned image (default: 1.0)",
		"default":     1.0,
	}

	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load a page image and return its dimensions, format and file size. The page is cached for subsequent operations.",
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
			Description: "Get the width and height of a page image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Region Operations
		{
			Name:        "regions_map",
			Description: "Convert normalized detector boxes to pixel rectangles on the page, with padding applied and degenerate boxes dropped.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": regionProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "regions_extract_text",
			Description: "Recognize the text of every region on the page with OCR. Optional preprocessing and grammar correction.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": extractProps,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "regions_translate",
			Description: "Run the full page translation: recognize each region, translate it to the target locale, erase the original text and draw the translation. Returns the translated page as base64 PNG and a report per region.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": translateProps,
			},
		},
		{
			Name:        "regions_annotate",
			Description: "Draw the outline and index of every region on the page, to check mapping and order visually.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": annotateProps,
				"required":   []string{"path"},
			},
		},

		// Rendering Helpers
		{
			Name:        "region_background",
			Description: "Sample the ring of pixels around a rectangle and return the inferred background color used to erase it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": rectProperties(map[string]interface{}{
					"path": pathProperty(),
					"ring_width": map[string]interface{}{
						"type":        "integer",
						"description": "Width of the sampled ring in pixels (default from configuration)",
					},
				}),
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "text_layout",
			Description: "Compute the font size, line wrapping and line positions used to draw text inside a rectangle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": rectProperties(map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Text to lay out",
					},
				}),
				"required": []string{"text", "x1", "y1", "x2", "y2"},
			},
		},

		// Translation and Dataset
		{
			Name:        "languages",
			Description: "List the supported target locales.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "dataset_export",
			Description: "Recognize the labelled boxes of every page in a directory and append the texts to a JSON lines translation dataset.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"images_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory of page images (.png, .jpg, .jpeg)",
					},
					"labels_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory of YOLO label files named after the pages",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "JSON lines file to append to",
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Language key of the entries (default: en)",
						"default":     "en",
					},
				},
				"required": []string{"images_dir", "labels_dir", "output_path"},
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
