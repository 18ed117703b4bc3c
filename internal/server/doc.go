// Package server implements the MCP (Model Context Protocol) server for page translation.
//
// This package provides a JSON-RPC 2.0 server that exposes the region
// translation pipeline through the MCP protocol. A client hands it a page and
// the text regions found by a detector; the server reads, translates and
// redraws each region.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load a page and get metadata
//   - image_dimensions: Get width and height
//
// Region Operations:
//   - regions_map: Map normalized boxes to pixel rectangles
//   - regions_extract_text: Recognize the text of each region
//   - regions_translate: Translate a whole page and return the rendered image
//   - regions_annotate: Outline and number the regions of a page
//
// Rendering Helpers:
//   - region_background: Infer the fill color of a region from its border
//   - text_layout: Fit, wrap and place text inside a rectangle
//
// Translation and Dataset:
//   - languages: List supported target locales
//   - dataset_export: Append the text of labelled pages to a JSON lines dataset
//
// Region tools accept boxes in normalized center format (cx, cy, w, h in
// [0,1]) relative to ref_width x ref_height. Without boxes the configured
// detector is used.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded pages keyed by path.
// regions_translate decodes its input on every call and does not use the
// cache.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// A region that fails inside regions_extract_text or regions_translate does
// not fail the call. Its report carries the outcome and error instead.
//
// # Usage
//
//	srv := server.New(deps, pipeline.DefaultOptions())
//	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
package server
