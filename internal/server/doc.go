// Package server exposes the HUD composition engine as an MCP (Model Context
// Protocol) server.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to stderr. Supported MCP methods are initialize, tools/list,
// tools/call and ping.
//
// # Available Tools
//
//   - hud_apply: run the full composition on an image file and save the result
//   - hud_plan: resolve the layout for an image or for given rectangles
//   - hud_fit_text: font size a label text is drawn at for a width
//   - hud_verify_labels: read rendered labels back with OCR
//   - hud_face_panel: frame a face crop as a standalone HUD panel
//   - image_load, image_dimensions: image metadata
//
// Tool failures are returned as JSON-RPC errors with code -32000 and the Go
// error string as data. Loaded images are cached by path for the life of the
// process; files written by hud_apply are evicted so later calls see them.
package server
