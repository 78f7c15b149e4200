package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/detection"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/geometry"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/imaging"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/layout"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/ocr"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/pipeline"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/textfit"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "hud_apply", "hud_plan").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Debug("tool failed", zap.String("tool", params.Name), zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "hud_apply":
		return s.handleHUDApply(args)
	case "hud_plan":
		return s.handleHUDPlan(args)
	case "hud_fit_text":
		return s.handleHUDFitText(args)
	case "hud_verify_labels":
		return s.handleHUDVerifyLabels(args)
	case "hud_face_panel":
		return s.handleHUDFacePanel(args)

	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments. Missing arguments decode as an
// empty object.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

var errPathRequired = errors.New("path is required")

// === HUD Handlers ===

type hudApplyArgs struct {
	Path     string `json:"path"`
	FacePath string `json:"face_path"`
}

func (s *Server) handleHUDApply(args json.RawMessage) (interface{}, error) {
	var a hudApplyArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errPathRequired
	}

	res, err := s.pipeline.Run(context.Background(), a.Path, pipeline.Options{FaceImagePath: a.FacePath})
	if err != nil {
		return nil, err
	}
	s.cache.Evict(res.OutputPath)
	return res, nil
}

type hudPlanArgs struct {
	Path   string         `json:"path"`
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Face   *geometry.Rect `json:"face"`
	Body   *geometry.Rect `json:"body"`
	// Card defaults to true when a face is present.
	Card *bool `json:"card"`
}

// HUDPlanResult is the output of hud_plan.
type HUDPlanResult struct {
	Detections detection.Result `json:"detections"`
	Plan       *layout.Plan     `json:"plan"`
}

func (s *Server) handleHUDPlan(args json.RawMessage) (interface{}, error) {
	var a hudPlanArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	det := detection.Result{Face: a.Face, Body: a.Body}
	if a.Path != "" {
		img, err := s.cache.Load(a.Path)
		if err != nil {
			return nil, err
		}
		a.Width, a.Height = img.Bounds().Dx(), img.Bounds().Dy()
		if a.Face == nil && a.Body == nil {
			det = detection.Detect(s.detector, img)
		}
	}
	if a.Width <= 0 || a.Height <= 0 {
		return nil, errors.New("path or a positive width and height are required")
	}

	card := det.Face != nil
	if a.Card != nil {
		card = *a.Card
	}

	plan := s.planner.Plan(layout.Input{
		Width:  a.Width,
		Height: a.Height,
		Face:   det.Face,
		Body:   det.Body,
		Card:   card,
	})
	return &HUDPlanResult{Detections: det, Plan: plan}, nil
}

type hudFitTextArgs struct {
	Text      string `json:"text"`
	Width     int    `json:"width"`
	StartSize int    `json:"start_size"`
	MinSize   int    `json:"min_size"`
}

func (s *Server) handleHUDFitText(args json.RawMessage) (interface{}, error) {
	var a hudFitTextArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Width <= 0 {
		return nil, errors.New("width must be positive")
	}
	if a.StartSize == 0 {
		a.StartSize = textfit.DefaultStartSize
	}
	if a.MinSize == 0 {
		a.MinSize = textfit.DefaultMinSize
	}
	return s.fit.Fit(a.Text, a.Width, a.StartSize, a.MinSize), nil
}

type hudVerifyLabelsArgs struct {
	Path     string      `json:"path"`
	FacePath string      `json:"face_path"`
	Labels   []ocr.Label `json:"labels"`
}

// HUDVerifyResult is the output of hud_verify_labels.
type HUDVerifyResult struct {
	// OutputPath is set when the composition was run first.
	OutputPath string        `json:"output_path,omitempty"`
	Readings   []ocr.Reading `json:"readings"`
	AllMatch   bool          `json:"all_match"`
}

// handleHUDVerifyLabels reads the given labels from path. Without labels it
// composes path first and reads the body labels of the saved result.
func (s *Server) handleHUDVerifyLabels(args json.RawMessage) (interface{}, error) {
	var a hudVerifyLabelsArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errPathRequired
	}

	out := &HUDVerifyResult{}
	if len(a.Labels) > 0 {
		img, err := s.cache.Load(a.Path)
		if err != nil {
			return nil, err
		}
		out.Readings, err = s.reader.ReadRegions(img, a.Labels)
		if err != nil {
			return nil, err
		}
	} else {
		res, err := s.pipeline.Run(context.Background(), a.Path, pipeline.Options{FaceImagePath: a.FacePath})
		if err != nil {
			return nil, err
		}
		s.cache.Evict(res.OutputPath)
		out.OutputPath = res.OutputPath
		out.Readings, err = VerifyResult(s.reader, res)
		if err != nil {
			return nil, err
		}
	}

	out.AllMatch = true
	for _, r := range out.Readings {
		if r.Want != "" && !r.Match {
			out.AllMatch = false
		}
	}
	return out, nil
}

// VerifyResult reads the body labels of a saved pipeline result. A result
// without body labels has nothing to read.
func VerifyResult(reader *ocr.Reader, res *pipeline.Result) ([]ocr.Reading, error) {
	if res.Plan == nil || res.Plan.Body == nil || res.Labels == nil {
		return []ocr.Reading{}, nil
	}
	top, bottom := res.Labels.Display()
	return reader.ReadFile(res.OutputPath, ocr.BodyLabels(res.Plan.Body, top, bottom))
}

type hudFacePanelArgs struct {
	Path    string         `json:"path"`
	Face    *geometry.Rect `json:"face"`
	Width   int            `json:"width"`
	Padding *float64       `json:"padding"`
}

func (s *Server) handleHUDFacePanel(args json.RawMessage) (interface{}, error) {
	var a hudFacePanelArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errPathRequired
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	face := a.Face
	if face == nil && s.detector != nil {
		if r, ok := s.detector.DetectFace(img); ok {
			face = &r
		}
	}
	if face == nil {
		return nil, errors.New("no face detected; pass a face rectangle")
	}

	padding := pipeline.FaceCropPadding
	if a.Padding != nil {
		padding = *a.Padding
	}

	panel := s.renderer.FacePanel(imaging.CropRegion(img, *face, padding), a.Width)
	if panel == nil {
		return nil, errors.New("face crop is empty")
	}
	return imaging.EncodePNG(panel, 1.0)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}
