package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/detection"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/imaging"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/layout"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/logger"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/ocr"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/pipeline"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/render"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/textfit"
)

// Server handles MCP protocol communication
type Server struct {
	cache    *imaging.ImageCache
	pipeline *pipeline.Pipeline
	planner  *layout.Planner
	renderer *render.Renderer
	fit      *textfit.Resolver
	detector detection.Detector
	reader   *ocr.Reader
	log      *zap.Logger
	version  string
}

// Options are the collaborators of a Server. Nil fields get defaults; a nil
// Detector means every tool that needs a detection must be given one.
type Options struct {
	Pipeline *pipeline.Pipeline
	Planner  *layout.Planner
	Renderer *render.Renderer
	Faces    *textfit.FaceCache
	Detector detection.Detector
	OCR      *ocr.Reader
	Logger   *zap.Logger
	Version  string
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance
func New(opts Options) (*Server, error) {
	s := &Server{
		cache:    imaging.NewImageCache(),
		pipeline: opts.Pipeline,
		planner:  opts.Planner,
		renderer: opts.Renderer,
		detector: opts.Detector,
		reader:   opts.OCR,
		log:      opts.Logger,
		version:  opts.Version,
	}
	if s.log == nil {
		s.log = logger.Log()
	}
	if s.version == "" {
		s.version = "dev"
	}
	faces := opts.Faces
	if faces == nil {
		faces = textfit.NewFaceCache()
	}
	if s.renderer == nil {
		s.renderer = render.New(faces, render.DefaultPalette())
	}
	if s.planner == nil {
		s.planner = layout.NewPlanner(layout.DefaultConfig())
	}
	if s.reader == nil {
		s.reader = ocr.NewReader(ocr.DefaultConfig())
	}
	if s.pipeline == nil {
		p, err := pipeline.New(pipeline.Deps{
			Detector: s.detector,
			Renderer: s.renderer,
			Planner:  s.planner,
			Logger:   s.log,
		})
		if err != nil {
			return nil, err
		}
		s.pipeline = p
	}
	s.fit = textfit.NewResolver(textfit.FamilyMeasurer{Cache: faces, Family: textfit.Regular}, textfit.DefaultPadding)
	return s, nil
}

// Run serves MCP on stdin and stdout until stdin is closed.
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to w.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("failed to parse request", zap.Error(err))
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.Error("failed to encode response", zap.Error(err))
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "cyberstyle",
				"version": s.version,
			},
		},
	}
}
