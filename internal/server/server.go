package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ironsheep/artcreator/internal/logging"
	"github.com/ironsheep/artcreator/internal/statemachine"
	"github.com/ironsheep/artcreator/internal/template"
	"github.com/ironsheep/artcreator/internal/workflow"
)

// Name is reported to clients during initialize.
const Name = "artcreator"

// JSON-RPC error codes. Codes above -32000 are application specific.
const (
	CodeMethodNotFound   = -32601
	CodeInvalidParams    = -32602
	CodeToolFailed       = -32000
	CodeInvalidState     = -32001
	CodeInvalidOperation = -32002
	CodeImportFailed     = -32003
	CodeTemplateFailed   = -32004
)

// Server exposes one workflow session over MCP.
type Server struct {
	session  *workflow.Session
	defaults template.Config
	version  string
	logger   *slog.Logger

	// writeMu serializes responses and state notifications on the output.
	writeMu sync.Mutex
	encoder *json.Encoder
}

// Options configures a Server.
type Options struct {
	// Defaults fill template parameters the client leaves out.
	Defaults template.Config
	Version  string
	Logger   *slog.Logger
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

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// New creates a server for session.
func New(session *workflow.Session, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Server{
		session:  session,
		defaults: opts.Defaults.WithDefaults(),
		version:  opts.Version,
		logger:   opts.Logger,
	}
}

// Serve reads line-delimited requests from r and writes responses and state
// notifications to w until r is exhausted.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	s.writeMu.Lock()
	s.encoder = json.NewEncoder(w)
	s.writeMu.Unlock()

	notifier := &stateNotifier{server: s}
	s.session.Attach(notifier)
	defer s.session.Detach(notifier)

	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	s.logger.Info("serving", "session_id", s.session.ID(), "version", s.version)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			continue
		}

		if resp := s.handleRequest(&req); resp != nil {
			s.write(resp)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

func (s *Server) write(v interface{}) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.encoder == nil {
		return
	}
	if err := s.encoder.Encode(v); err != nil {
		s.logger.Error("failed to encode message", "error", err)
	}
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
		return s.errorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
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
				"name":    Name,
				"version": s.version,
			},
		},
	}
}

// stateNotifier forwards session state changes to the client.
type stateNotifier struct {
	server *Server
}

func (n *stateNotifier) StateChanged(state statemachine.State) error {
	n.server.write(&MCPNotification{
		JSONRPC: "2.0",
		Method:  "notifications/state_changed",
		Params: map[string]interface{}{
			"state":   state.String(),
			"parent":  state.Parent().String(),
			"history": n.server.session.HistoryLen(),
		},
	})
	return nil
}
