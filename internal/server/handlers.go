package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/artcreator/internal/imaging"
	"github.com/ironsheep/artcreator/internal/statemachine"
	"github.com/ironsheep/artcreator/internal/template"
	"github.com/ironsheep/artcreator/internal/workflow"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "workflow_import").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// argumentError marks malformed tool arguments.
type argumentError struct {
	err error
}

func (e *argumentError) Error() string { return "invalid arguments: " + e.err.Error() }
func (e *argumentError) Unwrap() error { return e.err }

var errUnknownTool = errors.New("unknown tool")

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool failures return a JSON-RPC error whose code is chosen by errorCode.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, CodeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		code := errorCode(err)
		s.logger.Debug("tool failed", "tool", params.Name, "code", code, "error", err)
		return s.errorResponse(req.ID, code, "Tool execution failed", err.Error())
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

// errorCode maps a tool error onto a JSON-RPC error code.
func errorCode(err error) int {
	var argErr *argumentError
	switch {
	case errors.As(err, &argErr), errors.Is(err, errUnknownTool):
		return CodeInvalidParams
	case errors.Is(err, workflow.ErrInvalidState):
		return CodeInvalidState
	case errors.Is(err, imaging.ErrInvalidOperation):
		return CodeInvalidOperation
	case errors.Is(err, workflow.ErrImport):
		return CodeImportFailed
	case errors.Is(err, template.ErrComputation):
		return CodeTemplateFailed
	default:
		return CodeToolFailed
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "workflow_import":
		return s.handleImport(args)
	case "workflow_transform":
		return s.handleTransform(args)
	case "workflow_undo":
		return s.handleUndo()
	case "workflow_generate_template":
		return s.handleGenerateTemplate(args)
	case "workflow_template_cell":
		return s.handleTemplateCell(args)
	case "workflow_state":
		return s.snapshot(), nil
	case "workflow_image":
		return s.handleImage(args)
	case "workflow_operations":
		return s.handleOperations(), nil
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownTool, name)
	}
}

// decodeArgs unmarshals tool arguments; absent arguments leave v untouched.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &argumentError{err: err}
	}
	return nil
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// stateResult describes the session after a tool call.
type stateResult struct {
	State           string             `json:"state"`
	HistoryLength   int                `json:"history_length"`
	HistoryCapacity int                `json:"history_capacity"`
	TemplateReady   bool               `json:"template_ready"`
	Image           *imaging.ImageInfo `json:"image,omitempty"`
	Template        *templateSummary   `json:"template,omitempty"`
}

// templateSummary describes the last generated template without its cells.
type templateSummary struct {
	Material template.Material `json:"material"`
	Columns  int               `json:"columns"`
	Rows     int               `json:"rows"`
	Colors   int               `json:"colors"`
}

func (s *Server) snapshot() *stateResult {
	state := s.session.CurrentState()
	result := &stateResult{
		State:           state.String(),
		HistoryLength:   s.session.HistoryLen(),
		HistoryCapacity: s.session.HistoryCapacity(),
		TemplateReady:   state == statemachine.TemplateReady,
		Image:           s.session.CurrentInfo(),
	}
	if tpl := s.session.CurrentTemplate(); tpl != nil {
		result.Template = &templateSummary{
			Material: tpl.Material,
			Columns:  tpl.Columns,
			Rows:     tpl.Rows,
			Colors:   len(tpl.Palette),
		}
	}
	return result
}

// === Editing Handlers ===

type importArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImport(args json.RawMessage) (interface{}, error) {
	var a importArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, &argumentError{err: errors.New("path is required")}
	}
	if _, err := s.session.ImportImage(a.Path); err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

type transformArgs struct {
	Operation string `json:"operation"`
}

func (s *Server) handleTransform(args json.RawMessage) (interface{}, error) {
	var a transformArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if _, err := s.session.ApplyTransformation(a.Operation); err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

func (s *Server) handleUndo() (interface{}, error) {
	if _, err := s.session.UndoLastTransformation(); err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

// === Template Handlers ===

type generateTemplateArgs struct {
	Material     string   `json:"material"`
	Columns      int      `json:"columns"`
	Colors       int      `json:"colors"`
	CellSize     int      `json:"cell_size"`
	Smoothing    *float64 `json:"smoothing"`
	GridColor    string   `json:"grid_color"`
	IncludeCells bool     `json:"include_cells"`
}

// config overlays the supplied arguments on defaults.
func (a generateTemplateArgs) config(defaults template.Config) template.Config {
	cfg := defaults
	if a.Material != "" {
		cfg.Material = template.Material(a.Material)
	}
	if a.Columns != 0 {
		cfg.Columns = a.Columns
	}
	if a.Colors != 0 {
		cfg.Colors = a.Colors
	}
	if a.CellSize != 0 {
		cfg.CellSize = a.CellSize
	}
	if a.Smoothing != nil {
		cfg.Smoothing = *a.Smoothing
	}
	if a.GridColor != "" {
		cfg.GridColor = a.GridColor
	}
	return cfg.WithDefaults()
}

type templateResult struct {
	State    string                `json:"state"`
	Material template.Material     `json:"material"`
	Columns  int                   `json:"columns"`
	Rows     int                   `json:"rows"`
	CellSize int                   `json:"cell_size"`
	Palette  imaging.Palette       `json:"palette"`
	Cells    [][]int               `json:"cells,omitempty"`
	Preview  *imaging.EncodedImage `json:"preview,omitempty"`
}

func (s *Server) handleGenerateTemplate(args json.RawMessage) (interface{}, error) {
	var a generateTemplateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	tpl, err := s.session.GenerateTemplate(a.config(s.defaults))
	if err != nil {
		return nil, err
	}

	result := &templateResult{
		State:    s.session.CurrentState().String(),
		Material: tpl.Material,
		Columns:  tpl.Columns,
		Rows:     tpl.Rows,
		CellSize: tpl.CellSize,
		Palette:  tpl.Palette,
	}
	if a.IncludeCells {
		result.Cells = tpl.Cells
	}
	if tpl.Preview != nil {
		preview, err := imaging.Encode(tpl.Preview)
		if err != nil {
			return nil, err
		}
		result.Preview = preview
	}
	return result, nil
}

type templateCellArgs struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

type templateCellResult struct {
	Column int              `json:"column"`
	Row    int              `json:"row"`
	Hex    string           `json:"hex"`
	RGB    imaging.RGBColor `json:"rgb"`
}

func (s *Server) handleTemplateCell(args json.RawMessage) (interface{}, error) {
	var a templateCellArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	tpl := s.session.CurrentTemplate()
	if tpl == nil {
		return nil, &workflow.StateError{Op: "template cell", State: s.session.CurrentState(), Reason: "no template generated"}
	}
	c, ok := tpl.ColorAt(a.Column, a.Row)
	if !ok {
		return nil, &argumentError{err: fmt.Errorf("cell (%d,%d) outside %dx%d template", a.Column, a.Row, tpl.Columns, tpl.Rows)}
	}
	return &templateCellResult{
		Column: a.Column,
		Row:    a.Row,
		Hex:    fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B),
		RGB:    imaging.RGBColor{R: c.R, G: c.G, B: c.B},
	}, nil
}

// === Inspection Handlers ===

type imageArgs struct {
	Scale int `json:"scale"`
}

func (s *Server) handleImage(args json.RawMessage) (interface{}, error) {
	var a imageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale < 0 || a.Scale > 8 {
		return nil, &argumentError{err: fmt.Errorf("scale must be between 1 and 8, got %d", a.Scale)}
	}

	img := s.session.CurrentImage()
	if img == nil {
		return nil, &workflow.StateError{Op: "image", State: s.session.CurrentState(), Reason: "no image loaded"}
	}
	if a.Scale > 1 {
		img = imaging.Upscale(img, a.Scale)
	}
	return imaging.Encode(img)
}

type materialInfo struct {
	Name      template.Material `json:"name"`
	MaxColors int               `json:"max_colors"`
}

type operationsResult struct {
	Operations []string       `json:"operations"`
	Materials  []materialInfo `json:"materials"`
}

func (s *Server) handleOperations() *operationsResult {
	result := &operationsResult{Operations: imaging.Operations()}
	for _, m := range template.Materials() {
		result.Materials = append(result.Materials, materialInfo{Name: m, MaxColors: m.MaxColors()})
	}
	return result
}
