package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/artcreator/internal/template"
	"github.com/ironsheep/artcreator/internal/workflow"
)

// writeTestPNG writes a width x height two-tone PNG and returns its path.
func writeTestPNG(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBA{R: 200, G: 30, B: 30, A: 255}
			if x >= width/2 {
				c = color.NRGBA{R: 20, G: 40, B: 220, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "input.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func newTestServer() *Server {
	return New(workflow.NewSession(nil, nil, nil), Options{Version: "test"})
}

func call(id int, tool string, args interface{}) string {
	params := map[string]interface{}{"name": tool}
	if args != nil {
		params["arguments"] = args
	}
	b, _ := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params":  params,
	})
	return string(b)
}

// message is any line written by the server.
type message struct {
	ID     interface{}     `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
	Error  *MCPError       `json:"error"`
}

func serve(t *testing.T, s *Server, lines ...string) []message {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, s.Serve(strings.NewReader(strings.Join(lines, "\n")+"\n"), &out))

	var msgs []message
	scanner := bufio.NewScanner(&out)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var m message
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m))
		msgs = append(msgs, m)
	}
	require.NoError(t, scanner.Err())
	return msgs
}

// toolResult decodes the text content of a tools/call result into v.
func toolResult(t *testing.T, m message, v interface{}) {
	t.Helper()
	require.Nil(t, m.Error, "unexpected error: %+v", m.Error)
	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(m.Result, &result))
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), v))
}

func stateOf(t *testing.T, m message) string {
	t.Helper()
	require.Equal(t, "notifications/state_changed", m.Method)
	var p struct {
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(m.Params, &p))
	return p.State
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer()
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	assert.Equal(t, 1, resp.ID)

	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2024-11-05", result["protocolVersion"])
	info := result["serverInfo"].(map[string]interface{})
	assert.Equal(t, Name, info["name"])
	assert.Equal(t, "test", info["version"])
}

func TestHandleRequest_PingAndInitialized(t *testing.T) {
	s := newTestServer()
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: "ping-1", Method: "ping"})
	require.NotNil(t, resp)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "ping-1", resp.ID)

	assert.Nil(t, s.handleRequest(&MCPRequest{JSONRPC: "2.0", Method: "notifications/initialized"}))
}

func TestHandleRequest_UnknownMethod(t *testing.T) {
	s := newTestServer()
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 7, Method: "resources/list"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeMethodNotFound, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "resources/list")
	assert.Nil(t, resp.Error.Data)
}

func TestHandleRequest_ToolsList(t *testing.T) {
	s := newTestServer()
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})
	require.Nil(t, resp.Error)

	tools := resp.Result.(map[string]interface{})["tools"].([]Tool)
	var names []string
	for _, tool := range tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.Equal(t, "object", tool.InputSchema["type"], tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"workflow_import",
		"workflow_transform",
		"workflow_undo",
		"workflow_generate_template",
		"workflow_template_cell",
		"workflow_state",
		"workflow_image",
		"workflow_operations",
	}, names)
}

func TestServe_EditingSession(t *testing.T) {
	path := writeTestPNG(t, 10, 20)
	msgs := serve(t, newTestServer(),
		`{"jsonrpc":"2.0","id":0,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		call(1, "workflow_import", map[string]string{"path": path}),
		call(2, "workflow_transform", map[string]string{"operation": "rotate_right"}),
		call(3, "workflow_transform", map[string]string{"operation": "crop:0,0,5,5"}),
		call(4, "workflow_undo", nil),
		call(5, "workflow_state", nil),
	)

	// initialize, then a notification before each mutating response.
	require.Len(t, msgs, 1+2*4+1)
	assert.Nil(t, msgs[0].Error)

	for i, wantSize := range [][2]int{{10, 20}, {20, 10}, {5, 5}, {20, 10}} {
		note, resp := msgs[1+2*i], msgs[2+2*i]
		assert.Equal(t, "ImageLoaded", stateOf(t, note))

		var st stateResult
		toolResult(t, resp, &st)
		assert.Equal(t, "ImageLoaded", st.State)
		require.NotNil(t, st.Image)
		assert.Equal(t, wantSize, [2]int{st.Image.Width, st.Image.Height}, "call %d", i+1)
		assert.Equal(t, "png", st.Image.Format)
	}

	var note struct {
		Parent  string `json:"parent"`
		History int    `json:"history"`
	}
	require.NoError(t, json.Unmarshal(msgs[3].Params, &note))
	assert.Equal(t, "CreateTemplate", note.Parent)
	assert.Equal(t, 1, note.History)

	var st stateResult
	toolResult(t, msgs[9], &st)
	assert.Equal(t, 1, st.HistoryLength)
	assert.Equal(t, workflow.DefaultHistoryCapacity, st.HistoryCapacity)
	assert.False(t, st.TemplateReady)
	assert.Nil(t, st.Template)
}

func TestServe_ErrorCodes(t *testing.T) {
	path := writeTestPNG(t, 8, 8)
	corrupt := filepath.Join(t.TempDir(), "corrupt.png")
	require.NoError(t, os.WriteFile(corrupt, []byte("not an image"), 0o600))

	tests := []struct {
		name  string
		setup []string
		req   string
		code  int
	}{
		{"transform without image", nil, call(1, "workflow_transform", map[string]string{"operation": "mirror"}), CodeInvalidState},
		{"undo without image", nil, call(1, "workflow_undo", nil), CodeInvalidState},
		{"image without image", nil, call(1, "workflow_image", nil), CodeInvalidState},
		{"template without image", nil, call(1, "workflow_generate_template", nil), CodeInvalidState},
		{"cell without template", nil, call(1, "workflow_template_cell", map[string]int{"column": 0, "row": 0}), CodeInvalidState},
		{"missing file", nil, call(1, "workflow_import", map[string]string{"path": filepath.Join(t.TempDir(), "nope.png")}), CodeImportFailed},
		{"corrupt file", nil, call(1, "workflow_import", map[string]string{"path": corrupt}), CodeImportFailed},
		{"missing path", nil, call(1, "workflow_import", map[string]string{}), CodeInvalidParams},
		{"bad arguments", nil, call(1, "workflow_import", map[string]int{"path": 3}), CodeInvalidParams},
		{"unknown tool", nil, call(1, "image_ocr_full", nil), CodeInvalidParams},
		{
			"unknown operation",
			[]string{call(0, "workflow_import", map[string]string{"path": path})},
			call(1, "workflow_transform", map[string]string{"operation": "shear"}),
			CodeInvalidOperation,
		},
		{
			"bad template config",
			[]string{call(0, "workflow_import", map[string]string{"path": path})},
			call(1, "workflow_generate_template", map[string]interface{}{"material": "wood", "colors": 30}),
			CodeTemplateFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := serve(t, newTestServer(), append(tt.setup, tt.req)...)
			last := msgs[len(msgs)-1]
			require.NotNil(t, last.Error)
			assert.Equal(t, tt.code, last.Error.Code)
			assert.Equal(t, float64(1), last.ID)
			assert.NotEmpty(t, last.Error.Data)
		})
	}
}

func TestServe_GenerateTemplate(t *testing.T) {
	path := writeTestPNG(t, 40, 20)
	s := New(workflow.NewSession(nil, nil, nil), Options{
		Defaults: template.Config{Material: template.MaterialFabric, Columns: 8, Colors: 4, CellSize: 4},
	})

	msgs := serve(t, s,
		call(1, "workflow_import", map[string]string{"path": path}),
		call(2, "workflow_generate_template", map[string]interface{}{"colors": 2, "smoothing": 0, "include_cells": true}),
		call(3, "workflow_generate_template", nil),
		call(4, "workflow_state", nil),
		call(5, "workflow_template_cell", map[string]int{"column": 7, "row": 3}),
		call(6, "workflow_template_cell", map[string]int{"column": 8, "row": 0}),
	)
	require.Len(t, msgs, 2+3+1+1+2)

	assert.Equal(t, "ImageLoaded", stateOf(t, msgs[0]))
	assert.Equal(t, "Processing", stateOf(t, msgs[2]))
	assert.Equal(t, "TemplateReady", stateOf(t, msgs[3]))

	var tpl templateResult
	toolResult(t, msgs[4], &tpl)
	assert.Equal(t, "TemplateReady", tpl.State)
	assert.Equal(t, template.MaterialFabric, tpl.Material)
	assert.Equal(t, 8, tpl.Columns)
	assert.Equal(t, 4, tpl.Rows)
	assert.Len(t, tpl.Palette, 2)
	require.Len(t, tpl.Cells, 4)
	assert.Len(t, tpl.Cells[0], 8)
	require.NotNil(t, tpl.Preview)
	assert.Equal(t, 32, tpl.Preview.Width)
	assert.Equal(t, "image/png", tpl.Preview.MimeType)

	// A second generation must start from an edited image.
	require.NotNil(t, msgs[5].Error)
	assert.Equal(t, CodeInvalidState, msgs[5].Error.Code)

	var st stateResult
	toolResult(t, msgs[6], &st)
	assert.True(t, st.TemplateReady)
	require.NotNil(t, st.Template)
	assert.Equal(t, template.MaterialFabric, st.Template.Material)
	assert.Equal(t, 8, st.Template.Columns)
	assert.Equal(t, 4, st.Template.Rows)
	assert.Equal(t, 2, st.Template.Colors)

	var cell templateCellResult
	toolResult(t, msgs[7], &cell)
	assert.Equal(t, 7, cell.Column)
	assert.Equal(t, 3, cell.Row)
	assert.Equal(t, tpl.Palette[tpl.Cells[3][7]].Hex, cell.Hex)

	require.NotNil(t, msgs[8].Error)
	assert.Equal(t, CodeInvalidParams, msgs[8].Error.Code)
}

func TestServe_ImageAndOperations(t *testing.T) {
	path := writeTestPNG(t, 6, 4)
	msgs := serve(t, newTestServer(),
		call(1, "workflow_import", map[string]string{"path": path}),
		call(2, "workflow_image", map[string]int{"scale": 2}),
		call(3, "workflow_operations", nil),
		call(4, "workflow_image", map[string]int{"scale": 20}),
	)
	require.Len(t, msgs, 5)

	var img struct {
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		ImageBase64 string `json:"image_base64"`
	}
	toolResult(t, msgs[2], &img)
	assert.Equal(t, 12, img.Width)
	assert.Equal(t, 8, img.Height)
	assert.NotEmpty(t, img.ImageBase64)

	var ops operationsResult
	toolResult(t, msgs[3], &ops)
	assert.Contains(t, ops.Operations, "rotate_left")
	assert.Contains(t, ops.Operations, "crop_center")
	assert.Contains(t, ops.Materials, materialInfo{Name: template.MaterialWood, MaxColors: 12})

	require.NotNil(t, msgs[4].Error)
	assert.Equal(t, CodeInvalidParams, msgs[4].Error.Code)
}

func TestServe_SkipsMalformedLines(t *testing.T) {
	msgs := serve(t, newTestServer(),
		`{not json`,
		``,
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
	)
	require.Len(t, msgs, 1)
	assert.Equal(t, float64(1), msgs[0].ID)
}

func TestServe_DetachesNotifier(t *testing.T) {
	path := writeTestPNG(t, 2, 2)
	session := workflow.NewSession(nil, nil, nil)
	s := New(session, Options{})
	serve(t, s, `{"jsonrpc":"2.0","id":1,"method":"ping"}`)

	// No Serve loop is attached, so nothing is written anywhere.
	_, err := session.ImportImage(path)
	require.NoError(t, err)
	assert.Equal(t, "ImageLoaded", session.CurrentState().String())
}
