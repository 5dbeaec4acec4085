// Package server exposes a workflow session to MCP clients.
//
// The server speaks JSON-RPC 2.0 over a pair of streams, one message per
// line. Supported methods are initialize, notifications/initialized,
// tools/list, tools/call and ping.
//
// # Tools
//
//   - workflow_import: load an image file
//   - workflow_transform: apply rotate, mirror or crop operations
//   - workflow_undo: restore the previous image
//   - workflow_generate_template: build a craft template
//   - workflow_template_cell: look up the color of one template cell
//   - workflow_state: report state and image metadata
//   - workflow_image: fetch the current image as PNG
//   - workflow_operations: list operations and materials
//
// # Notifications
//
// Every state change of the session, including reassignment of the same
// state, is pushed to the client before the response of the call that
// caused it:
//
//	{"jsonrpc":"2.0","method":"notifications/state_changed","params":{"state":"ImageLoaded","parent":"CreateTemplate","history":1}}
//
// # Error Handling
//
// Tool failures are JSON-RPC errors. The code identifies the failure:
//
//	-32001  operation not allowed in the current state
//	-32002  malformed or unknown transformation
//	-32003  image could not be read or decoded
//	-32004  template computation failed
//	-32000  any other tool failure
//	-32602  invalid params or unknown tool
//	-32601  unknown method
//
// The error data carries the Go error string.
package server
