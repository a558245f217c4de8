package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// MethodQuery asks for display results.
const MethodQuery = "query"

// Request is the JSON-RPC envelope sent by the launcher host.
type Request struct {
	Method     string            `json:"method"`
	Parameters []json.RawMessage `json:"parameters"`
}

// Response carries either a result or an error message.
type Response struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// LaunchResult is the result of a launch_game call.
type LaunchResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// ParseRequest decodes a JSON-RPC request.
func ParseRequest(raw []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	if req.Method == "" {
		return Request{}, fmt.Errorf("decode request: no method")
	}
	return req, nil
}

// Handle dispatches req to Query or Launch.
func (p *Plugin) Handle(ctx context.Context, req Request) Response {
	switch req.Method {
	case MethodQuery:
		return Response{Result: p.Query(ctx, joinParams(req.Parameters))}

	case MethodLaunch:
		if len(req.Parameters) == 0 {
			return Response{Error: "launch_game requires a game id"}
		}
		ok, msg := p.Launch(ctx, param(req.Parameters[0]))
		return Response{Result: LaunchResult{OK: ok, Message: msg}}

	default:
		return Response{Error: fmt.Sprintf("unknown method %q", req.Method)}
	}
}

// joinParams turns the parameter list into one query string; hosts send the
// query either as one string or split into words.
func joinParams(params []json.RawMessage) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, param(p))
	}
	return strings.Join(parts, " ")
}

// param renders a raw parameter as text: strings are unquoted, null is empty
// and anything else keeps its JSON form.
func param(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}
