package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/skosovsky/opsy"
	"github.com/skosovsky/opsy/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	server *Server
	echo   *testutil.MockOperation[struct{}]
	fail   *testutil.MockOperation[struct{}]
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		echo: &testutil.MockOperation[struct{}]{
			NameVal: "list_servers",
			Fields:  []opsy.Field{opsy.Required("environment_id", opsy.Int)},
			ExecuteFn: func(_ context.Context, _ struct{}, args opsy.Values) (any, error) {
				return args.Map(), nil
			},
		},
		fail: &testutil.MockOperation[struct{}]{
			NameVal: "stop_server",
			Err:     errors.New("devopness api: status 500: boom"),
		},
	}
	text := &testutil.MockOperation[struct{}]{NameVal: "ping_server", Result: "pong"}
	d := testutil.NewTestDispatcher(t, f.echo, f.fail, text)

	opts = append([]Option{WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	s, err := New("opsy-test", "1.2.3", d, opts...)
	require.NoError(t, err)
	f.server = s
	return f
}

func call(t *testing.T, s *Server, method string, params any) *Response {
	t.Helper()
	msg := map[string]any{"jsonrpc": "2.0", "id": 1, "method": method}
	if params != nil {
		msg["params"] = params
	}
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	return s.HandleMessage(context.Background(), data)
}

func toolCall(t *testing.T, s *Server, arguments any) *ToolCallResult {
	t.Helper()
	resp := call(t, s, "tools/call", map[string]any{"name": s.Tool().Name, "arguments": arguments})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	res, ok := resp.Result.(*ToolCallResult)
	require.True(t, ok, "result type %T", resp.Result)
	return res
}

func TestNew_NilDispatcher(t *testing.T) {
	_, err := New("x", "1", nil)
	assert.Error(t, err)
}

func TestInitialize(t *testing.T) {
	f := newFixture(t)
	resp := call(t, f.server, "initialize", map[string]any{"protocolVersion": ProtocolVersion})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	assert.JSONEq(t, "1", string(resp.ID))
	res, ok := resp.Result.(*InitializeResult)
	require.True(t, ok)
	assert.Equal(t, ProtocolVersion, res.ProtocolVersion)
	assert.Equal(t, ServerInfo{Name: "opsy-test", Version: "1.2.3"}, res.ServerInfo)
}

func TestNotificationsGetNoResponse(t *testing.T) {
	f := newFixture(t)
	resp := f.server.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	assert.Nil(t, resp)
	resp = f.server.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","method":"unknown/notification"}`))
	assert.Nil(t, resp)
}

func TestPingAndUnknownMethod(t *testing.T) {
	f := newFixture(t)
	resp := call(t, f.server, "ping", nil)
	require.NotNil(t, resp)
	assert.Nil(t, resp.Error)

	resp = call(t, f.server, "resources/list", nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeMethodNotFound, resp.Error.Code)
}

func TestMalformedMessages(t *testing.T) {
	f := newFixture(t)
	resp := f.server.HandleMessage(context.Background(), []byte(`{not json`))
	require.NotNil(t, resp)
	assert.Equal(t, CodeParseError, resp.Error.Code)
	assert.Equal(t, "null", string(resp.ID))

	resp = f.server.HandleMessage(context.Background(), []byte(`{"jsonrpc":"1.0","id":7,"method":"ping"}`))
	require.NotNil(t, resp)
	assert.Equal(t, CodeInvalidRequest, resp.Error.Code)
	assert.Equal(t, "7", string(resp.ID))
}

func TestToolsList(t *testing.T) {
	f := newFixture(t, WithTool("devopness_perform_any_operation", "Perform any operation."))
	resp := call(t, f.server, "tools/list", nil)
	require.NotNil(t, resp)
	res, ok := resp.Result.(*ToolsListResult)
	require.True(t, ok)
	require.Len(t, res.Tools, 1)
	tool := res.Tools[0]
	assert.Equal(t, "devopness_perform_any_operation", tool.Name)
	assert.Equal(t, "Perform any operation.", tool.Description)
	assert.Equal(t, "object", tool.InputSchema["type"])
	assert.Equal(t, []any{"operation"}, tool.InputSchema["required"])
	props, ok := tool.InputSchema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "operation")
	assert.Contains(t, props, "args")
}

func TestDefaultToolDescriptionListsOperations(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, DefaultToolName, f.server.Tool().Name)
	assert.Contains(t, f.server.Tool().Description, "list_servers, ping_server, stop_server")
}

func TestToolCall_Success(t *testing.T) {
	f := newFixture(t)
	res := toolCall(t, f.server, map[string]any{
		"operation": "list_servers",
		"args":      map[string]any{"environment_id": 42},
	})
	assert.False(t, res.IsError)
	assert.JSONEq(t, `{"environment_id":42}`, res.Text())
	assert.Contains(t, res.Text(), "\n  ")
	require.Equal(t, 1, f.echo.CallCount())
	assert.Equal(t, 42, f.echo.Calls()[0].Int("environment_id"))
}

func TestToolCall_StringResultIsText(t *testing.T) {
	f := newFixture(t)
	res := toolCall(t, f.server, map[string]any{"operation": "ping_server", "args": nil})
	assert.False(t, res.IsError)
	assert.Equal(t, "pong", res.Text())
}

func TestToolCall_Help(t *testing.T) {
	f := newFixture(t)
	res := toolCall(t, f.server, map[string]any{
		"operation": opsy.HelpOperation,
		"args":      map[string]any{"operation": "list_servers"},
	})
	assert.False(t, res.IsError)
	assert.Equal(t, "To perform the 'list_servers' operation, you must specify the following arguments:\n- environment_id: int", res.Text())
	assert.Zero(t, f.echo.CallCount())
}

func TestToolCall_UnknownOperationIsSoft(t *testing.T) {
	f := newFixture(t)
	res := toolCall(t, f.server, map[string]any{"operation": "nonexistent_op", "args": map[string]any{}})
	assert.False(t, res.IsError)
	assert.Equal(t, "Unknown operation: nonexistent_op", res.Text())
}

func TestToolCall_ValidationErrorForAgent(t *testing.T) {
	f := newFixture(t)
	res := toolCall(t, f.server, map[string]any{
		"operation": "list_servers",
		"args":      map[string]any{"environment_id": "42"},
	})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text(), "Argument 'environment_id' must be of type 'int', got 'str'")
	assert.Zero(t, f.echo.CallCount())
}

func TestToolCall_HandlerError(t *testing.T) {
	f := newFixture(t)
	res := toolCall(t, f.server, map[string]any{"operation": "stop_server"})
	assert.True(t, res.IsError)
	assert.Equal(t, "devopness api: status 500: boom", res.Text())
	assert.Equal(t, 1, f.fail.CallCount())
}

func TestToolCall_BadEnvelope(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name      string
		arguments any
	}{
		{"missing operation", map[string]any{"args": map[string]any{}}},
		{"operation not a string", map[string]any{"operation": 5}},
		{"args not an object", map[string]any{"operation": "list_servers", "args": []any{1}}},
		{"no arguments", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := toolCall(t, f.server, tt.arguments)
			assert.True(t, res.IsError)
			assert.True(t, strings.HasPrefix(res.Text(), "invalid tool arguments: "), res.Text())
		})
	}
	assert.Zero(t, f.echo.CallCount())
}

func TestToolCall_UnknownTool(t *testing.T) {
	f := newFixture(t)
	resp := call(t, f.server, "tools/call", map[string]any{"name": "other", "arguments": map[string]any{}})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidParams, resp.Error.Code)
}

func TestServeStdio(t *testing.T) {
	f := newFixture(t)
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"perform_any_operation","arguments":{"operation":"list_servers","args":{"environment_id":7}}}}`,
		`garbage`,
	}, "\n")
	var out bytes.Buffer
	require.NoError(t, f.server.ServeStdio(context.Background(), strings.NewReader(in), &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)

	var second struct {
		ID     int            `json:"id"`
		Result ToolCallResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, 2, second.ID)
	assert.False(t, second.Result.IsError)
	assert.JSONEq(t, `{"environment_id":7}`, second.Result.Text())

	var third Response
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &third))
	require.NotNil(t, third.Error)
	assert.Equal(t, CodeParseError, third.Error.Code)
}

func TestServeStdio_Canceled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := f.server.ServeStdio(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	panicky := func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) *Response {
			if req.Method == "ping" {
				panic("boom")
			}
			return next(ctx, req)
		}
	}
	f := newFixture(t, WithMiddleware(LoggingMiddleware(logger), RecoveryMiddleware(logger), panicky))

	resp := call(t, f.server, "ping", nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInternalError, resp.Error.Code)
	assert.Contains(t, buf.String(), "panic in MCP handler")
	assert.Contains(t, buf.String(), "mcp error")

	buf.Reset()
	toolCall(t, f.server, map[string]any{"operation": "stop_server"})
	assert.Contains(t, buf.String(), "mcp tool error")

	buf.Reset()
	call(t, f.server, "tools/list", nil)
	assert.Contains(t, buf.String(), "mcp request")
	assert.Contains(t, buf.String(), "method=tools/list")
}
