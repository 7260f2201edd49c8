// Package mcp serves an opsy.Dispatcher as a single Model Context Protocol tool
// over JSON-RPC 2.0, on stdio or HTTP.
//
// The tool takes {"operation": string, "args": object|null}. The envelope is
// checked against its JSON Schema; the args bag is then passed to the dispatcher
// untouched, so argument errors come from the operation's own schema.
package mcp

import (
	"bufio"
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/skosovsky/opsy"
)

// ProtocolVersion is the MCP revision the server speaks.
const ProtocolVersion = "2024-11-05"

// DefaultToolName is used when WithTool is not given.
const DefaultToolName = "perform_any_operation"

const maxMessageSize = 4 << 20

// Session defaults; see WithSessionTTL and WithMaxSessions.
const (
	DefaultSessionTTL  = time.Hour
	DefaultMaxSessions = 1024
)

// HandlerFunc handles one JSON-RPC request. A nil response means nothing is sent.
type HandlerFunc func(ctx context.Context, req *Request) *Response

// Middleware wraps the request handler.
type Middleware func(next HandlerFunc) HandlerFunc

// Server exposes a Dispatcher as one MCP tool.
type Server struct {
	info       ServerInfo
	tool       ToolDef
	envelope   *jsonschema.Resolved
	dispatcher opsy.Dispatcher
	middleware []Middleware
	logger     *slog.Logger

	sessionMu   sync.Mutex
	sessions    map[string]time.Time // id -> last use
	sessionTTL  time.Duration
	maxSessions int
	now         func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithTool sets the tool's name and description.
func WithTool(name, description string) Option {
	return func(s *Server) {
		s.tool.Name = name
		s.tool.Description = description
	}
}

// WithLogger sets the server logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSessionTTL sets how long an HTTP session may stay idle before it expires.
// Zero or negative keeps DefaultSessionTTL.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.sessionTTL = d
		}
	}
}

// WithMaxSessions caps the number of live HTTP sessions. When the cap is reached
// the least recently used session is dropped. Zero or negative keeps
// DefaultMaxSessions.
func WithMaxSessions(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithMiddleware appends request middlewares (first is outermost).
func WithMiddleware(mw ...Middleware) Option {
	return func(s *Server) {
		s.middleware = append(s.middleware, mw...)
	}
}

// New creates a server named name that routes tool calls to d.
func New(name, version string, d opsy.Dispatcher, opts ...Option) (*Server, error) {
	if d == nil {
		return nil, errors.New("mcp: dispatcher must not be nil")
	}
	s := &Server{
		info:        ServerInfo{Name: name, Version: version},
		dispatcher:  d,
		logger:      slog.Default(),
		sessions:    make(map[string]time.Time),
		sessionTTL:  DefaultSessionTTL,
		maxSessions: DefaultMaxSessions,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tool.Name == "" {
		s.tool.Name = DefaultToolName
	}
	if s.tool.Description == "" {
		s.tool.Description = defaultDescription(d.Names())
	}

	schema := EnvelopeSchema()
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("mcp: resolve envelope schema: %w", err)
	}
	s.envelope = resolved
	input, err := opsy.SchemaToMap(schema)
	if err != nil {
		return nil, fmt.Errorf("mcp: encode envelope schema: %w", err)
	}
	s.tool.InputSchema = input
	return s, nil
}

// EnvelopeSchema is the input schema of the tool.
func EnvelopeSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"operation": {
				Type: "string",
				Description: fmt.Sprintf("Operation to perform, or %s to describe the operation named in args.%s",
					opsy.HelpOperation, opsy.HelpTargetKey),
			},
			"args": {
				Types:       []string{"object", "null"},
				Description: "Operation arguments",
			},
		},
		Required: []string{"operation"},
	}
}

func defaultDescription(names []string) string {
	return fmt.Sprintf("Perform one operation. Call %s with args {'%s': <name>} first to learn its arguments.\n\nAvailable operations: %s",
		opsy.HelpOperation, opsy.HelpTargetKey, strings.Join(names, ", "))
}

// Tool returns the tool definition listed by tools/list.
func (s *Server) Tool() ToolDef { return s.tool }

// HandleRequest processes a single request through the middleware chain.
func (s *Server) HandleRequest(ctx context.Context, req *Request) *Response {
	handler := s.coreHandler
	for i := len(s.middleware) - 1; i >= 0; i-- {
		handler = s.middleware[i](handler)
	}
	return handler(ctx, req)
}

// HandleMessage decodes one JSON-RPC message and handles it. It returns nil when
// no response is due.
func (s *Server) HandleMessage(ctx context.Context, data []byte) *Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse(nil, CodeParseError, "Parse error")
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		if req.IsNotification() {
			return nil
		}
		return errorResponse(req.ID, CodeInvalidRequest, "Invalid request")
	}
	return s.HandleRequest(ctx, &req)
}

func (s *Server) coreHandler(ctx context.Context, req *Request) *Response {
	var (
		result any
		rpcErr *RPCError
	)
	switch req.Method {
	case "initialize":
		result = &InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    ServerCapabilities{Tools: ToolsCapability{ListChanged: false}},
			ServerInfo:      s.info,
		}
	case "notifications/initialized":
		s.logger.DebugContext(ctx, "client initialized")
		return nil
	case "ping":
		result = struct{}{}
	case "tools/list":
		result = &ToolsListResult{Tools: []ToolDef{s.tool}}
	case "tools/call":
		result, rpcErr = s.callTool(ctx, req.Params)
	default:
		rpcErr = &RPCError{Code: CodeMethodNotFound, Message: "Method not found: " + req.Method}
	}

	if req.IsNotification() {
		return nil
	}
	if rpcErr != nil {
		return errorResponse(req.ID, rpcErr.Code, rpcErr.Message)
	}
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func (s *Server) callTool(ctx context.Context, raw json.RawMessage) (*ToolCallResult, *RPCError) {
	var params toolCallParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "Invalid params: " + err.Error()}
	}
	if params.Name != s.tool.Name {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "Unknown tool: " + params.Name}
	}
	return s.Call(ctx, params.Arguments), nil
}

type envelope struct {
	Operation string    `json:"operation"`
	Args      opsy.Args `json:"args"`
}

// Call runs one tool invocation from its raw JSON arguments.
func (s *Server) Call(ctx context.Context, arguments json.RawMessage) *ToolCallResult {
	var instance any
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &instance); err != nil {
			return ErrorResult(fmt.Errorf("invalid tool arguments: %w", err))
		}
	}
	if err := s.envelope.Validate(instance); err != nil {
		return ErrorResult(fmt.Errorf("invalid tool arguments: %w", err))
	}

	// Numbers stay json.Number so integers are not routed through float64.
	var env envelope
	dec := json.NewDecoder(bytes.NewReader(arguments))
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil {
		return ErrorResult(fmt.Errorf("invalid tool arguments: %w", err))
	}

	res, err := s.dispatcher.Execute(ctx, env.Operation, env.Args)
	if err != nil {
		return ErrorResult(err)
	}
	return Result(res)
}

// ServeStdio reads newline-delimited requests from r and writes responses to w
// until r is exhausted or ctx is canceled. Requests are handled in order.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	s.logger.InfoContext(ctx, "starting MCP server", "transport", "stdio",
		"name", s.info.Name, "version", s.info.Version, "tool", s.tool.Name)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	encoder := json.NewEncoder(w)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		resp := s.HandleMessage(ctx, line)
		if resp == nil {
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	return nil
}

func (s *Server) createSession() string {
	id := generateSessionID()
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	now := s.now()
	s.sweepSessions(now)
	for len(s.sessions) >= s.maxSessions {
		s.evictOldestSession()
	}
	s.sessions[id] = now
	return id
}

// CheckSession reports whether id was issued by an initialize request and has not
// expired. A valid check counts as use of the session.
func (s *Server) CheckSession(id string) bool {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	last, ok := s.sessions[id]
	if !ok {
		return false
	}
	now := s.now()
	if now.Sub(last) > s.sessionTTL {
		delete(s.sessions, id)
		return false
	}
	s.sessions[id] = now
	return true
}

// sweepSessions drops idle sessions. Caller holds sessionMu.
func (s *Server) sweepSessions(now time.Time) {
	for id, last := range s.sessions {
		if now.Sub(last) > s.sessionTTL {
			delete(s.sessions, id)
		}
	}
}

// evictOldestSession drops the least recently used session. Caller holds sessionMu.
func (s *Server) evictOldestSession() {
	var oldest string
	var oldestAt time.Time
	for id, last := range s.sessions {
		if oldest == "" || last.Before(oldestAt) {
			oldest, oldestAt = id, last
		}
	}
	delete(s.sessions, oldest)
}

func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("sess-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
