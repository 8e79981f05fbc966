/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	"chainguard.dev/agentbench/config"
	"github.com/chainguard-dev/clog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// TransportKind selects how a server is reached.
type TransportKind string

const (
	StreamableHTTP TransportKind = "streamable_http"
	SSE            TransportKind = "sse"
)

// Server is a remote MCP server.
type Server struct {
	Name      string
	URL       string
	Transport TransportKind
}

// ResearchServers returns the documentation servers used to diagnose logs.
func ResearchServers(cfg config.MCP) []Server {
	return []Server{
		{Name: "deepwiki", URL: cfg.DeepWikiURL, Transport: StreamableHTTP},
		{Name: "context7", URL: cfg.Context7URL, Transport: StreamableHTTP},
	}
}

// NPSServer returns the National Parks Service server used by the assistant.
func NPSServer(cfg config.MCP) Server {
	return Server{Name: "nps", URL: cfg.NPSURL, Transport: SSE}
}

// Tool is a tool advertised by a server.
type Tool struct {
	Server      string
	Name        string
	Description string
	// InputSchema is the tool's JSON schema as advertised.
	InputSchema map[string]any
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used by the transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTransport overrides how transports are built for servers.
func WithTransport(fn func(Server) (mcp.Transport, error)) Option {
	return func(c *Client) { c.transport = fn }
}

// Client is a multi-server MCP client. It is safe for concurrent use.
type Client struct {
	servers    []Server
	client     *mcp.Client
	httpClient *http.Client
	transport  func(Server) (mcp.Transport, error)

	mu       sync.Mutex
	sessions map[string]*mcp.ClientSession
	tools    []Tool
	byName   map[string]Tool
}

// NewClient returns a client for servers. No connection is made until
// tools are listed or called.
func NewClient(servers []Server, opts ...Option) *Client {
	c := &Client{
		servers:  slices.Clone(servers),
		client:   mcp.NewClient(&mcp.Implementation{Name: "agentbench", Version: "v1.0.0"}, nil),
		sessions: make(map[string]*mcp.ClientSession),
	}
	c.transport = c.defaultTransport
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) defaultTransport(s Server) (mcp.Transport, error) {
	switch s.Transport {
	case StreamableHTTP, "":
		return &mcp.StreamableClientTransport{Endpoint: s.URL, HTTPClient: c.httpClient}, nil
	case SSE:
		return &mcp.SSEClientTransport{Endpoint: s.URL, HTTPClient: c.httpClient}, nil
	default:
		return nil, fmt.Errorf("server %q: unsupported transport %q", s.Name, s.Transport)
	}
}

// session returns the open session to s, connecting when needed.
// The caller holds c.mu.
func (c *Client) session(ctx context.Context, s Server) (*mcp.ClientSession, error) {
	if cs, ok := c.sessions[s.Name]; ok {
		return cs, nil
	}
	t, err := c.transport(s)
	if err != nil {
		return nil, err
	}
	cs, err := c.client.Connect(ctx, t, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s at %s: %w", s.Name, s.URL, err)
	}
	c.sessions[s.Name] = cs
	return cs, nil
}

// ListTools returns the tools of every server. The first successful
// listing is cached; failures are not, so a later call retries.
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tools != nil {
		return slices.Clone(c.tools), nil
	}

	log := clog.FromContext(ctx)
	var tools []Tool
	byName := map[string]Tool{}
	for _, s := range c.servers {
		log.With("server", s.Name, "url", s.URL).Info("Connecting to MCP server")
		cs, err := c.session(ctx, s)
		if err != nil {
			return nil, err
		}
		res, err := cs.ListTools(ctx, &mcp.ListToolsParams{})
		if err != nil {
			return nil, fmt.Errorf("listing tools of %s: %w", s.Name, err)
		}
		for _, t := range res.Tools {
			if prev, dup := byName[t.Name]; dup {
				return nil, fmt.Errorf("tool %q is served by both %s and %s", t.Name, prev.Server, s.Name)
			}
			schema, err := schemaMap(t.InputSchema)
			if err != nil {
				return nil, fmt.Errorf("tool %s/%s: %w", s.Name, t.Name, err)
			}
			tool := Tool{Server: s.Name, Name: t.Name, Description: t.Description, InputSchema: schema}
			tools = append(tools, tool)
			byName[t.Name] = tool
		}
	}

	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}
	log.Infof("Available MCP tools: %v", names)

	if tools == nil {
		tools = []Tool{}
	}
	c.tools, c.byName = tools, byName
	return slices.Clone(tools), nil
}

// schemaMap converts an advertised input schema into a plain JSON object.
func schemaMap(schema any) (map[string]any, error) {
	if schema == nil {
		return nil, nil
	}
	b, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encoding input schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decoding input schema: %w", err)
	}
	return out, nil
}

// ErrToolFailed is wrapped by errors reported by the remote tool itself,
// as opposed to transport failures.
var ErrToolFailed = errors.New("tool reported an error")

// CallTool calls the named tool and returns its text content.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	if _, err := c.ListTools(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	tool, ok := c.byName[name]
	var cs *mcp.ClientSession
	var err error
	if ok {
		cs, err = c.session(ctx, c.server(tool.Server))
	}
	c.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}
	if err != nil {
		return "", err
	}

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("calling %s/%s: %w", tool.Server, name, err)
	}
	text := contentText(res.Content)
	if res.IsError {
		return "", fmt.Errorf("%w: %s/%s: %s", ErrToolFailed, tool.Server, name, text)
	}
	return text, nil
}

func (c *Client) server(name string) Server {
	for _, s := range c.servers {
		if s.Name == name {
			return s
		}
	}
	return Server{Name: name}
}

// contentText joins the text parts of a tool result. Other content types
// are summarized by their JSON encoding.
func contentText(content []mcp.Content) string {
	parts := make([]string, 0, len(content))
	for _, part := range content {
		switch p := part.(type) {
		case *mcp.TextContent:
			parts = append(parts, p.Text)
		default:
			b, err := json.Marshal(p)
			if err != nil {
				continue
			}
			parts = append(parts, string(b))
		}
	}
	return strings.Join(parts, "\n")
}

// Close closes every open session.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for name, cs := range c.sessions {
		if err := cs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", name, err))
		}
		delete(c.sessions, name)
	}
	return errors.Join(errs...)
}
