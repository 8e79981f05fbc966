/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package mcptools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"chainguard.dev/agentbench/agents/agenttrace"
	"chainguard.dev/agentbench/agents/toolcall"
	"github.com/google/go-cmp/cmp"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type askArgs struct {
	RepoName string `json:"repoName" jsonschema:"GitHub repository, owner/repo"`
	Question string `json:"question" jsonschema:"the question to ask"`
}

type docsArgs struct {
	Library string `json:"library"`
}

func deepwikiServer() *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{Name: "deepwiki", Version: "v0.0.1"}, nil)
	mcp.AddTool(s, &mcp.Tool{Name: "ask_question", Description: "Ask a question about a repository"},
		func(_ context.Context, _ *mcp.CallToolRequest, in askArgs) (*mcp.CallToolResult, any, error) {
			if !strings.Contains(in.RepoName, "/") {
				return &mcp.CallToolResult{
					IsError: true,
					Content: []mcp.Content{&mcp.TextContent{Text: "repoName must be owner/repo"}},
				}, nil, nil
			}
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("%s: %s", in.RepoName, in.Question)}},
			}, nil, nil
		})
	return s
}

func context7Server() *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{Name: "context7", Version: "v0.0.1"}, nil)
	mcp.AddTool(s, &mcp.Tool{Name: "get-library-docs", Description: "Fetch library docs"},
		func(_ context.Context, _ *mcp.CallToolRequest, in docsArgs) (*mcp.CallToolResult, any, error) {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: "docs for " + in.Library}},
			}, nil, nil
		})
	return s
}

// inMemory connects each named server through in-memory transports and
// counts connections.
func inMemory(t *testing.T, servers map[string]*mcp.Server, connects *atomic.Int32) Option {
	t.Helper()
	return WithTransport(func(s Server) (mcp.Transport, error) {
		connects.Add(1)
		srv, ok := servers[s.Name]
		if !ok {
			return nil, fmt.Errorf("no server %q", s.Name)
		}
		ct, st := mcp.NewInMemoryTransports()
		if _, err := srv.Connect(context.Background(), st, nil); err != nil {
			return nil, err
		}
		return ct, nil
	})
}

var research = []Server{{Name: "deepwiki"}, {Name: "context7"}}

func TestListToolsCached(t *testing.T) {
	var connects atomic.Int32
	c := NewClient(research, inMemory(t, map[string]*mcp.Server{
		"deepwiki": deepwikiServer(),
		"context7": context7Server(),
	}, &connects))
	t.Cleanup(func() { c.Close() })

	ctx := context.Background()
	for range 3 {
		tools, err := c.ListTools(ctx)
		if err != nil {
			t.Fatalf("ListTools: %v", err)
		}
		var names []string
		for _, tool := range tools {
			names = append(names, tool.Server+"/"+tool.Name)
		}
		if diff := cmp.Diff([]string{"deepwiki/ask_question", "context7/get-library-docs"}, names); diff != "" {
			t.Errorf("tools: (-want +got):\n%s", diff)
		}
	}
	if got := connects.Load(); got != 2 {
		t.Errorf("connections: got = %d, wanted = 2", got)
	}

	tools, _ := c.ListTools(ctx)
	props, _ := tools[0].InputSchema["properties"].(map[string]any)
	if _, ok := props["repoName"]; !ok {
		t.Errorf("ask_question schema: got = %v, wanted a repoName property", tools[0].InputSchema)
	}
}

func TestListToolsRetriesAfterFailure(t *testing.T) {
	var connects atomic.Int32
	servers := map[string]*mcp.Server{"deepwiki": deepwikiServer()}
	c := NewClient(research, inMemory(t, servers, &connects))
	t.Cleanup(func() { c.Close() })

	if _, err := c.ListTools(context.Background()); err == nil || !strings.Contains(err.Error(), `no server "context7"`) {
		t.Fatalf("ListTools: got = %v, wanted connection error", err)
	}

	servers["context7"] = context7Server()
	tools, err := c.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools after recovery: %v", err)
	}
	if len(tools) != 2 {
		t.Errorf("tools: got = %d, wanted = 2", len(tools))
	}
	// The deepwiki session survives the failed attempt.
	if got := connects.Load(); got != 3 {
		t.Errorf("connections: got = %d, wanted = 3", got)
	}
}

func TestDuplicateToolNames(t *testing.T) {
	var connects atomic.Int32
	c := NewClient([]Server{{Name: "a"}, {Name: "b"}}, inMemory(t, map[string]*mcp.Server{
		"a": deepwikiServer(),
		"b": deepwikiServer(),
	}, &connects))
	t.Cleanup(func() { c.Close() })

	if _, err := c.ListTools(context.Background()); err == nil || !strings.Contains(err.Error(), "served by both a and b") {
		t.Errorf("ListTools: got = %v, wanted duplicate error", err)
	}
}

func TestCallTool(t *testing.T) {
	var connects atomic.Int32
	c := NewClient(research, inMemory(t, map[string]*mcp.Server{
		"deepwiki": deepwikiServer(),
		"context7": context7Server(),
	}, &connects))
	t.Cleanup(func() { c.Close() })
	ctx := context.Background()

	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		want     string
		wantErr  string
		toolFail bool
	}{{
		name: "deepwiki",
		tool: "ask_question",
		args: map[string]any{"repoName": "redis/redis", "question": "why refuse connections?"},
		want: "redis/redis: why refuse connections?",
	}, {
		name: "context7",
		tool: "get-library-docs",
		args: map[string]any{"library": "/redis/go-redis"},
		want: "docs for /redis/go-redis",
	}, {
		name:     "tool error",
		tool:     "ask_question",
		args:     map[string]any{"repoName": "redis", "question": "?"},
		wantErr:  "repoName must be owner/repo",
		toolFail: true,
	}, {
		name:    "unknown tool",
		tool:    "read_wiki_contents",
		wantErr: `unknown tool "read_wiki_contents"`,
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.CallTool(ctx, tt.tool, tt.args)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("CallTool: got = %v, wanted error containing %q", err, tt.wantErr)
				}
				if got := errors.Is(err, ErrToolFailed); got != tt.toolFail {
					t.Errorf("errors.Is(ErrToolFailed): got = %v, wanted = %v", got, tt.toolFail)
				}
				return
			}
			if err != nil {
				t.Fatalf("CallTool: %v", err)
			}
			if got != tt.want {
				t.Errorf("CallTool: got = %q, wanted = %q", got, tt.want)
			}
		})
	}
}

func TestProviderRecordsToolCalls(t *testing.T) {
	var connects atomic.Int32
	c := NewClient(research, inMemory(t, map[string]*mcp.Server{
		"deepwiki": deepwikiServer(),
		"context7": context7Server(),
	}, &connects))
	t.Cleanup(func() { c.Close() })
	ctx := context.Background()

	tools, err := Provider[string](c).Tools(ctx)
	if err != nil {
		t.Fatalf("Tools: %v", err)
	}
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	slices.Sort(names)
	if diff := cmp.Diff([]string{"ask_question", "get-library-docs"}, names); diff != "" {
		t.Errorf("tools: (-want +got):\n%s", diff)
	}
	if got := tools["ask_question"].Def.JSONSchema()["type"]; got != "object" {
		t.Errorf("schema type: got = %v, wanted = object", got)
	}

	var traced *agenttrace.Trace[string]
	ctx = agenttrace.WithTracer(ctx, agenttrace.ByCode(func(tr *agenttrace.Trace[string]) { traced = tr }))
	tr := agenttrace.StartTrace[string](ctx, "diagnose")

	ask := tools["ask_question"]
	resp := ask.Handler(ctx, toolcall.ToolCall{ID: "1", Name: "ask_question", Args: map[string]any{"repoName": "redis/redis", "question": "q"}}, tr, nil)
	if diff := cmp.Diff(map[string]any{"content": "redis/redis: q"}, resp); diff != "" {
		t.Errorf("response: (-want +got):\n%s", diff)
	}
	resp = ask.Handler(ctx, toolcall.ToolCall{ID: "2", Name: "ask_question", Args: map[string]any{"repoName": "redis", "question": "q"}}, tr, nil)
	if msg, _ := resp["error"].(string); !strings.Contains(msg, "repoName must be owner/repo") {
		t.Errorf("error response: got = %v", resp)
	}
	tr.Complete("done", nil)

	if len(traced.ToolCalls) != 2 {
		t.Fatalf("tool calls: got = %d, wanted = 2", len(traced.ToolCalls))
	}
	if traced.ToolCalls[0].Error != nil || traced.ToolCalls[1].Error == nil {
		t.Errorf("tool call errors: got = %v, %v, wanted = nil, error", traced.ToolCalls[0].Error, traced.ToolCalls[1].Error)
	}
}

func TestStreamableHTTP(t *testing.T) {
	srv := httptest.NewServer(mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return context7Server()
	}, nil))
	t.Cleanup(srv.Close)

	c := NewClient([]Server{{Name: "context7", URL: srv.URL, Transport: StreamableHTTP}}, WithHTTPClient(srv.Client()))
	t.Cleanup(func() { c.Close() })

	got, err := c.CallTool(context.Background(), "get-library-docs", map[string]any{"library": "/gin-gonic/gin"})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if got != "docs for /gin-gonic/gin" {
		t.Errorf("CallTool: got = %q, wanted = %q", got, "docs for /gin-gonic/gin")
	}
}

func TestUnsupportedTransport(t *testing.T) {
	c := NewClient([]Server{{Name: "x", URL: "ws://localhost", Transport: "websocket"}})
	if _, err := c.ListTools(context.Background()); err == nil || !strings.Contains(err.Error(), `unsupported transport "websocket"`) {
		t.Errorf("ListTools: got = %v, wanted unsupported transport error", err)
	}
}
