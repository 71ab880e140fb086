// Package mcptool exposes tools served over the Model Context Protocol
// as an engine.ToolBackend. One client speaks to one MCP server, over
// streamable HTTP or a spawned stdio subprocess.
package mcptool

import (
	"context"
	"fmt"
	"os"
	"sync"

	"vibeagent/internal/engine"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

const protocolVersion = "2025-06-18"

// Config selects the server and transport. ServerURL takes precedence;
// when it is empty, Command is spawned and spoken to over stdio.
type Config struct {
	ServerURL string
	Command   string
	Args      []string
	Env       map[string]string

	ClientName    string
	ClientVersion string
}

// Client is an engine.ToolBackend backed by a single MCP server.
// Connect is single-flight; both ListTools and Call connect lazily so
// the agent can start before the server is reachable.
type Client struct {
	cfg Config

	mu        sync.Mutex
	mcpClient *client.Client
	connected bool
	closed    bool
}

func New(cfg Config) *Client {
	if cfg.ClientName == "" {
		cfg.ClientName = "vibeagent"
	}
	if cfg.ClientVersion == "" {
		cfg.ClientVersion = "1.0.0"
	}
	return &Client{cfg: cfg}
}

// Connect dials the server, starts the transport and runs the MCP
// initialize handshake. Calling it again after success is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked(ctx)
}

func (c *Client) connectLocked(ctx context.Context) error {
	if c.closed {
		return fmt.Errorf("mcp client is closed")
	}
	if c.connected {
		return nil
	}

	mcpClient, err := c.dial(ctx)
	if err != nil {
		return fmt.Errorf("mcp connect: %w", err)
	}

	initReq := mcptypes.InitializeRequest{
		Params: mcptypes.InitializeParams{
			ProtocolVersion: protocolVersion,
			Capabilities:    mcptypes.ClientCapabilities{},
			ClientInfo: mcptypes.Implementation{
				Name:    c.cfg.ClientName,
				Version: c.cfg.ClientVersion,
			},
		},
	}
	if _, err := mcpClient.Initialize(ctx, initReq); err != nil {
		_ = mcpClient.Close()
		return fmt.Errorf("mcp initialize: %w", err)
	}

	c.mcpClient = mcpClient
	c.connected = true
	return nil
}

func (c *Client) dial(ctx context.Context) (*client.Client, error) {
	if c.cfg.ServerURL != "" {
		var opts []transport.StreamableHTTPCOption
		if len(c.cfg.Env) > 0 {
			opts = append(opts, transport.WithHTTPHeaders(c.cfg.Env))
		}
		mcpClient, err := client.NewStreamableHttpClient(c.cfg.ServerURL, opts...)
		if err != nil {
			return nil, err
		}
		if err := mcpClient.GetTransport().Start(ctx); err != nil {
			return nil, fmt.Errorf("start http transport: %w", err)
		}
		return mcpClient, nil
	}

	if c.cfg.Command == "" {
		return nil, fmt.Errorf("neither server URL nor command configured")
	}
	env := os.Environ()
	for k, v := range c.cfg.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return client.NewStdioMCPClientWithOptions(c.cfg.Command, env, c.cfg.Args)
}

// ListTools implements engine.ToolBackend.
func (c *Client) ListTools(ctx context.Context) ([]engine.ToolSchema, error) {
	c.mu.Lock()
	if err := c.connectLocked(ctx); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	mcpClient := c.mcpClient
	c.mu.Unlock()

	result, err := mcpClient.ListTools(ctx, mcptypes.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("mcp list tools: %w", err)
	}
	return SchemasFromTools(result.Tools)
}

// Call implements engine.ToolBackend. A result the server marks as an
// error comes back as a Go error so the executor records it per call.
func (c *Client) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	c.mu.Lock()
	if err := c.connectLocked(ctx); err != nil {
		c.mu.Unlock()
		return "", err
	}
	mcpClient := c.mcpClient
	c.mu.Unlock()

	result, err := mcpClient.CallTool(ctx, mcptypes.CallToolRequest{
		Params: mcptypes.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		return "", fmt.Errorf("mcp call %s: %w", name, err)
	}

	content := ResultText(result)
	if result.IsError {
		return "", fmt.Errorf("tool %s reported an error: %s", name, content)
	}
	return content, nil
}

// Close shuts down the transport. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.connected = false
	if c.mcpClient == nil {
		return nil
	}
	err := c.mcpClient.Close()
	c.mcpClient = nil
	return err
}
