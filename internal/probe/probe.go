// Package probe verifies that a provisioned MCP server actually speaks the
// protocol. It launches the registered command over stdio, performs the MCP
// handshake, and lists the tools the server advertises. The check command
// uses it behind the --live flag.
package probe

import (
	"context"
	"fmt"
	"time"

	"superclaude/internal/config"
	"superclaude/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// DefaultInitTimeout bounds subprocess startup plus the MCP handshake.
const DefaultInitTimeout = 10 * time.Second

// Report summarizes a successful probe.
type Report struct {
	Server  string
	Package string
	Tools   []string
}

// Verify launches the server described by def, initializes the MCP protocol
// and lists its tools. The subprocess is terminated before Verify returns.
func Verify(ctx context.Context, def config.ServerDefinition, clientVersion string) (*Report, error) {
	var envStrings []string
	for k, v := range def.Env {
		envStrings = append(envStrings, fmt.Sprintf("%s=%s", k, v))
	}

	logging.Debug("Probe", "Launching %s %v for server %s", def.Command, def.Args, def.Name)
	mcpClient, err := client.NewStdioMCPClient(def.Command, envStrings, def.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to start server %s: %w", def.Name, err)
	}
	defer func() {
		if closeErr := mcpClient.Close(); closeErr != nil {
			logging.Debug("Probe", "Error closing client for %s: %v", def.Name, closeErr)
		}
	}()

	initCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, DefaultInitTimeout)
		defer cancel()
	}

	_, err = mcpClient.Initialize(initCtx, mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: "2024-11-05",
			ClientInfo: mcp.Implementation{
				Name:    "superclaude",
				Version: clientVersion,
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("MCP handshake with %s failed: %w", def.Name, err)
	}

	result, err := mcpClient.ListTools(initCtx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("listing tools of %s: %w", def.Name, err)
	}

	report := &Report{Server: def.Name, Package: def.Package}
	for _, tool := range result.Tools {
		report.Tools = append(report.Tools, tool.Name)
	}
	logging.Info("Probe", "Server %s answered with %d tools", def.Name, len(report.Tools))
	return report, nil
}
