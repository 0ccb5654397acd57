package mcp

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/vox-portal/internal/common"
	"github.com/bobmcallan/vox-portal/internal/config"
	"github.com/bobmcallan/vox-portal/internal/portal"
)

const instructions = "vox-portal exposes the data behind its three pages. " +
	"get_stock_chart and get_trending_stocks back the stock views, get_dog_images and " +
	"list_dog_breeds back the dog gallery, and voice_command interprets a spoken phrase " +
	"into the effects the browser would apply."

// Handler serves the portal tools over stateless streamable HTTP at /mcp.
type Handler struct {
	server     *mcpserver.MCPServer
	streamable *mcpserver.StreamableHTTPServer
}

// NewHandler registers the portal tools on a fresh MCP server.
func NewHandler(service *portal.Service, logger *common.Logger) *Handler {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	srv := mcpserver.NewMCPServer("vox-portal", config.Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithInstructions(instructions),
		mcpserver.WithHooks(toolHooks(logger)),
		mcpserver.WithRecovery(),
	)
	n := RegisterTools(srv, service)
	logger.Info().Int("tools", n).Msg("MCP tools registered")

	return &Handler{
		server:     srv,
		streamable: mcpserver.NewStreamableHTTPServer(srv, mcpserver.WithStateLess(true)),
	}
}

// toolHooks logs tool calls and protocol-level failures.
func toolHooks(logger *common.Logger) *mcpserver.Hooks {
	hooks := &mcpserver.Hooks{}
	hooks.AddBeforeCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest) {
		logger.Debug().Str("tool", req.Params.Name).Msg("MCP tool call")
	})
	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		logger.Warn().Str("method", string(method)).Err(err).Msg("MCP request failed")
	})
	return hooks
}

// Server exposes the MCP server for in-process tests.
func (h *Handler) Server() *mcpserver.MCPServer {
	return h.server
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.streamable.ServeHTTP(w, r)
}
