package mcp

import (
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hpungsan/shelldash/internal/dashboard"
	"github.com/hpungsan/shelldash/internal/logging"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"dashboard_command": {
		def:     commandToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCommand },
	},
	"notes_list": {
		def:     notesListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNotesList },
	},
	"notes_open": {
		def:     notesOpenToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNotesOpen },
	},
	"notes_save": {
		def:     notesSaveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNotesSave },
	},
	"notes_render": {
		def:     notesRenderToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNotesRender },
	},
	"chat_send": {
		def:     chatSendToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleChatSend },
	},
	"chat_history": {
		def:     chatHistoryToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleChatHistory },
	},
	"chat_sessions": {
		def:     chatSessionsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleChatSessions },
	},
	"weather_current": {
		def:     weatherToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleWeather },
	},
	"rss_headlines": {
		def:     rssToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRSS },
	},
}

// AllToolNames returns all tool names, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates an MCP server exposing the dashboard.
// Tools listed in the config's disabled_tools are not registered.
func NewServer(d *dashboard.Dashboard, version string, logger *zap.Logger) *server.MCPServer {
	logger = logging.OrNop(logger)
	s := server.NewMCPServer(
		"shelldash",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(d)

	cfg := d.Config.Current()
	if unknown := ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("unknown tools in disabled_tools", zap.Strings("tools", unknown))
	}
	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for _, name := range AllToolNames() {
		if disabled[name] {
			logger.Debug("tool disabled", zap.String("tool", name))
			continue
		}
		entry := toolRegistry[name]
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(d *dashboard.Dashboard, version string, logger *zap.Logger) error {
	return server.ServeStdio(NewServer(d, version, logger))
}
