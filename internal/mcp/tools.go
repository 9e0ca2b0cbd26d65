package mcp

import "github.com/mark3labs/mcp-go/mcp"

var commandToolDef = mcp.NewTool("dashboard_command",
	mcp.WithDescription(`Run a dashboard shell command and return its result. Commands: llmchat | notes | notes new "Title" | notes open "Title" | history | weather | rss | help. Results are {"type":"text","text":...} or {"type":"action","action":"open","panel":...}.`),
	mcp.WithString("command", mcp.Required(), mcp.Description("The command line, e.g. `notes new Trip Plan`")),
)

var notesListToolDef = mcp.NewTool("notes_list",
	mcp.WithDescription("List all note titles, sorted."),
)

var notesOpenToolDef = mcp.NewTool("notes_open",
	mcp.WithDescription("Open a note, creating it with a heading when missing. Without a title, opens the most recently modified note or creates \"default\"."),
	mcp.WithString("title", mcp.Description("Note title; sanitized to a filesystem-safe name")),
)

var notesSaveToolDef = mcp.NewTool("notes_save",
	mcp.WithDescription("Overwrite a note with the given Markdown content."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Note title; sanitized to a filesystem-safe name")),
	mcp.WithString("content", mcp.Required(), mcp.Description("Full Markdown content")),
)

var notesRenderToolDef = mcp.NewTool("notes_render",
	mcp.WithDescription("Render a note to HTML. Same selection rules as notes_open."),
	mcp.WithString("title", mcp.Description("Note title")),
)

var chatSendToolDef = mcp.NewTool("chat_send",
	mcp.WithDescription("Send a message to the configured LLM and store both sides in the session transcript. Creates a session when session_id is omitted."),
	mcp.WithString("message", mcp.Required(), mcp.Description("User message")),
	mcp.WithString("session_id", mcp.Description("Existing or new session id")),
	mcp.WithString("system_prompt", mcp.Description("System prompt, applied only if the session has none")),
	mcp.WithString("model", mcp.Description("Model override")),
)

var chatHistoryToolDef = mcp.NewTool("chat_history",
	mcp.WithDescription("Return a session transcript. Unknown sessions return no messages."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
)

var chatSessionsToolDef = mcp.NewTool("chat_sessions",
	mcp.WithDescription("List stored chat sessions, most recently updated first."),
)

var weatherToolDef = mcp.NewTool("weather_current",
	mcp.WithDescription("Current weather for the configured city (cached for 20 minutes)."),
)

var rssToolDef = mcp.NewTool("rss_headlines",
	mcp.WithDescription("Headlines from the configured RSS feeds, deduplicated."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of items (default 15)")),
)
