// Package mcp exposes the dashboard as MCP tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/shelldash/internal/chat"
	"github.com/hpungsan/shelldash/internal/dashboard"
	"github.com/hpungsan/shelldash/internal/errors"
	"github.com/hpungsan/shelldash/internal/rss"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	dash *dashboard.Dashboard
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(d *dashboard.Dashboard) *Handlers {
	return &Handlers{dash: d}
}

// CommandRequest represents the arguments for dashboard_command.
type CommandRequest struct {
	Command *string `json:"command"`
}

// TitleRequest represents the arguments for notes_open and notes_render.
type TitleRequest struct {
	Title *string `json:"title,omitempty"`
}

// SaveRequest represents the arguments for notes_save.
type SaveRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// SendRequest represents the arguments for chat_send.
type SendRequest struct {
	Message      *string `json:"message"`
	SessionID    string  `json:"session_id,omitempty"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
	Model        string  `json:"model,omitempty"`
}

// HistoryRequest represents the arguments for chat_history.
type HistoryRequest struct {
	SessionID string `json:"session_id"`
}

// RSSRequest represents the arguments for rss_headlines.
type RSSRequest struct {
	Limit int `json:"limit,omitempty"`
}

// decode unmarshals MCP request arguments into a typed struct.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, errors.NewInvalidRequest("marshal args: " + err.Error())
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, errors.NewInvalidRequest("unmarshal args: " + err.Error())
	}
	return result, nil
}

// HandleCommand handles the dashboard_command tool call.
func (h *Handlers) HandleCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CommandRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	if input.Command == nil {
		return errorResult(errors.NewInvalidRequest("command is required")), nil
	}
	return successResult(h.dash.Command(ctx, *input.Command))
}

// HandleNotesList handles the notes_list tool call.
func (h *Handlers) HandleNotesList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	titles, err := h.dash.Notes.List()
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"notes": titles})
}

// HandleNotesOpen handles the notes_open tool call.
func (h *Handlers) HandleNotesOpen(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TitleRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	note, err := h.dash.Notes.Open(input.Title)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(note)
}

// HandleNotesSave handles the notes_save tool call.
func (h *Handlers) HandleNotesSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SaveRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	if input.Title == nil || input.Content == nil {
		return errorResult(errors.NewInvalidRequest("title and content are required")), nil
	}
	out, err := h.dash.Notes.Save(*input.Title, *input.Content)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleNotesRender handles the notes_render tool call.
func (h *Handlers) HandleNotesRender(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TitleRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	out, err := h.dash.Notes.Render(input.Title)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleChatSend handles the chat_send tool call.
func (h *Handlers) HandleChatSend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SendRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	if input.Message == nil {
		return errorResult(errors.NewInvalidRequest("message is required")), nil
	}
	out, err := h.dash.SendChat(ctx, chat.SendInput{
		Message:      *input.Message,
		SessionID:    input.SessionID,
		SystemPrompt: input.SystemPrompt,
		Model:        input.Model,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleChatHistory handles the chat_history tool call.
func (h *Handlers) HandleChatHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	if input.SessionID == "" {
		return errorResult(errors.NewInvalidRequest("session_id is required")), nil
	}
	return successResult(h.dash.Chat.History(input.SessionID))
}

// HandleChatSessions handles the chat_sessions tool call.
func (h *Handlers) HandleChatSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := h.dash.Chat.Sessions()
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"sessions": sessions})
}

// HandleWeather handles the weather_current tool call.
func (h *Handlers) HandleWeather(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.dash.CurrentWeather(ctx))
}

// HandleRSS handles the rss_headlines tool call.
func (h *Handlers) HandleRSS(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RSSRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	limit := input.Limit
	if limit <= 0 {
		limit = rss.APILimit
	}
	return successResult(map[string]any{"items": h.dash.Headlines(ctx, limit)})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var dErr *errors.DashError
	if stderrors.As(err, &dErr) {
		errorObj := map[string]any{
			"code":    dErr.Code,
			"message": dErr.Message,
			"status":  dErr.Status,
		}
		if dErr.Code != errors.ErrInternal && dErr.Details != nil {
			errorObj["details"] = dErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
