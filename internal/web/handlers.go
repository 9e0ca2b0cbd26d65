// Package web serves the dashboard JSON API.
package web

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/hpungsan/shelldash/internal/chat"
	"github.com/hpungsan/shelldash/internal/dashboard"
	"github.com/hpungsan/shelldash/internal/errors"
	"github.com/hpungsan/shelldash/internal/rss"
)

const (
	maxBodyBytes = 1 << 20
	// maxNoteBytes bounds /api/notes/save, whose body carries a whole note.
	maxNoteBytes = 32 << 20
)

// Handlers contains HTTP route handlers for the API.
type Handlers struct {
	dash    *dashboard.Dashboard
	version string
	logger  *zap.Logger
}

type commandRequest struct {
	Command *string `json:"command"`
}

type sendRequest struct {
	Message      *string `json:"message"`
	SessionID    *string `json:"session_id"`
	SystemPrompt *string `json:"system_prompt"`
	Model        *string `json:"model"`
}

type saveRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// HandleCommand handles POST /api/command.
func (h *Handlers) HandleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := decodeBody(w, r, &req, maxBodyBytes); err != nil {
		h.renderError(w, err)
		return
	}
	if req.Command == nil {
		h.renderError(w, errors.NewInvalidRequest("command is required"))
		return
	}
	renderJSON(w, http.StatusOK, h.dash.Command(r.Context(), *req.Command))
}

// HandleLLMSend handles POST /api/llm/send.
func (h *Handlers) HandleLLMSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := decodeBody(w, r, &req, maxBodyBytes); err != nil {
		h.renderError(w, err)
		return
	}
	if req.Message == nil {
		h.renderError(w, errors.NewInvalidRequest("message is required"))
		return
	}

	out, err := h.dash.SendChat(r.Context(), chat.SendInput{
		Message:      *req.Message,
		SessionID:    deref(req.SessionID),
		SystemPrompt: deref(req.SystemPrompt),
		Model:        deref(req.Model),
	})
	if err != nil {
		h.renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleLLMHistory handles GET /api/llm/history?session_id=.
func (h *Handlers) HandleLLMHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("session_id") {
		h.renderError(w, errors.NewInvalidRequest("session_id is required"))
		return
	}
	renderJSON(w, http.StatusOK, h.dash.Chat.History(q.Get("session_id")))
}

// HandleLLMSessions handles GET /api/llm/sessions.
func (h *Handlers) HandleLLMSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.dash.Chat.Sessions()
	if err != nil {
		h.renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// HandleNotesList handles GET /api/notes/list.
func (h *Handlers) HandleNotesList(w http.ResponseWriter, r *http.Request) {
	titles, err := h.dash.Notes.List()
	if err != nil {
		h.renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{"notes": titles})
}

// HandleNotesOpen handles GET /api/notes/open?title=.
func (h *Handlers) HandleNotesOpen(w http.ResponseWriter, r *http.Request) {
	note, err := h.dash.Notes.Open(queryString(r, "title"))
	if err != nil {
		h.renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, note)
}

// HandleNotesSave handles POST /api/notes/save.
func (h *Handlers) HandleNotesSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeBody(w, r, &req, maxNoteBytes); err != nil {
		h.renderError(w, err)
		return
	}
	if req.Title == nil || req.Content == nil {
		h.renderError(w, errors.NewInvalidRequest("title and content are required"))
		return
	}

	out, err := h.dash.Notes.Save(*req.Title, *req.Content)
	if err != nil {
		h.renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleNotesRender handles GET /api/notes/render?title=.
func (h *Handlers) HandleNotesRender(w http.ResponseWriter, r *http.Request) {
	out, err := h.dash.Notes.Render(queryString(r, "title"))
	if err != nil {
		h.renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleWeather handles GET /api/weather/current.
func (h *Handlers) HandleWeather(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, h.dash.CurrentWeather(r.Context()))
}

// HandleRSS handles GET /api/rss.
func (h *Handlers) HandleRSS(w http.ResponseWriter, r *http.Request) {
	items := h.dash.Headlines(r.Context(), rss.APILimit)
	renderJSON(w, http.StatusOK, map[string]any{"items": items})
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{"status": "ok", "version": h.version})
}

// renderError writes the JSON error envelope. Non-coded errors become INTERNAL.
func (h *Handlers) renderError(w http.ResponseWriter, err error) {
	var dErr *errors.DashError
	if !stderrors.As(err, &dErr) {
		dErr = errors.NewInternal(err)
	}
	if dErr.Status >= 500 {
		h.logger.Error("request failed", zap.String("code", string(dErr.Code)), zap.Error(err))
	}
	renderJSON(w, dErr.Status, map[string]any{
		"error": map[string]any{
			"code":    string(dErr.Code),
			"message": dErr.Message,
			"status":  dErr.Status,
		},
	})
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeBody decodes a JSON request body of at most limit bytes into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case stderrors.As(err, &maxErr):
			return errors.NewInvalidRequest("request body too large")
		case stderrors.Is(err, io.EOF):
			return errors.NewInvalidRequest("request body is empty")
		default:
			return errors.NewInvalidRequest("malformed JSON: " + err.Error())
		}
	}
	return nil
}

// queryString returns a pointer to the query parameter if non-empty, nil otherwise.
func queryString(r *http.Request, name string) *string {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
