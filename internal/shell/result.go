package shell

import "encoding/json"

// Kind tags a Result.
type Kind string

const (
	KindText   Kind = "text"
	KindAction Kind = "action"
)

// Panel is a UI surface an action can open.
type Panel string

const (
	PanelLLMChat Panel = "llmchat"
	PanelNotes   Panel = "notes"
)

// ActionOpen is the only action verb.
const ActionOpen = "open"

// Result is the answer to one command: either text or an action.
// Title is only meaningful for the notes panel, where nil means "no title".
type Result struct {
	Kind   Kind
	Text   string
	Action string
	Panel  Panel
	Title  *string
}

// Text returns a text result.
func Text(s string) Result {
	return Result{Kind: KindText, Text: s}
}

// OpenLLMChat returns the action that opens the chat panel.
func OpenLLMChat() Result {
	return Result{Kind: KindAction, Action: ActionOpen, Panel: PanelLLMChat}
}

// OpenNotes returns the action that opens the notes panel, optionally on a note.
func OpenNotes(title *string) Result {
	return Result{Kind: KindAction, Action: ActionOpen, Panel: PanelNotes, Title: title}
}

type textJSON struct {
	Type Kind   `json:"type"`
	Text string `json:"text"`
}

type panelJSON struct {
	Type   Kind   `json:"type"`
	Action string `json:"action"`
	Panel  Panel  `json:"panel"`
}

type notesJSON struct {
	Type   Kind    `json:"type"`
	Action string  `json:"action"`
	Panel  Panel   `json:"panel"`
	Title  *string `json:"title"`
}

// MarshalJSON emits only the fields of the populated variant.
// The notes panel always carries "title", possibly null.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Kind != KindAction {
		return json.Marshal(textJSON{Type: KindText, Text: r.Text})
	}
	if r.Panel == PanelNotes {
		return json.Marshal(notesJSON{Type: r.Kind, Action: r.Action, Panel: r.Panel, Title: r.Title})
	}
	return json.Marshal(panelJSON{Type: r.Kind, Action: r.Action, Panel: r.Panel})
}

// MarshalYAML mirrors MarshalJSON for CLI yaml output.
func (r Result) MarshalYAML() (any, error) {
	if r.Kind != KindAction {
		return map[string]any{"type": KindText, "text": r.Text}, nil
	}
	m := map[string]any{"type": r.Kind, "action": r.Action, "panel": r.Panel}
	if r.Panel == PanelNotes {
		m["title"] = r.Title
	}
	return m, nil
}
