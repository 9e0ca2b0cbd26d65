package chat

import (
	"context"

	"go.uber.org/zap"

	"github.com/hpungsan/shelldash/internal/config"
	"github.com/hpungsan/shelldash/internal/errors"
	"github.com/hpungsan/shelldash/internal/logging"
)

// DefaultModel is used when neither the request nor the config names a model.
const DefaultModel = "gpt-4o-mini"

// CompletionRequest is what the service hands to a Completer.
type CompletionRequest struct {
	Messages []Message
	Model    string
	APIKey   string
	BaseURL  string
}

// Completer produces one assistant reply for a transcript.
// Implementations must degrade failures into the returned string.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) string
}

// SendInput is the input of one chat exchange. Empty optional fields mean absent.
type SendInput struct {
	Message      string `json:"message"`
	SessionID    string `json:"session_id,omitempty"`
	SystemPrompt string `json:"system_prompt,omitempty"`
	Model        string `json:"model,omitempty"`
}

// SendOutput is the result of one chat exchange.
type SendOutput struct {
	SessionID string    `json:"session_id"`
	Reply     string    `json:"reply"`
	Messages  []Message `json:"messages"`
}

// Service runs chat exchanges against a Store.
type Service struct {
	store     *Store
	completer Completer
	locks     *keyedMutex
	logger    *zap.Logger
}

// NewService creates a Service. A nil logger disables logging.
func NewService(store *Store, completer Completer, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		completer: completer,
		locks:     newKeyedMutex(),
		logger:    logging.OrNop(logger),
	}
}

// Store returns the underlying session store.
func (s *Service) Store() *Store {
	return s.store
}

// History returns the transcript for a session, empty when it is unknown or unreadable.
func (s *Service) History(sessionID string) *Document {
	doc, err := s.store.Load(sessionID)
	if err != nil {
		if errors.IsReadKind(err, errors.ReadCorrupt) || errors.IsReadKind(err, errors.ReadIO) {
			s.logger.Warn("chat session unreadable, treating as empty",
				zap.String("session_id", sessionID), zap.Error(err))
		}
		return &Document{SessionID: sessionID, Messages: []Message{}}
	}
	return doc
}

// Sessions lists stored sessions, newest first.
func (s *Service) Sessions() ([]Summary, error) {
	return s.store.List()
}

// Send appends the user message, asks the completer for a reply, appends it,
// and persists the session. Every successful call adds exactly two messages.
func (s *Service) Send(ctx context.Context, in SendInput, cfg *config.Config) (*SendOutput, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}

	sessionID := in.SessionID
	if sessionID == "" {
		id, err := s.store.NewSession()
		if err != nil {
			return nil, err
		}
		sessionID = id
		s.logger.Debug("chat session created", zap.String("session_id", sessionID))
	} else if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	messages := s.History(sessionID).Messages
	messages = WithSystemPrompt(messages, in.SystemPrompt)
	messages = append(messages, Message{Role: RoleUser, Content: in.Message})

	model := resolveModel(in.Model, cfg.OpenAI.Model)
	reply := s.completer.Complete(ctx, CompletionRequest{
		Messages: messages,
		Model:    model,
		APIKey:   cfg.OpenAI.APIKey,
		BaseURL:  cfg.OpenAI.BaseURL,
	})
	messages = append(messages, Message{Role: RoleAssistant, Content: reply})

	if err := s.store.Save(&Document{SessionID: sessionID, Messages: messages}); err != nil {
		return nil, err
	}

	s.logger.Debug("chat exchange stored",
		zap.String("session_id", sessionID),
		zap.String("model", model),
		zap.Int("messages", len(messages)))

	return &SendOutput{
		SessionID: sessionID,
		Reply:     reply,
		Messages:  messages,
	}, nil
}

// resolveModel picks the request override, then the configured model, then DefaultModel.
func resolveModel(override, configured string) string {
	if override != "" {
		return override
	}
	if configured != "" {
		return configured
	}
	return DefaultModel
}
