package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/niveshpath/client/src/logger"
	"github.com/niveshpath/client/src/models"
	"golang.org/x/time/rate"
)

const welcomeText = "Hello! I am NiveshPath's AI Financial Advisor. You can ask me questions about investments, savings, budgeting, or any financial topic."

const (
	newConversationTitle = "New Financial Chat"
	fallbackTitle        = "Financial Advice"
	apologyText          = "Sorry, I encountered an error processing your request. Please try again later."

	titleLimit = 20
	dateLayout = "02/01/2006"

	// User messages more than this many positions apart are treated as
	// separate conversations when rebuilding history from the backend.
	conversationGap = 4
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("a message is already in flight")
	ErrRateLimited  = errors.New("sending too fast, please wait a moment")
)

// Querier is the slice of the backend client the cache needs.
type Querier interface {
	ChatQuery(ctx context.Context, query string) (string, error)
	ChatHistory(ctx context.Context) ([]models.HistoryMessage, error)
}

// Mirror persists the transcript and history list locally on every mutation.
// *storage.Store satisfies it.
type Mirror interface {
	SaveChatMessages([]models.ChatMessage) error
	ChatMessages() ([]models.ChatMessage, error)
	SaveChatHistory([]models.Conversation) error
	ChatHistory() ([]models.Conversation, error)
}

// Cache holds the working transcript and the navigable history list. One
// send is in flight at a time; the optimistic user message is never rolled
// back, whatever the backend does.
type Cache struct {
	querier Querier
	mirror  Mirror
	limiter *rate.Limiter

	mu       sync.Mutex
	messages []models.ChatMessage
	history  []models.Conversation
	typing   bool
	sending  bool

	// newConversation marks a history entry that has not received its first
	// user message yet; that message supplies the entry's title.
	newConversation bool
}

func NewCache(querier Querier, mirror Mirror, limiter *rate.Limiter) *Cache {
	return &Cache{
		querier:  querier,
		mirror:   mirror,
		limiter:  limiter,
		messages: []models.ChatMessage{welcomeMessage()},
	}
}

func welcomeMessage() models.ChatMessage {
	return models.ChatMessage{ID: 1, Text: welcomeText, IsBot: true}
}

// Load populates the transcript and history, preferring the local mirror and
// falling back to the backend history endpoint. Failure to load history is
// not an error; the welcome transcript stands.
func (c *Cache) Load(ctx context.Context) {
	messages, errM := c.mirror.ChatMessages()
	history, errH := c.mirror.ChatHistory()
	if errM == nil && errH == nil && len(messages) > 0 {
		c.mu.Lock()
		c.messages = messages
		c.history = history
		c.mu.Unlock()
		return
	}

	raw, err := c.querier.ChatHistory(ctx)
	if err != nil {
		logger.L.Debug("Chat history fetch failed, keeping welcome transcript", "error", err)
		return
	}
	if len(raw) == 0 {
		return
	}

	formatted := make([]models.ChatMessage, len(raw))
	for i, msg := range raw {
		formatted[i] = models.ChatMessage{ID: i + 1, Text: msg.Body(), IsBot: msg.FromBot()}
	}
	conversations := conversationsFromHistory(raw, formatted)

	c.mu.Lock()
	c.messages = formatted
	c.history = conversations
	c.mu.Unlock()
	c.persist()
}

// conversationsFromHistory rebuilds the sidebar entries from a flat message
// log: the first user message titles the conversation, and a long gap
// between user messages starts a new entry.
func conversationsFromHistory(raw []models.HistoryMessage, formatted []models.ChatMessage) []models.Conversation {
	date := time.Now().Format(dateLayout)

	userIdx := make([]int, 0, len(raw))
	for i, msg := range raw {
		if !msg.FromBot() {
			userIdx = append(userIdx, i)
		}
	}

	if len(userIdx) == 0 {
		return []models.Conversation{{
			ID:       uuid.NewString(),
			Title:    fallbackTitle,
			Date:     date,
			Messages: formatted,
		}}
	}

	conversations := []models.Conversation{{
		ID:       uuid.NewString(),
		Title:    deriveTitle(raw[userIdx[0]].Body()),
		Date:     date,
		Messages: formatted,
	}}

	lastIdx := userIdx[0]
	for _, idx := range userIdx[1:] {
		if idx-lastIdx > conversationGap {
			conversations = append(conversations, models.Conversation{
				ID:       uuid.NewString(),
				Title:    deriveTitle(raw[idx].Body()),
				Date:     date,
				Messages: formatted[lastIdx : idx+1],
			})
		}
		lastIdx = idx
	}
	return conversations
}

func deriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) > titleLimit {
		return string(runes[:titleLimit]) + "..."
	}
	return text
}

// Messages returns a copy of the current transcript.
func (c *Cache) Messages() []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// History returns a copy of the conversation list, newest first.
func (c *Cache) History() []models.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Conversation, len(c.history))
	copy(out, c.history)
	return out
}

// Typing reports whether a reply is pending.
func (c *Cache) Typing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typing
}

// SendMessage appends the user message immediately, then asks the backend
// for a reply. Success appends the bot reply and refreshes the active
// history entry; failure appends a synthetic apology and returns the error.
// Either way exactly two messages are added.
func (c *Cache) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.limiter != nil && !c.limiter.Allow() {
		c.mu.Unlock()
		return ErrRateLimited
	}
	c.sending = true
	c.typing = true
	userMsg := models.ChatMessage{ID: len(c.messages) + 1, Text: text, IsBot: false}
	c.messages = append(c.messages, userMsg)
	c.mu.Unlock()
	c.persist()

	reply, err := c.querier.ChatQuery(ctx, text)

	c.mu.Lock()
	if err != nil {
		c.messages = append(c.messages, models.ChatMessage{ID: len(c.messages) + 1, Text: apologyText, IsBot: true})
		c.typing = false
		c.sending = false
		c.mu.Unlock()
		c.persist()
		return fmt.Errorf("failed to get a response: %w", err)
	}

	botMsg := models.ChatMessage{ID: len(c.messages) + 1, Text: reply, IsBot: true}
	c.messages = append(c.messages, botMsg)

	if len(c.history) > 0 {
		entry := &c.history[0]
		if c.newConversation {
			entry.Title = deriveTitle(text)
			entry.Messages = append(entry.Messages, userMsg, botMsg)
			c.newConversation = false
		} else {
			entry.Messages = make([]models.ChatMessage, len(c.messages))
			copy(entry.Messages, c.messages)
		}
	}
	c.typing = false
	c.sending = false
	c.mu.Unlock()
	c.persist()
	return nil
}

// LoadConversation replaces the transcript wholesale with a saved one,
// re-numbering ids by position.
func (c *Cache) LoadConversation(conv models.Conversation) {
	replacement := make([]models.ChatMessage, len(conv.Messages))
	for i, msg := range conv.Messages {
		replacement[i] = models.ChatMessage{ID: i + 1, Text: msg.Text, IsBot: msg.IsBot}
	}

	c.mu.Lock()
	c.messages = replacement
	c.newConversation = false
	c.mu.Unlock()
	c.persist()
}

// Clear resets the transcript to the welcome message only. The history list
// is untouched.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.messages = []models.ChatMessage{welcomeMessage()}
	c.newConversation = false
	c.mu.Unlock()
	c.persist()
}

// StartNew clears the transcript and prepends a fresh history entry whose
// title will be taken from the first message sent into it.
func (c *Cache) StartNew() {
	c.mu.Lock()
	c.messages = []models.ChatMessage{welcomeMessage()}
	c.history = append([]models.Conversation{{
		ID:       uuid.NewString(),
		Title:    newConversationTitle,
		Date:     time.Now().Format(dateLayout),
		Messages: []models.ChatMessage{welcomeMessage()},
	}}, c.history...)
	c.newConversation = true
	c.mu.Unlock()
	c.persist()
}

func (c *Cache) persist() {
	c.mu.Lock()
	messages := make([]models.ChatMessage, len(c.messages))
	copy(messages, c.messages)
	history := make([]models.Conversation, len(c.history))
	copy(history, c.history)
	c.mu.Unlock()

	if err := c.mirror.SaveChatMessages(messages); err != nil {
		logger.L.Warn("Failed to persist chat transcript", "error", err)
	}
	if err := c.mirror.SaveChatHistory(history); err != nil {
		logger.L.Warn("Failed to persist chat history", "error", err)
	}
}
