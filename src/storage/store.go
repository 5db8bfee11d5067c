package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/niveshpath/client/src/logger"
	"github.com/niveshpath/client/src/models"
	"github.com/niveshpath/client/src/security"
	_ "modernc.org/sqlite"
)

// Fixed keys of the persisted local state. These mirror the browser client's
// localStorage entries one-to-one.
const (
	KeyToken               = "token"
	KeyTheme               = "niveshpath-theme"
	KeyOnboardingCompleted = "onboarding_completed"
	KeyChatMessages        = "chatMessages"
	KeyChatHistory         = "chatHistory"
)

var ErrNotFound = errors.New("state key not found")

// Store is the client's persisted local state: a single key/value table in a
// sqlite file, read at startup and written on every relevant mutation. The
// credential token is encrypted at rest; everything else is plain text or a
// JSON blob.
type Store struct {
	db     *sql.DB
	sealer *security.Sealer
}

func NewStore(databasePath string, sealer *security.Sealer) (*Store, error) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database at %s: %w", databasePath, err)
	}

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS app_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(createTableStatement); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create app_state table: %w", err)
	}

	if logger.L != nil {
		logger.L.Info("Local state store ready", "path", databasePath)
	}
	return &Store{db: db, sealer: sealer}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the raw stored value for key, or ErrNotFound.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read state key %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write state key %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM app_state WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete state key %q: %w", key, err)
	}
	return nil
}

// SetToken seals the credential and persists it.
func (s *Store) SetToken(token string) error {
	sealed, err := s.sealer.Seal(token)
	if err != nil {
		return fmt.Errorf("failed to seal credential: %w", err)
	}
	return s.Set(KeyToken, sealed)
}

// Token returns the stored credential, or ErrNotFound when no credential is
// persisted. A credential that cannot be unsealed is treated as absent after
// being deleted, so a corrupted state file degrades to "logged out" rather
// than a permanent error.
func (s *Store) Token() (string, error) {
	sealed, err := s.Get(KeyToken)
	if err != nil {
		return "", err
	}
	token, err := s.sealer.Open(sealed)
	if err != nil {
		if logger.L != nil {
			logger.L.Warn("Discarding unreadable stored credential", "error", err)
		}
		_ = s.Delete(KeyToken)
		return "", ErrNotFound
	}
	return token, nil
}

func (s *Store) DeleteToken() error {
	return s.Delete(KeyToken)
}

func (s *Store) SetOnboardingCompleted(done bool) error {
	value := "false"
	if done {
		value = "true"
	}
	return s.Set(KeyOnboardingCompleted, value)
}

// OnboardingCompleted reports the locally persisted flag; an absent key reads
// as false.
func (s *Store) OnboardingCompleted() bool {
	value, err := s.Get(KeyOnboardingCompleted)
	if err != nil {
		return false
	}
	return value == "true"
}

func (s *Store) SetTheme(theme string) error {
	return s.Set(KeyTheme, theme)
}

func (s *Store) Theme() string {
	value, err := s.Get(KeyTheme)
	if err != nil {
		return "light"
	}
	return value
}

func (s *Store) SaveChatMessages(messages []models.ChatMessage) error {
	return s.setJSON(KeyChatMessages, messages)
}

func (s *Store) ChatMessages() ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	if err := s.getJSON(KeyChatMessages, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *Store) SaveChatHistory(history []models.Conversation) error {
	return s.setJSON(KeyChatHistory, history)
}

func (s *Store) ChatHistory() ([]models.Conversation, error) {
	var history []models.Conversation
	if err := s.getJSON(KeyChatHistory, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *Store) setJSON(key string, v interface{}) error {
	blob, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal state key %q: %w", key, err)
	}
	return s.Set(key, string(blob))
}

func (s *Store) getJSON(key string, v interface{}) error {
	blob, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(blob), v); err != nil {
		return fmt.Errorf("failed to unmarshal state key %q: %w", key, err)
	}
	return nil
}
