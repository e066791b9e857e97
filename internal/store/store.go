// Package store owns the in-memory conversation state: the chat list, the
// active chat and its messages. It is the only component that mutates that
// state. Every command is a single atomic transition; network calls run
// outside the lock so overlapping in-flight requests cannot observe a
// half-applied update.
package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"plantid/internal/api"
	"plantid/internal/models"
)

// DefaultChatTitle is assigned when a chat is created without an explicit
// title.
const DefaultChatTitle = "New Plant Recognition"

// State is a value snapshot of the store, safe to hand to a view layer.
type State struct {
	Chats         []models.Chat
	CurrentChatID string
	Messages      []models.Message
	Loading       bool
	Err           string
}

// Store serializes all state transitions behind one mutex. The error field is
// sticky: each failure overwrites it, success never clears it; callers reset
// it with ClearError.
type Store struct {
	client *api.Client

	mu            sync.Mutex
	chats         []models.Chat
	currentChatID string
	messages      []models.Message
	loading       bool
	errMsg        string
}

// New creates a store backed by the given service client.
func New(client *api.Client) *Store {
	return &Store{client: client}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Chats:         append([]models.Chat(nil), s.chats...),
		CurrentChatID: s.currentChatID,
		Messages:      append([]models.Message(nil), s.messages...),
		Loading:       s.loading,
		Err:           s.errMsg,
	}
}

// CurrentChatID returns the active chat id, or "" when none is selected.
func (s *Store) CurrentChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentChatID
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Store) fail(err error) {
	s.mu.Lock()
	s.loading = false
	s.errMsg = errorMessage(err)
	s.mu.Unlock()
}

func errorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// LoadChats fetches all chats and replaces the list. The previous list stays
// untouched on failure.
func (s *Store) LoadChats(ctx context.Context) error {
	s.setLoading(true)
	chats, err := s.client.ListChats(ctx)
	if err != nil {
		s.fail(err)
		return err
	}
	s.mu.Lock()
	s.chats = chats
	s.loading = false
	s.mu.Unlock()
	return nil
}

// CreateChat persists a new chat, prepends it to the list and makes it
// current in one transition. The created chat is returned so callers can
// append messages immediately.
func (s *Store) CreateChat(ctx context.Context, title string) (models.Chat, error) {
	if title == "" {
		title = DefaultChatTitle
	}
	s.setLoading(true)
	chat, err := s.client.CreateChat(ctx, title)
	if err != nil {
		s.fail(err)
		return models.Chat{}, err
	}
	s.mu.Lock()
	s.chats = append([]models.Chat{chat}, s.chats...)
	s.currentChatID = chat.ID
	s.messages = nil
	s.loading = false
	s.mu.Unlock()
	return chat, nil
}

// SelectChat makes id the active chat, clears the visible messages, and
// fetches the chat's history. Ids are not validated against the chat list;
// the view layer only offers known ids.
func (s *Store) SelectChat(ctx context.Context, id string) error {
	s.mu.Lock()
	s.currentChatID = id
	s.messages = nil
	s.mu.Unlock()
	return s.LoadMessages(ctx, id)
}

// LoadMessages fetches the history for id and replaces the message list.
// A response that arrives after the active chat changed again is discarded,
// so a slow fetch can never clobber another chat's history.
func (s *Store) LoadMessages(ctx context.Context, id string) error {
	s.setLoading(true)
	msgs, err := s.client.ListMessages(ctx, id)
	if err != nil {
		s.fail(err)
		return err
	}
	s.mu.Lock()
	s.loading = false
	if s.currentChatID == id {
		s.messages = msgs
	}
	s.mu.Unlock()
	return nil
}

// UpdateChatTitle renames a chat. An empty title (after trimming) is rejected
// locally without a network call. If the chat disappeared mid-flight the
// server's answer is dropped by id match rather than treated as an error.
func (s *Store) UpdateChatTitle(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		err := &api.Error{Message: "chat title cannot be empty", Status: api.StatusLocal}
		s.mu.Lock()
		s.errMsg = err.Message
		s.mu.Unlock()
		return err
	}
	s.setLoading(true)
	updated, err := s.client.UpdateChat(ctx, id, title)
	if err != nil {
		s.fail(err)
		return err
	}
	s.mu.Lock()
	s.loading = false
	for i := range s.chats {
		if s.chats[i].ID == updated.ID {
			s.chats[i] = updated
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// DeleteChat removes a chat. Deleting the active chat also clears the
// selection and the visible messages.
func (s *Store) DeleteChat(ctx context.Context, id string) error {
	s.setLoading(true)
	if err := s.client.DeleteChat(ctx, id); err != nil {
		s.fail(err)
		return err
	}
	s.mu.Lock()
	filtered := s.chats[:0:0]
	for _, c := range s.chats {
		if c.ID != id {
			filtered = append(filtered, c)
		}
	}
	s.chats = filtered
	if s.currentChatID == id {
		s.currentChatID = ""
		s.messages = nil
	}
	s.loading = false
	s.mu.Unlock()
	return nil
}

// AddMessage persists a draft and appends the stored message to the visible
// history. It does not toggle the loading flag; senders manage their own busy
// indicators. The matching chat's UpdatedAt is refreshed with local time
// until the next full fetch.
func (s *Store) AddMessage(ctx context.Context, chatID string, draft models.Draft) (models.Message, error) {
	msg, err := s.client.AddMessage(ctx, chatID, draft)
	if err != nil {
		s.mu.Lock()
		s.errMsg = errorMessage(err)
		s.mu.Unlock()
		return models.Message{}, err
	}
	s.mu.Lock()
	if s.currentChatID == chatID {
		s.messages = append(s.messages, msg)
	}
	now := time.Now()
	for i := range s.chats {
		if s.chats[i].ID == chatID {
			s.chats[i].UpdatedAt = now
			s.chats[i].MessageCount++
			break
		}
	}
	s.mu.Unlock()
	return msg, nil
}

// ClearError resets the sticky error.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}
