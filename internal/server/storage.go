package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"plantid/internal/models"
)

// Storage persists chats and messages in sqlite.
type Storage struct {
	db *sql.DB
}

// OpenStorage opens (or creates) the database at path and applies the schema.
func OpenStorage(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS chats (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			chat_id TEXT NOT NULL,
			sender TEXT NOT NULL,
			kind TEXT NOT NULL,
			content TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			FOREIGN KEY(chat_id) REFERENCES chats(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chats_created_at ON chats(created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat_id ON messages(chat_id, timestamp);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error { return s.db.Close() }

// CreateChat inserts a chat with a fresh uuid.
func (s *Storage) CreateChat(title string) (models.Chat, error) {
	now := time.Now().UTC()
	chat := models.Chat{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.Exec(
		"INSERT INTO chats(id, title, created_at, updated_at) VALUES(?, ?, ?, ?)",
		chat.ID, chat.Title, now.Unix(), now.Unix(),
	)
	if err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

// ListChats returns all chats newest first, with message counts.
func (s *Storage) ListChats() ([]models.Chat, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.title, c.created_at, c.updated_at, COUNT(m.id)
		FROM chats c LEFT JOIN messages m ON m.chat_id = c.id
		GROUP BY c.id
		ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := []models.Chat{}
	for rows.Next() {
		var chat models.Chat
		var created, updated int64
		if err := rows.Scan(&chat.ID, &chat.Title, &created, &updated, &chat.MessageCount); err != nil {
			return nil, err
		}
		chat.CreatedAt = time.Unix(created, 0).UTC()
		chat.UpdatedAt = time.Unix(updated, 0).UTC()
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// GetChat fetches one chat, or sql.ErrNoRows.
func (s *Storage) GetChat(id string) (models.Chat, error) {
	var chat models.Chat
	var created, updated int64
	err := s.db.QueryRow(`
		SELECT c.id, c.title, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.chat_id = c.id)
		FROM chats c WHERE c.id = ?`, id).
		Scan(&chat.ID, &chat.Title, &created, &updated, &chat.MessageCount)
	if err != nil {
		return models.Chat{}, err
	}
	chat.CreatedAt = time.Unix(created, 0).UTC()
	chat.UpdatedAt = time.Unix(updated, 0).UTC()
	return chat, nil
}

// UpdateChatTitle renames a chat and returns the updated row.
func (s *Storage) UpdateChatTitle(id, title string) (models.Chat, error) {
	res, err := s.db.Exec("UPDATE chats SET title = ?, updated_at = ? WHERE id = ?",
		title, time.Now().Unix(), id)
	if err != nil {
		return models.Chat{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Chat{}, sql.ErrNoRows
	}
	return s.GetChat(id)
}

// DeleteChat removes a chat; its messages cascade.
func (s *Storage) DeleteChat(id string) error {
	res, err := s.db.Exec("DELETE FROM chats WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// InsertMessage persists a draft, assigning id and timestamp, and touches
// the chat's updated_at.
func (s *Storage) InsertMessage(chatID string, draft models.Draft) (models.Message, error) {
	if _, err := s.GetChat(chatID); err != nil {
		return models.Message{}, err
	}
	now := time.Now().UTC()
	msg := models.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Sender:    draft.Sender,
		Kind:      draft.Kind,
		Content:   draft.Content,
		Timestamp: now,
	}
	_, err := s.db.Exec(
		"INSERT INTO messages(id, chat_id, sender, kind, content, timestamp) VALUES(?, ?, ?, ?, ?, ?)",
		msg.ID, msg.ChatID, msg.Sender, msg.Kind, string(msg.Content), now.UnixMilli(),
	)
	if err != nil {
		return models.Message{}, err
	}
	_, err = s.db.Exec("UPDATE chats SET updated_at = ? WHERE id = ?", now.Unix(), chatID)
	if err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// ListMessages returns a chat's history in insertion order.
func (s *Storage) ListMessages(chatID string) ([]models.Message, error) {
	rows, err := s.db.Query(`
		SELECT id, chat_id, sender, kind, content, timestamp
		FROM messages WHERE chat_id = ?
		ORDER BY timestamp ASC, rowid ASC`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []models.Message{}
	for rows.Next() {
		var msg models.Message
		var content string
		var ts int64
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Sender, &msg.Kind, &content, &ts); err != nil {
			return nil, err
		}
		msg.Content = json.RawMessage(content)
		msg.Timestamp = time.UnixMilli(ts).UTC()
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}
