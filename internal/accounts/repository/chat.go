package repository

import (
	"context"

	"github.com/google/uuid"

	"casedesk_backend/internal/accounts/domain"
)

// AddChatMessage appends one chat message to an account's thread.
func (r *Repository) AddChatMessage(ctx context.Context, accountID, author, body string) (domain.ChatMessage, error) {
	var m domain.ChatMessage
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat_messages (id, account_id, author, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, account_id, author, body, created_at
	`, uuid.NewString(), accountID, author, body).Scan(&m.ID, &m.AccountID, &m.Author, &m.Body, &m.CreatedAt)
	return m, err
}

// ListChatMessages returns an account's chat thread in order.
func (r *Repository) ListChatMessages(ctx context.Context, accountID string) ([]domain.ChatMessage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, author, body, created_at
		FROM chat_messages
		WHERE account_id = $1
		ORDER BY created_at ASC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]domain.ChatMessage, 0)
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.AccountID, &m.Author, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
