package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/whereismy/whereismy/internal/model"
)

// CreateModerator creates a password-login moderator account.
func CreateModerator(ctx context.Context, db *sql.DB, username, passwordHash string) (*model.User, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)`,
		username, passwordHash, model.RoleModerator,
	)
	if err != nil {
		return nil, fmt.Errorf("creating moderator: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// UpsertTelegramUser registers a chat-platform user on first contact and
// refreshes the display name on subsequent ones. Returns the stored user.
func UpsertTelegramUser(ctx context.Context, db *sql.DB, telegramID int64, username string) (*model.User, error) {
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (telegram_id, username) VALUES (?, ?)
		 ON CONFLICT (telegram_id) DO UPDATE SET username = excluded.username`,
		telegramID, nullString(username),
	)
	if err != nil {
		return nil, fmt.Errorf("upserting telegram user: %w", err)
	}
	return GetUserByTelegramID(ctx, db, telegramID)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	return getUser(ctx, db, `WHERE id = ?`, id)
}

// GetUserByTelegramID returns a user by their Telegram identity.
func GetUserByTelegramID(ctx context.Context, db *sql.DB, telegramID int64) (*model.User, error) {
	return getUser(ctx, db, `WHERE telegram_id = ?`, telegramID)
}

// GetModeratorByUsername returns a moderator account for password login.
func GetModeratorByUsername(ctx context.Context, db *sql.DB, username string) (*model.User, error) {
	return getUser(ctx, db, `WHERE username = ? AND role = ?`, username, model.RoleModerator)
}

func getUser(ctx context.Context, db *sql.DB, where string, args ...any) (*model.User, error) {
	u := &model.User{}
	var telegramID sql.NullInt64
	var username, passwordHash sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, telegram_id, username, password_hash, role, created_at
		 FROM users `+where, args...,
	).Scan(&u.ID, &telegramID, &username, &passwordHash, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	if telegramID.Valid {
		u.TelegramID = &telegramID.Int64
	}
	u.Username = username.String
	u.PasswordHash = passwordHash.String
	return u, nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}
