package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/user"
)

type userTableModel struct {
	ID             int64          `db:"id"`
	PublicID       string         `db:"public_id"`
	Username       string         `db:"username"`
	Email          string         `db:"email"`
	FullName       sql.NullString `db:"full_name"`
	PasswordHash   string         `db:"password_hash"`
	Role           string         `db:"role"`
	Status         string         `db:"status"`
	TasksTriggered int            `db:"tasks_triggered"`
	TasksCompleted int            `db:"tasks_completed"`
	LastLoginAt    *time.Time     `db:"last_login_at"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	DeletedAt      *time.Time     `db:"deleted_at"`
}

type userInsertModel struct {
	PublicID     string    `db:"public_id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	FullName     *string   `db:"full_name"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func userFromRow(row userTableModel) user.User {
	return user.User{
		ID:           row.PublicID,
		Username:     row.Username,
		Email:        row.Email,
		FullName:     stringFromNull(row.FullName),
		PasswordHash: row.PasswordHash,
		Role:         user.Role(row.Role),
		Status:       user.Status(row.Status),
		Tasks: user.Tasks{
			Triggered: row.TasksTriggered,
			Completed: row.TasksCompleted,
		},
		LastLoginAt: row.LastLoginAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
