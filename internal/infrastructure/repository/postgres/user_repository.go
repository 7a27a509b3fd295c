package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday-preview/internal/domain/user"
	qb "github.com/riskibarqy/matchday-preview/internal/platform/querybuilder"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context, filter user.Filter) ([]user.User, error) {
	query, args, err := qb.Select("*").From("users").
		Where(userConditions(filter)...).
		OrderBy("created_at DESC", "id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select users query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, userFromRow(row))
	}
	return out, nil
}

func (r *UserRepository) Count(ctx context.Context, filter user.Filter) (int, error) {
	query, args, err := qb.Select("COUNT(1)").From("users").
		Where(userConditions(filter)...).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count users query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (user.User, bool, error) {
	return r.getOne(ctx, "get user by id", qb.Eq("public_id", userID))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (user.User, bool, error) {
	return r.getOne(ctx, "get user by username", qb.Eq("username", strings.ToLower(strings.TrimSpace(username))))
}

func (r *UserRepository) getOne(ctx context.Context, op string, cond qb.Condition) (user.User, bool, error) {
	query, args, err := qb.Select("*").From("users").
		Where(cond, qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build %s query: %w", op, err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return userFromRow(row), true, nil
}

func (r *UserRepository) Create(ctx context.Context, item user.User) error {
	query, args, err := qb.InsertModel("users", userInsertModel{
		PublicID:     item.ID,
		Username:     item.Username,
		Email:        item.Email,
		FullName:     optionalString(item.FullName),
		PasswordHash: item.PasswordHash,
		Role:         string(item.Role),
		Status:       string(item.Status),
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert user query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Update leaves task counters and last login untouched.
func (r *UserRepository) Update(ctx context.Context, item user.User) error {
	query, args, err := qb.Update("users").
		Set("username", item.Username).
		Set("email", item.Email).
		Set("full_name", optionalString(item.FullName)).
		Set("password_hash", item.PasswordHash).
		Set("role", string(item.Role)).
		Set("status", string(item.Status)).
		Set("updated_at", item.UpdatedAt).
		Where(qb.Eq("public_id", item.ID), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update user query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	query, args, err := qb.Update("users").
		SetExpr("deleted_at", "NOW()").
		Where(qb.Eq("public_id", userID), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete user query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (r *UserRepository) IncrementTasks(ctx context.Context, userID string, triggered, completed int) error {
	query, args, err := qb.Update("users").
		SetExpr("tasks_triggered", "tasks_triggered + ?", triggered).
		SetExpr("tasks_completed", "tasks_completed + ?", completed).
		Where(qb.Eq("public_id", userID), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build increment user tasks query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("increment user tasks user=%s: %w", userID, err)
	}
	return nil
}

func (r *UserRepository) TouchLogin(ctx context.Context, userID string, at time.Time) error {
	query, args, err := qb.Update("users").
		Set("last_login_at", at.UTC()).
		Where(qb.Eq("public_id", userID), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build touch user login query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("touch user login user=%s: %w", userID, err)
	}
	return nil
}

func userConditions(filter user.Filter) []qb.Condition {
	conds := []qb.Condition{qb.IsNull("deleted_at")}
	if filter.Role != "" {
		conds = append(conds, qb.Eq("role", string(filter.Role)))
	}
	if filter.Status != "" {
		conds = append(conds, qb.Eq("status", string(filter.Status)))
	}
	if filter.Search != "" {
		conds = append(conds, qb.Search(filter.Search, "username", "email", "full_name"))
	}
	return conds
}
