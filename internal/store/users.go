package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const userColumns = "id, username, password_hash, role, created_at"

func scanUser(scanner rowScanner) (*User, error) {
	var (
		user       User
		createdRaw sql.NullString
	)
	if err := scanner.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role, &createdRaw); err != nil {
		return nil, err
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		user.CreatedAt = created
	}
	return &user, nil
}

// CreateUser inserts an account. A taken username returns ErrDuplicate.
func (q *Queries) CreateUser(ctx context.Context, username, passwordHash, role string) (*User, error) {
	now := time.Now().UTC()
	res, err := q.execWithRetry(ctx,
		`INSERT INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, ?)`,
		username, passwordHash, role, formatTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert user %q: %w", username, ErrDuplicate)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &User{ID: id, Username: username, PasswordHash: passwordHash, Role: role, CreatedAt: now}, nil
}

// GetUser fetches a user by id. Missing users return (nil, nil).
func (q *Queries) GetUser(ctx context.Context, id int64) (*User, error) {
	row := q.q.QueryRowContext(ensureContext(ctx), `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetUserByUsername fetches a user by exact username. Missing users return (nil, nil).
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	row := q.q.QueryRowContext(ensureContext(ctx), `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

// UsersByIDs returns the users that exist among ids, keyed by id.
func (q *Queries) UsersByIDs(ctx context.Context, ids []int64) (map[int64]*User, error) {
	out := make(map[int64]*User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := q.q.QueryContext(ensureContext(ctx),
		`SELECT `+userColumns+` FROM users WHERE id IN (`+makePlaceholders(len(ids))+`)`,
		int64Args(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("users by ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out[user.ID] = user
	}
	return out, rows.Err()
}

// ListUsers returns users ordered by username. A numeric keyword also
// matches the exact id.
func (q *Queries) ListUsers(ctx context.Context, filter UserFilter) ([]*User, error) {
	var (
		where []string
		args  []any
	)
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		clause := `username LIKE ? ESCAPE '\'`
		args = append(args, likePattern(kw))
		if id, err := strconv.ParseInt(kw, 10, 64); err == nil {
			clause = "(" + clause + " OR id = ?)"
			args = append(args, id)
		}
		where = append(where, clause)
	}
	if filter.Role != "" {
		where = append(where, "role = ?")
		args = append(args, filter.Role)
	}
	query := `SELECT ` + userColumns + ` FROM users`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY username"

	rows, err := q.q.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CountUsersWithRole returns how many accounts hold role.
func (q *Queries) CountUsersWithRole(ctx context.Context, role string) (int, error) {
	var count int
	if err := q.q.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM users WHERE role = ?`, role).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
