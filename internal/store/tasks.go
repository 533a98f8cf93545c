package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const taskSelect = `SELECT t.id, t.music_id, t.tagger_id, t.status, t.tagged_at, t.reviewer_id,
       t.reviewed_at, t.review_comment, t.creator_id, t.created_at,
       m.filename, m.filepath, tu.username, ru.username, cu.username
FROM tasks t
JOIN music m ON m.id = t.music_id
JOIN users tu ON tu.id = t.tagger_id
JOIN users cu ON cu.id = t.creator_id
LEFT JOIN users ru ON ru.id = t.reviewer_id`

func scanTask(scanner rowScanner) (*Task, error) {
	var (
		task         Task
		statusStr    string
		taggedRaw    sql.NullString
		reviewerID   sql.NullInt64
		reviewedRaw  sql.NullString
		comment      sql.NullString
		createdRaw   sql.NullString
		reviewerName sql.NullString
	)
	if err := scanner.Scan(
		&task.ID,
		&task.MusicID,
		&task.TaggerID,
		&statusStr,
		&taggedRaw,
		&reviewerID,
		&reviewedRaw,
		&comment,
		&task.CreatorID,
		&createdRaw,
		&task.MusicFilename,
		&task.MusicFilepath,
		&task.TaggerName,
		&reviewerName,
		&task.CreatorName,
	); err != nil {
		return nil, err
	}
	task.Status = TaskStatus(statusStr)
	task.TaggedAt = parseNullTime(taggedRaw)
	task.ReviewedAt = parseNullTime(reviewedRaw)
	if reviewerID.Valid {
		id := reviewerID.Int64
		task.ReviewerID = &id
	}
	task.ReviewComment = comment.String
	task.ReviewerName = reviewerName.String
	if created, err := parseTimeString(createdRaw.String); err == nil {
		task.CreatedAt = created
	}
	return &task, nil
}

// CreateTask inserts a pending task and fills its id, status, and creation time.
func (q *Queries) CreateTask(ctx context.Context, task *Task) error {
	now := time.Now().UTC()
	res, err := q.execWithRetry(ctx,
		`INSERT INTO tasks (music_id, tagger_id, status, creator_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		task.MusicID, task.TaggerID, TaskPending, task.CreatorID, formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	task.ID = id
	task.Status = TaskPending
	task.CreatedAt = now
	return nil
}

// GetTask fetches a task with its joined display fields. Missing tasks
// return (nil, nil).
func (q *Queries) GetTask(ctx context.Context, id int64) (*Task, error) {
	row := q.q.QueryRowContext(ensureContext(ctx), taskSelect+` WHERE t.id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// MarkTagged moves a task to tagged when its status is one of from. It
// reports false when the task was not in an allowed state.
func (q *Queries) MarkTagged(ctx context.Context, id int64, at time.Time, from ...TaskStatus) (bool, error) {
	if len(from) == 0 {
		return false, errors.New("mark tagged: no source states")
	}
	args := []any{TaskTagged, formatTime(at), id}
	for _, status := range from {
		args = append(args, status)
	}
	res, err := q.execWithRetry(ctx,
		`UPDATE tasks SET status = ?, tagged_at = ? WHERE id = ? AND status IN (`+makePlaceholders(len(from))+`)`,
		args...,
	)
	if err != nil {
		return false, fmt.Errorf("mark task tagged: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// MarkReviewed records a review decision on a tagged task, moving it to
// status to. It reports false when the task was not tagged.
func (q *Queries) MarkReviewed(ctx context.Context, id int64, to TaskStatus, reviewerID int64, comment string, at time.Time) (bool, error) {
	res, err := q.execWithRetry(ctx,
		`UPDATE tasks SET status = ?, reviewer_id = ?, reviewed_at = ?, review_comment = ?
         WHERE id = ? AND status = ?`,
		to, reviewerID, formatTime(at), nullableString(comment), id, TaskTagged,
	)
	if err != nil {
		return false, fmt.Errorf("mark task reviewed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// DeleteTask removes a task; its records cascade. Returns false when the
// task did not exist.
func (q *Queries) DeleteTask(ctx context.Context, id int64) (bool, error) {
	res, err := q.execWithRetry(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ListTasks returns one page of tasks, newest first, plus the total count
// matching filter. The keyword matches the music filename or any of the
// tagger, reviewer, and creator usernames.
func (q *Queries) ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, int, error) {
	ctx = ensureContext(ctx)
	var (
		where []string
		args  []any
	)
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		pattern := likePattern(kw)
		where = append(where, `(m.filename LIKE ? ESCAPE '\' OR tu.username LIKE ? ESCAPE '\'
            OR ru.username LIKE ? ESCAPE '\' OR cu.username LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if filter.Status != "" {
		where = append(where, "t.status = ?")
		args = append(args, filter.Status)
	}
	if filter.TaggerID > 0 {
		where = append(where, "t.tagger_id = ?")
		args = append(args, filter.TaggerID)
	}
	if filter.ReviewerID > 0 {
		where = append(where, "t.reviewer_id = ?")
		args = append(args, filter.ReviewerID)
	}
	if filter.MusicID > 0 {
		where = append(where, "t.music_id = ?")
		args = append(args, filter.MusicID)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(1) FROM tasks t
JOIN music m ON m.id = t.music_id
JOIN users tu ON tu.id = t.tagger_id
JOIN users cu ON cu.id = t.creator_id
LEFT JOIN users ru ON ru.id = t.reviewer_id` + clause
	if err := q.q.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query := taskSelect + clause + ` ORDER BY t.created_at DESC, t.id DESC`
	pageArgs := append([]any{}, args...)
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		pageArgs = append(pageArgs, filter.Limit, filter.Offset)
	}
	rows, err := q.q.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}
