package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const musicColumns = "id, filepath, filename, duration_seconds, valid_tagging_count, created_at"

func scanMusic(scanner rowScanner) (*MusicItem, error) {
	var (
		item       MusicItem
		duration   sql.NullFloat64
		createdRaw sql.NullString
	)
	if err := scanner.Scan(&item.ID, &item.Filepath, &item.Filename, &duration, &item.ValidTaggingCount, &createdRaw); err != nil {
		return nil, err
	}
	if duration.Valid {
		d := duration.Float64
		item.DurationSeconds = &d
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	return &item, nil
}

// CreateMusic inserts item and fills its id. A filepath already ingested
// returns ErrDuplicate.
func (q *Queries) CreateMusic(ctx context.Context, item *MusicItem) error {
	now := time.Now().UTC()
	res, err := q.execWithRetry(ctx,
		`INSERT INTO music (filepath, filename, duration_seconds, valid_tagging_count, created_at)
         VALUES (?, ?, ?, 0, ?)`,
		item.Filepath, item.Filename, nullableFloat(item.DurationSeconds), formatTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert music %q: %w", item.Filepath, ErrDuplicate)
		}
		return fmt.Errorf("insert music: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	item.ID = id
	item.ValidTaggingCount = 0
	item.CreatedAt = now
	return nil
}

// GetMusic fetches a music item by id. Missing items return (nil, nil).
func (q *Queries) GetMusic(ctx context.Context, id int64) (*MusicItem, error) {
	row := q.q.QueryRowContext(ensureContext(ctx), `SELECT `+musicColumns+` FROM music WHERE id = ?`, id)
	item, err := scanMusic(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get music: %w", err)
	}
	return item, nil
}

// GetMusicByPath fetches a music item by exact filepath. Missing items return (nil, nil).
func (q *Queries) GetMusicByPath(ctx context.Context, path string) (*MusicItem, error) {
	row := q.q.QueryRowContext(ensureContext(ctx), `SELECT `+musicColumns+` FROM music WHERE filepath = ?`, path)
	item, err := scanMusic(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get music by path: %w", err)
	}
	return item, nil
}

// ListMusic returns music items whose filename contains keyword, ordered by filename.
func (q *Queries) ListMusic(ctx context.Context, keyword string) ([]*MusicItem, error) {
	query := `SELECT ` + musicColumns + ` FROM music`
	var args []any
	if kw := strings.TrimSpace(keyword); kw != "" {
		query += ` WHERE filename LIKE ? ESCAPE '\'`
		args = append(args, likePattern(kw))
	}
	query += ` ORDER BY filename, id`

	rows, err := q.q.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list music: %w", err)
	}
	defer rows.Close()

	var items []*MusicItem
	for rows.Next() {
		item, err := scanMusic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan music: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// DeleteMusic removes a music item; tasks and records cascade. Returns false
// when the item did not exist.
func (q *Queries) DeleteMusic(ctx context.Context, id int64) (bool, error) {
	res, err := q.execWithRetry(ctx, `DELETE FROM music WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete music: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// IncrementValidTaggingCount adds one to the music item's approved-task counter.
func (q *Queries) IncrementValidTaggingCount(ctx context.Context, musicID int64) error {
	res, err := q.execWithRetry(ctx,
		`UPDATE music SET valid_tagging_count = valid_tagging_count + 1 WHERE id = ?`, musicID)
	if err != nil {
		return fmt.Errorf("increment valid tagging count: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("increment valid tagging count for music %d: %w", musicID, sql.ErrNoRows)
	}
	return nil
}

// ReconcileValidTaggingCounts rewrites valid_tagging_count from the number of
// reviewed tasks per item. Only musicIDs are checked when any are given. The
// returned drifts list the items that changed.
func (q *Queries) ReconcileValidTaggingCounts(ctx context.Context, musicIDs ...int64) ([]CountDrift, error) {
	ctx = ensureContext(ctx)
	query := `SELECT m.id, m.filepath, m.valid_tagging_count,
                     (SELECT COUNT(1) FROM tasks t WHERE t.music_id = m.id AND t.status = ?)
              FROM music m`
	args := []any{TaskReviewed}
	if len(musicIDs) > 0 {
		query += ` WHERE m.id IN (` + makePlaceholders(len(musicIDs)) + `)`
		args = append(args, int64Args(musicIDs)...)
	}
	query += ` ORDER BY m.id`

	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scan tagging counts: %w", err)
	}
	var drifts []CountDrift
	for rows.Next() {
		var d CountDrift
		if err := rows.Scan(&d.MusicID, &d.Filepath, &d.Stored, &d.Actual); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan tagging count: %w", err)
		}
		if d.Stored != d.Actual {
			drifts = append(drifts, d)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, d := range drifts {
		if _, err := q.execWithRetry(ctx, `UPDATE music SET valid_tagging_count = ? WHERE id = ?`, d.Actual, d.MusicID); err != nil {
			return nil, fmt.Errorf("update tagging count for music %d: %w", d.MusicID, err)
		}
	}
	return drifts, nil
}
