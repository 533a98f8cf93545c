package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const recordSelect = `SELECT r.id, r.task_id, r.question_id, r.position, r.selected_json, r.updated_at,
       q.title, q.description, q.is_multiple_choice, q.options_json
FROM records r
JOIN questions q ON q.id = r.question_id`

func scanRecord(scanner rowScanner) (*Record, error) {
	var (
		record      Record
		selectedRaw string
		updatedRaw  sql.NullString
		description sql.NullString
		multiple    int
		optionsRaw  string
	)
	if err := scanner.Scan(
		&record.ID,
		&record.TaskID,
		&record.QuestionID,
		&record.Position,
		&selectedRaw,
		&updatedRaw,
		&record.QuestionTitle,
		&description,
		&multiple,
		&optionsRaw,
	); err != nil {
		return nil, err
	}
	selected, err := decodeLabels(selectedRaw)
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", record.ID, err)
	}
	options, err := decodeLabels(optionsRaw)
	if err != nil {
		return nil, fmt.Errorf("record %d question: %w", record.ID, err)
	}
	record.Selected = selected
	record.Options = options
	record.QuestionDescription = description.String
	record.IsMultipleChoice = multiple != 0
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		record.UpdatedAt = updated
	}
	return &record, nil
}

// CreateRecord inserts an empty-selection record and fills its id.
func (q *Queries) CreateRecord(ctx context.Context, record *Record) error {
	now := time.Now().UTC()
	res, err := q.execWithRetry(ctx,
		`INSERT INTO records (task_id, question_id, position, selected_json, updated_at) VALUES (?, ?, ?, '[]', ?)`,
		record.TaskID, record.QuestionID, record.Position, formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	record.ID = id
	record.Selected = []string{}
	record.UpdatedAt = now
	return nil
}

// GetRecord fetches a record with its current question. Missing records
// return (nil, nil).
func (q *Queries) GetRecord(ctx context.Context, id int64) (*Record, error) {
	row := q.q.QueryRowContext(ensureContext(ctx), recordSelect+` WHERE r.id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

// TaskRecords returns a task's records in assignment order.
func (q *Queries) TaskRecords(ctx context.Context, taskID int64) ([]*Record, error) {
	rows, err := q.q.QueryContext(ensureContext(ctx), recordSelect+` WHERE r.task_id = ? ORDER BY r.position, r.id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("task records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// SetRecordSelection overwrites a record's selection provided its task is
// not reviewed. It reports false when the record is missing or locked.
func (q *Queries) SetRecordSelection(ctx context.Context, id int64, selected []string, at time.Time) (bool, error) {
	encoded, err := encodeLabels(selected)
	if err != nil {
		return false, err
	}
	res, err := q.execWithRetry(ctx,
		`UPDATE records SET selected_json = ?, updated_at = ?
         WHERE id = ? AND EXISTS (
             SELECT 1 FROM tasks t WHERE t.id = records.task_id AND t.status <> ?
         )`,
		encoded, formatTime(at), id, TaskReviewed,
	)
	if err != nil {
		return false, fmt.Errorf("set record selection: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// EmptyRecordIDs returns the ids of a task's records with no selection.
func (q *Queries) EmptyRecordIDs(ctx context.Context, taskID int64) ([]int64, error) {
	rows, err := q.q.QueryContext(ensureContext(ctx),
		`SELECT id FROM records WHERE task_id = ? AND selected_json = '[]' ORDER BY position, id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("empty records: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan record id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReviewedExportRows returns every record of reviewed tasks for musicIDs,
// ordered by music filepath, task id, and record position.
func (q *Queries) ReviewedExportRows(ctx context.Context, musicIDs []int64) ([]ExportRow, error) {
	if len(musicIDs) == 0 {
		return nil, nil
	}
	args := append([]any{TaskReviewed}, int64Args(musicIDs)...)
	rows, err := q.q.QueryContext(ensureContext(ctx),
		`SELECT m.id, m.filepath, m.filename, t.id, tu.username, r.id,
                q.title, q.description, q.is_multiple_choice, q.options_json, r.selected_json
         FROM tasks t
         JOIN music m ON m.id = t.music_id
         JOIN users tu ON tu.id = t.tagger_id
         JOIN records r ON r.task_id = t.id
         JOIN questions q ON q.id = r.question_id
         WHERE t.status = ? AND t.music_id IN (`+makePlaceholders(len(musicIDs))+`)
         ORDER BY m.filepath, t.id, q.title, r.position, r.id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("export rows: %w", err)
	}
	defer rows.Close()

	var out []ExportRow
	for rows.Next() {
		var (
			row         ExportRow
			description sql.NullString
			multiple    int
			optionsRaw  string
			selectedRaw string
		)
		if err := rows.Scan(
			&row.MusicID, &row.Filepath, &row.Filename, &row.TaskID, &row.TaggerName, &row.RecordID,
			&row.QuestionTitle, &description, &multiple, &optionsRaw, &selectedRaw,
		); err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		if row.Options, err = decodeLabels(optionsRaw); err != nil {
			return nil, err
		}
		if row.Selected, err = decodeLabels(selectedRaw); err != nil {
			return nil, err
		}
		row.QuestionDescription = description.String
		row.IsMultipleChoice = multiple != 0
		out = append(out, row)
	}
	return out, rows.Err()
}
