package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const questionColumns = "id, title, description, is_multiple_choice, options_json, created_at, updated_at"

func scanQuestion(scanner rowScanner) (*Question, error) {
	var (
		question    Question
		description sql.NullString
		multiple    int
		optionsRaw  string
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)
	if err := scanner.Scan(&question.ID, &question.Title, &description, &multiple, &optionsRaw, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	options, err := decodeLabels(optionsRaw)
	if err != nil {
		return nil, fmt.Errorf("question %d: %w", question.ID, err)
	}
	question.Description = description.String
	question.IsMultipleChoice = multiple != 0
	question.Options = options
	if created, err := parseTimeString(createdRaw.String); err == nil {
		question.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		question.UpdatedAt = updated
	}
	return &question, nil
}

// CreateQuestion inserts question and fills its id and timestamps. A taken
// title returns ErrDuplicate.
func (q *Queries) CreateQuestion(ctx context.Context, question *Question) error {
	options, err := encodeLabels(question.Options)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := q.execWithRetry(ctx,
		`INSERT INTO questions (title, description, is_multiple_choice, options_json, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		question.Title,
		nullableString(question.Description),
		boolToInt(question.IsMultipleChoice),
		options,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert question %q: %w", question.Title, ErrDuplicate)
		}
		return fmt.Errorf("insert question: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	question.ID = id
	question.CreatedAt = now
	question.UpdatedAt = now
	return nil
}

// UpdateQuestion persists every mutable field of question.
func (q *Queries) UpdateQuestion(ctx context.Context, question *Question) error {
	options, err := encodeLabels(question.Options)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := q.execWithRetry(ctx,
		`UPDATE questions SET title = ?, description = ?, is_multiple_choice = ?, options_json = ?, updated_at = ?
         WHERE id = ?`,
		question.Title,
		nullableString(question.Description),
		boolToInt(question.IsMultipleChoice),
		options,
		formatTime(now),
		question.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update question %q: %w", question.Title, ErrDuplicate)
		}
		return fmt.Errorf("update question: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update question %d: %w", question.ID, sql.ErrNoRows)
	}
	question.UpdatedAt = now
	return nil
}

// GetQuestion fetches a question by id. Missing questions return (nil, nil).
func (q *Queries) GetQuestion(ctx context.Context, id int64) (*Question, error) {
	row := q.q.QueryRowContext(ensureContext(ctx), `SELECT `+questionColumns+` FROM questions WHERE id = ?`, id)
	question, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	return question, nil
}

// QuestionsByIDs returns the questions that exist among ids, keyed by id.
func (q *Queries) QuestionsByIDs(ctx context.Context, ids []int64) (map[int64]*Question, error) {
	out := make(map[int64]*Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := q.q.QueryContext(ensureContext(ctx),
		`SELECT `+questionColumns+` FROM questions WHERE id IN (`+makePlaceholders(len(ids))+`)`,
		int64Args(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("questions by ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out[question.ID] = question
	}
	return out, rows.Err()
}

// ListQuestions returns every question ordered by title.
func (q *Queries) ListQuestions(ctx context.Context) ([]*Question, error) {
	rows, err := q.q.QueryContext(ensureContext(ctx), `SELECT `+questionColumns+` FROM questions ORDER BY title, id`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []*Question
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}

// QuestionReferences counts records referencing the question. Active counts
// only records whose task is not reviewed.
func (q *Queries) QuestionReferences(ctx context.Context, id int64) (QuestionRefs, error) {
	var refs QuestionRefs
	err := q.q.QueryRowContext(ensureContext(ctx),
		`SELECT COUNT(1),
                COALESCE(SUM(CASE WHEN t.status <> ? THEN 1 ELSE 0 END), 0)
         FROM records r JOIN tasks t ON t.id = r.task_id
         WHERE r.question_id = ?`,
		TaskReviewed, id,
	).Scan(&refs.Total, &refs.Active)
	if err != nil {
		return QuestionRefs{}, fmt.Errorf("count question references: %w", err)
	}
	return refs, nil
}

// DeleteQuestion removes a question together with any records that still
// reference it. Callers decide beforehand whether removing those records is
// permitted. Returns false when the question did not exist.
func (q *Queries) DeleteQuestion(ctx context.Context, id int64) (bool, error) {
	if _, err := q.execWithRetry(ctx, `DELETE FROM records WHERE question_id = ?`, id); err != nil {
		return false, fmt.Errorf("delete question records: %w", err)
	}
	res, err := q.execWithRetry(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete question: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
