package tagging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tagflow/internal/auth"
	"tagflow/internal/config"
	"tagflow/internal/logging"
	"tagflow/internal/services"
	"tagflow/internal/store"
	"tagflow/internal/textutil"
)

// QuestionInput describes a new catalog question.
type QuestionInput struct {
	Title            string
	Description      string
	IsMultipleChoice bool
	Options          []string
}

// QuestionPatch lists the fields to change on a question. Nil fields are
// left as they are; a non-nil empty Options is a request to clear them and
// fails validation.
type QuestionPatch struct {
	Title            *string
	Description      *string
	IsMultipleChoice *bool
	Options          []string
}

// normalizeQuestion trims fields in place and enforces catalog rules.
func normalizeQuestion(q *store.Question) error {
	q.Title = textutil.CollapseSpace(q.Title)
	q.Description = strings.TrimSpace(q.Description)
	if q.Title == "" {
		return invalid("question", q.ID, "title", "title is required")
	}
	if len(q.Options) == 0 {
		return invalid("question", q.ID, "options", "at least one option is required")
	}
	options := make([]string, len(q.Options))
	for i, opt := range q.Options {
		label := strings.TrimSpace(opt)
		if label == "" {
			return invalid("question", q.ID, "options", fmt.Sprintf("option %d is blank", i+1))
		}
		options[i] = label
	}
	if dup, ok := textutil.FirstDuplicate(options); ok {
		return invalid("question", q.ID, "options", fmt.Sprintf("duplicate option %q", dup))
	}
	q.Options = options
	return nil
}

func titleConflict(id int64, title string) error {
	return &services.ConflictError{Entity: "question", ID: id, Msg: fmt.Sprintf("title %q already exists", title)}
}

// CreateQuestion adds a question to the catalog.
func (e *Engine) CreateQuestion(ctx context.Context, id auth.Identity, in QuestionInput) (*store.Question, error) {
	if err := id.Require(auth.CapAdmin, "create question"); err != nil {
		return nil, err
	}
	question := &store.Question{
		Title:            in.Title,
		Description:      in.Description,
		IsMultipleChoice: in.IsMultipleChoice,
		Options:          append([]string(nil), in.Options...),
	}
	if err := normalizeQuestion(question); err != nil {
		return nil, err
	}
	err := e.store.WithTx(ctx, func(q *store.Queries) error {
		return q.CreateQuestion(ctx, question)
	})
	if errors.Is(err, store.ErrDuplicate) {
		return nil, titleConflict(0, question.Title)
	}
	if err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	e.log(ctx).Info("question created",
		logging.Int64("question_id", question.ID),
		logging.String("title", question.Title),
		logging.Event("question_created"),
	)
	return question, nil
}

// UpdateQuestion applies patch in place. Records that selected a removed
// option keep their stale selection.
func (e *Engine) UpdateQuestion(ctx context.Context, id auth.Identity, questionID int64, patch QuestionPatch) (*store.Question, error) {
	if err := id.Require(auth.CapAdmin, "update question"); err != nil {
		return nil, err
	}
	var updated *store.Question
	err := e.store.WithTx(ctx, func(q *store.Queries) error {
		question, err := q.GetQuestion(ctx, questionID)
		if err != nil {
			return err
		}
		if question == nil {
			return notFound("question", questionID)
		}
		if patch.Title != nil {
			question.Title = *patch.Title
		}
		if patch.Description != nil {
			question.Description = *patch.Description
		}
		if patch.IsMultipleChoice != nil {
			question.IsMultipleChoice = *patch.IsMultipleChoice
		}
		if patch.Options != nil {
			question.Options = append([]string(nil), patch.Options...)
		}
		if err := normalizeQuestion(question); err != nil {
			return err
		}
		if err := q.UpdateQuestion(ctx, question); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return titleConflict(questionID, question.Title)
			}
			return err
		}
		updated = question
		return nil
	})
	if err != nil {
		return nil, wrapOp("update question", err)
	}
	e.log(ctx).Info("question updated",
		logging.Int64("question_id", questionID),
		logging.Event("question_updated"),
	)
	return updated, nil
}

// DeleteQuestion removes a question subject to the configured reference
// policy. Under the active-reference policy, records of reviewed tasks are
// removed along with the question.
func (e *Engine) DeleteQuestion(ctx context.Context, id auth.Identity, questionID int64) error {
	if err := id.Require(auth.CapAdmin, "delete question"); err != nil {
		return err
	}
	var removedRecords int
	err := e.store.WithTx(ctx, func(q *store.Queries) error {
		question, err := q.GetQuestion(ctx, questionID)
		if err != nil {
			return err
		}
		if question == nil {
			return notFound("question", questionID)
		}
		refs, err := q.QuestionReferences(ctx, questionID)
		if err != nil {
			return err
		}
		switch e.policy.QuestionDeletePolicy {
		case config.QuestionDeleteActiveReference:
			if refs.Active > 0 {
				return &services.ConflictError{Entity: "question", ID: questionID,
					Msg: fmt.Sprintf("referenced by %d records of unreviewed tasks", refs.Active)}
			}
		default:
			if refs.Total > 0 {
				return &services.ConflictError{Entity: "question", ID: questionID,
					Msg: fmt.Sprintf("referenced by %d records", refs.Total)}
			}
		}
		removedRecords = refs.Total
		_, err = q.DeleteQuestion(ctx, questionID)
		return err
	})
	if err != nil {
		return wrapOp("delete question", err)
	}
	e.log(ctx).Info("question deleted",
		logging.Int64("question_id", questionID),
		logging.Int("removed_records", removedRecords),
		logging.Event("question_deleted"),
	)
	return nil
}

// ListQuestions returns the catalog ordered by title.
func (e *Engine) ListQuestions(ctx context.Context, id auth.Identity) ([]*store.Question, error) {
	if err := id.RequireUser("list questions"); err != nil {
		return nil, err
	}
	questions, err := e.store.ListQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

// Question returns one catalog entry.
func (e *Engine) Question(ctx context.Context, id auth.Identity, questionID int64) (*store.Question, error) {
	if err := id.RequireUser("read question"); err != nil {
		return nil, err
	}
	question, err := e.store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	if question == nil {
		return nil, notFound("question", questionID)
	}
	return question, nil
}
