package tagging

import (
	"context"
	"fmt"
	"strings"

	"tagflow/internal/auth"
	"tagflow/internal/logging"
	"tagflow/internal/services"
	"tagflow/internal/store"
)

// TaskDetail is a task with its records in assignment order.
type TaskDetail struct {
	Task    *store.Task
	Records []*store.Record
}

// validateSelection checks selected against the record's current question
// and returns the trimmed selection.
func validateSelection(record *store.Record, selected []string) ([]string, error) {
	out := make([]string, 0, len(selected))
	seen := make(map[string]struct{}, len(selected))
	for _, raw := range selected {
		label := strings.TrimSpace(raw)
		if !containsLabel(record.Options, label) {
			return nil, invalid("record", record.ID, "selected_options",
				fmt.Sprintf("%q is not an option of question %q", label, record.QuestionTitle))
		}
		if _, ok := seen[label]; ok {
			return nil, invalid("record", record.ID, "selected_options", fmt.Sprintf("%q selected twice", label))
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	if !record.IsMultipleChoice && len(out) != 1 {
		return nil, invalid("record", record.ID, "selected_options",
			fmt.Sprintf("single-choice question %q needs exactly one option, got %d", record.QuestionTitle, len(out)))
	}
	return out, nil
}

func containsLabel(options []string, label string) bool {
	for _, opt := range options {
		if opt == label {
			return true
		}
	}
	return false
}

// SetSelection overwrites a record's selected options. Only the owning
// task's tagger may call it, and only while the task is not reviewed.
func (e *Engine) SetSelection(ctx context.Context, id auth.Identity, recordID int64, selected []string) (*store.Record, error) {
	var updated *store.Record
	err := e.store.WithTx(ctx, func(q *store.Queries) error {
		record, err := q.GetRecord(ctx, recordID)
		if err != nil {
			return err
		}
		if record == nil {
			return notFound("record", recordID)
		}
		task, err := q.GetTask(ctx, record.TaskID)
		if err != nil {
			return err
		}
		if task == nil {
			return &services.ConflictError{Entity: "record", ID: recordID, Msg: "owning task no longer exists"}
		}
		if !id.IsUser(task.TaggerID) {
			return &services.ForbiddenError{Action: "edit record", UserID: id.UserID, Reason: "not the task's tagger"}
		}
		if task.Status.IsTerminal() {
			return &services.ConflictError{Entity: "task", ID: task.ID, Current: string(task.Status),
				Msg: "reviewed tasks are locked"}
		}
		clean, err := validateSelection(record, selected)
		if err != nil {
			return err
		}
		ok, err := q.SetRecordSelection(ctx, recordID, clean, e.now())
		if err != nil {
			return err
		}
		if !ok {
			return &services.ConflictError{Entity: "record", ID: recordID, Msg: "record is locked"}
		}
		updated, err = q.GetRecord(ctx, recordID)
		return err
	})
	if err != nil {
		return nil, wrapOp("set selection", err)
	}
	e.log(ctx).Debug("record selection saved",
		logging.Int64(logging.FieldTaskID, updated.TaskID),
		logging.Int64("record_id", recordID),
		logging.Int("selected", len(updated.Selected)),
	)
	return updated, nil
}

// Task returns a task with its records. Callers without the review
// capability may only read their own tasks.
func (e *Engine) Task(ctx context.Context, id auth.Identity, taskID int64) (*TaskDetail, error) {
	if err := id.RequireUser("read task"); err != nil {
		return nil, err
	}
	var detail *TaskDetail
	err := e.store.WithTx(ctx, func(q *store.Queries) error {
		task, err := q.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return notFound("task", taskID)
		}
		if !id.Can(auth.CapReview) && !id.IsUser(task.TaggerID) {
			return &services.ForbiddenError{Action: "read task", UserID: id.UserID, Reason: "not the task's tagger"}
		}
		records, err := q.TaskRecords(ctx, taskID)
		if err != nil {
			return err
		}
		detail = &TaskDetail{Task: task, Records: records}
		return nil
	})
	if err != nil {
		return nil, wrapOp("get task", err)
	}
	return detail, nil
}
