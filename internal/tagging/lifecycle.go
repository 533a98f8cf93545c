package tagging

import (
	"context"
	"strconv"
	"strings"

	"tagflow/internal/auth"
	"tagflow/internal/logging"
	"tagflow/internal/notifications"
	"tagflow/internal/services"
	"tagflow/internal/store"
)

// ReviewResult is a reviewer's decision on a tagged task.
type ReviewResult string

const (
	ReviewAgreed    ReviewResult = "AGREED"
	ReviewDisagreed ReviewResult = "DISAGREED"
)

// ParseReviewResult accepts AGREED or DISAGREED in any case.
func ParseReviewResult(raw string) (ReviewResult, error) {
	switch ReviewResult(strings.ToUpper(strings.TrimSpace(raw))) {
	case ReviewAgreed:
		return ReviewAgreed, nil
	case ReviewDisagreed:
		return ReviewDisagreed, nil
	default:
		return "", invalid("review", 0, "result", "result must be AGREED or DISAGREED, got "+strconv.Quote(raw))
	}
}

type transition struct {
	from []store.TaskStatus
	to   store.TaskStatus
}

func (t transition) allows(current store.TaskStatus) bool {
	for _, s := range t.from {
		if s == current {
			return true
		}
	}
	return false
}

var (
	finishTransition  = transition{from: []store.TaskStatus{store.TaskPending, store.TaskRejected}, to: store.TaskTagged}
	approveTransition = transition{from: []store.TaskStatus{store.TaskTagged}, to: store.TaskReviewed}
	rejectTransition  = transition{from: []store.TaskStatus{store.TaskTagged}, to: store.TaskRejected}
)

func transitionConflict(task *store.Task, to store.TaskStatus) error {
	return &services.ConflictError{Entity: "task", ID: task.ID, Current: string(task.Status), Requested: string(to)}
}

// Finish marks a pending or rejected task as tagged. Only the task's tagger
// may finish it. When the policy requires complete records, every record
// must hold a selection.
func (e *Engine) Finish(ctx context.Context, id auth.Identity, taskID int64) (*store.Task, error) {
	ctx = services.WithTaskID(ctx, taskID)
	var finished *store.Task
	err := e.store.WithTx(ctx, func(q *store.Queries) error {
		task, err := q.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return notFound("task", taskID)
		}
		if !id.IsUser(task.TaggerID) {
			return &services.ForbiddenError{Action: "finish task", UserID: id.UserID, Reason: "not the task's tagger"}
		}
		if !finishTransition.allows(task.Status) {
			return transitionConflict(task, finishTransition.to)
		}
		if e.policy.RequireCompleteRecords {
			empty, err := q.EmptyRecordIDs(ctx, taskID)
			if err != nil {
				return err
			}
			if len(empty) > 0 {
				return invalid("task", taskID, "records", "records without a selection: "+joinIDs(empty))
			}
		}
		ok, err := q.MarkTagged(ctx, taskID, e.now(), finishTransition.from...)
		if err != nil {
			return err
		}
		if !ok {
			return transitionConflict(task, finishTransition.to)
		}
		finished, err = q.GetTask(ctx, taskID)
		return err
	})
	if err != nil {
		return nil, wrapOp("finish task", err)
	}
	e.log(ctx).Info("task finished",
		logging.Int64(logging.FieldUserID, id.UserID),
		logging.Event("task_tagged"),
	)
	e.notify(ctx, notifications.EventTaskFinished, notifications.Payload{
		"task_id":  finished.ID,
		"filename": finished.MusicFilename,
		"tagger":   finished.TaggerName,
	})
	return finished, nil
}

// Review records a reviewer decision on a tagged task. Approval moves it to
// reviewed and increments the music item's valid tagging count in the same
// transaction; disagreement moves it to rejected and reopens it for tagging.
func (e *Engine) Review(ctx context.Context, id auth.Identity, taskID int64, result ReviewResult, comment string) (*store.Task, error) {
	if err := id.Require(auth.CapReview, "review task"); err != nil {
		return nil, err
	}
	result, err := ParseReviewResult(string(result))
	if err != nil {
		return nil, err
	}
	rule := approveTransition
	if result == ReviewDisagreed {
		rule = rejectTransition
	}
	comment = strings.TrimSpace(comment)
	ctx = services.WithTaskID(ctx, taskID)

	var reviewed *store.Task
	err = e.store.WithTx(ctx, func(q *store.Queries) error {
		task, err := q.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return notFound("task", taskID)
		}
		if !rule.allows(task.Status) {
			return transitionConflict(task, rule.to)
		}
		ok, err := q.MarkReviewed(ctx, taskID, rule.to, id.UserID, comment, e.now())
		if err != nil {
			return err
		}
		if !ok {
			return transitionConflict(task, rule.to)
		}
		if rule.to == store.TaskReviewed {
			if err := q.IncrementValidTaggingCount(ctx, task.MusicID); err != nil {
				return err
			}
		}
		reviewed, err = q.GetTask(ctx, taskID)
		return err
	})
	if err != nil {
		return nil, wrapOp("review task", err)
	}
	e.log(ctx).Info("task reviewed",
		logging.Int64(logging.FieldUserID, id.UserID),
		logging.Int64(logging.FieldMusicID, reviewed.MusicID),
		logging.String("result", string(result)),
		logging.String("status", string(reviewed.Status)),
		logging.Event("task_"+string(reviewed.Status)),
	)
	e.notify(ctx, notifications.EventTaskReviewed, notifications.Payload{
		"task_id":  reviewed.ID,
		"filename": reviewed.MusicFilename,
		"reviewer": reviewed.ReviewerName,
		"result":   string(result),
		"comment":  comment,
	})
	return reviewed, nil
}

// DeleteTask removes a task in any state together with its records.
func (e *Engine) DeleteTask(ctx context.Context, id auth.Identity, taskID int64) error {
	if err := id.Require(auth.CapAdmin, "delete task"); err != nil {
		return err
	}
	err := e.store.WithTx(ctx, func(q *store.Queries) error {
		ok, err := q.DeleteTask(ctx, taskID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("task", taskID)
		}
		return nil
	})
	if err != nil {
		return wrapOp("delete task", err)
	}
	e.log(services.WithTaskID(ctx, taskID)).Info("task deleted",
		logging.Event("task_deleted"),
	)
	return nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
