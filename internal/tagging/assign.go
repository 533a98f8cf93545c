package tagging

import (
	"context"
	"fmt"

	"tagflow/internal/auth"
	"tagflow/internal/logging"
	"tagflow/internal/notifications"
	"tagflow/internal/store"
)

// Assignment fans one music item out to several taggers.
type Assignment struct {
	MusicID     int64
	QuestionIDs []int64
	TaggerIDs   []int64
}

func (a Assignment) validate() error {
	if len(a.TaggerIDs) == 0 {
		return invalid("assignment", 0, "tagger_ids", "at least one tagger is required")
	}
	if dup, ok := duplicateIDs(a.TaggerIDs); ok {
		return invalid("assignment", 0, "tagger_ids", fmt.Sprintf("tagger %d listed twice", dup))
	}
	if len(a.QuestionIDs) == 0 {
		return invalid("assignment", 0, "question_ids", "at least one question is required")
	}
	if dup, ok := duplicateIDs(a.QuestionIDs); ok {
		return invalid("assignment", 0, "question_ids", fmt.Sprintf("question %d listed twice", dup))
	}
	return nil
}

// Assign creates one pending task per tagger, each with one empty record
// per question in QuestionIDs order. All tasks are created or none are. The
// returned task ids follow TaggerIDs order.
func (e *Engine) Assign(ctx context.Context, id auth.Identity, a Assignment) ([]int64, error) {
	if err := id.Require(auth.CapAdmin, "assign tasks"); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}

	var (
		taskIDs  []int64
		filename string
	)
	err := e.store.WithTx(ctx, func(q *store.Queries) error {
		taskIDs = make([]int64, 0, len(a.TaggerIDs))

		music, err := q.GetMusic(ctx, a.MusicID)
		if err != nil {
			return err
		}
		if music == nil {
			return notFound("music", a.MusicID)
		}
		filename = music.Filename

		questions, err := q.QuestionsByIDs(ctx, a.QuestionIDs)
		if err != nil {
			return err
		}
		for _, qid := range a.QuestionIDs {
			question, ok := questions[qid]
			if !ok {
				return notFound("question", qid)
			}
			if len(question.Options) == 0 {
				return invalid("question", qid, "options", "question has no options")
			}
		}

		taggers, err := q.UsersByIDs(ctx, a.TaggerIDs)
		if err != nil {
			return err
		}
		for _, uid := range a.TaggerIDs {
			user, ok := taggers[uid]
			if !ok {
				return notFound("user", uid)
			}
			if !auth.Role(user.Role).Has(auth.CapTag) {
				return invalid("user", uid, "role", fmt.Sprintf("role %q cannot tag", user.Role))
			}
		}

		for _, uid := range a.TaggerIDs {
			task := &store.Task{MusicID: a.MusicID, TaggerID: uid, CreatorID: id.UserID}
			if err := q.CreateTask(ctx, task); err != nil {
				return err
			}
			for pos, qid := range a.QuestionIDs {
				if err := q.CreateRecord(ctx, &store.Record{TaskID: task.ID, QuestionID: qid, Position: pos}); err != nil {
					return err
				}
			}
			taskIDs = append(taskIDs, task.ID)
		}
		return nil
	})
	if err != nil {
		return nil, wrapOp("assign tasks", err)
	}

	e.log(ctx).Info("tasks assigned",
		logging.Int64(logging.FieldMusicID, a.MusicID),
		logging.Int("taggers", len(a.TaggerIDs)),
		logging.Int("questions", len(a.QuestionIDs)),
		logging.Event("tasks_assigned"),
	)
	e.notify(ctx, notifications.EventTasksAssigned, notifications.Payload{
		"count":    len(taskIDs),
		"filename": filename,
	})
	return taskIDs, nil
}
