package api

import (
	"time"

	"tagflow/internal/accounts"
	"tagflow/internal/library"
	"tagflow/internal/store"
	"tagflow/internal/tagging"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// FromUser converts a stored account.
func FromUser(u *store.User) User {
	if u == nil {
		return User{}
	}
	return User{ID: u.ID, Username: u.Username, Role: u.Role, CreatedAt: formatTime(u.CreatedAt)}
}

// FromUsers converts a list of accounts.
func FromUsers(users []*store.User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		out = append(out, FromUser(u))
	}
	return out
}

// FromSession converts a login result.
func FromSession(s *accounts.Session) Session {
	if s == nil {
		return Session{}
	}
	return Session{
		Token:     s.Token,
		TokenType: "bearer",
		ExpiresAt: formatTime(s.ExpiresAt),
		User:      FromUser(s.User),
	}
}

// FromQuestion converts a catalog question.
func FromQuestion(q *store.Question) Question {
	if q == nil {
		return Question{}
	}
	return Question{
		ID:               q.ID,
		Title:            q.Title,
		Description:      q.Description,
		IsMultipleChoice: q.IsMultipleChoice,
		Options:          nonNil(q.Options),
		CreatedAt:        formatTime(q.CreatedAt),
		UpdatedAt:        formatTime(q.UpdatedAt),
	}
}

// FromQuestions converts a question list.
func FromQuestions(questions []*store.Question) []Question {
	out := make([]Question, 0, len(questions))
	for _, q := range questions {
		out = append(out, FromQuestion(q))
	}
	return out
}

// FromMusic converts a music item.
func FromMusic(m *store.MusicItem) Music {
	if m == nil {
		return Music{}
	}
	return Music{
		ID:                m.ID,
		Filepath:          m.Filepath,
		Filename:          m.Filename,
		DurationSeconds:   m.DurationSeconds,
		ValidTaggingCount: m.ValidTaggingCount,
		CreatedAt:         formatTime(m.CreatedAt),
	}
}

// FromMusicList converts a music list.
func FromMusicList(items []*store.MusicItem) []Music {
	out := make([]Music, 0, len(items))
	for _, m := range items {
		out = append(out, FromMusic(m))
	}
	return out
}

// FromTask converts a task.
func FromTask(t *store.Task) Task {
	if t == nil {
		return Task{}
	}
	return Task{
		ID:            t.ID,
		MusicID:       t.MusicID,
		MusicFilename: t.MusicFilename,
		MusicFilepath: t.MusicFilepath,
		TaggerID:      t.TaggerID,
		TaggerName:    t.TaggerName,
		Status:        string(t.Status),
		TaggedAt:      formatTimePtr(t.TaggedAt),
		ReviewerID:    t.ReviewerID,
		ReviewerName:  t.ReviewerName,
		ReviewedAt:    formatTimePtr(t.ReviewedAt),
		ReviewComment: t.ReviewComment,
		CreatorID:     t.CreatorID,
		CreatorName:   t.CreatorName,
		CreatedAt:     formatTime(t.CreatedAt),
	}
}

// FromRecord converts a record.
func FromRecord(r *store.Record) Record {
	if r == nil {
		return Record{}
	}
	return Record{
		ID:                  r.ID,
		TaskID:              r.TaskID,
		QuestionID:          r.QuestionID,
		QuestionTitle:       r.QuestionTitle,
		QuestionDescription: r.QuestionDescription,
		IsMultipleChoice:    r.IsMultipleChoice,
		Options:             nonNil(r.Options),
		SelectedOptions:     nonNil(r.Selected),
		UpdatedAt:           formatTime(r.UpdatedAt),
	}
}

// FromTaskDetail converts a task with its records.
func FromTaskDetail(d *tagging.TaskDetail) TaskDetail {
	if d == nil {
		return TaskDetail{Records: []Record{}}
	}
	records := make([]Record, 0, len(d.Records))
	for _, r := range d.Records {
		records = append(records, FromRecord(r))
	}
	return TaskDetail{Task: FromTask(d.Task), Records: records}
}

// FromTaskPage converts a listing page.
func FromTaskPage(p *tagging.TaskPage) TaskPage {
	if p == nil {
		return TaskPage{Items: []Task{}}
	}
	items := make([]Task, 0, len(p.Items))
	for _, t := range p.Items {
		items = append(items, FromTask(t))
	}
	return TaskPage{Items: items, Total: p.Total, Page: p.Page, PageSize: p.PageSize}
}

// FromImportResult converts a library import summary.
func FromImportResult(r *library.ImportResult) ImportResult {
	if r == nil {
		return ImportResult{SuccessIDs: []int64{}, ErrorPaths: []string{}}
	}
	out := ImportResult{
		SuccessCount: r.SuccessCount,
		ErrorCount:   r.ErrorCount,
		SuccessIDs:   r.SuccessIDs,
		ErrorPaths:   nonNil(r.ErrorPaths),
	}
	if out.SuccessIDs == nil {
		out.SuccessIDs = []int64{}
	}
	return out
}

// FromDrift converts counter drift reports.
func FromDrift(drift []store.CountDrift) []Drift {
	out := make([]Drift, 0, len(drift))
	for _, d := range drift {
		out = append(out, Drift{MusicID: d.MusicID, Filepath: d.Filepath, Stored: d.Stored, Actual: d.Actual})
	}
	return out
}
