package store

import (
	"errors"
	"time"
)

// ErrDuplicate reports a uniqueness constraint violation.
var ErrDuplicate = errors.New("duplicate value")

// TaskStatus represents the lifecycle of a tagging task.
type TaskStatus string

const (
	TaskPending  TaskStatus = "pending"
	TaskTagged   TaskStatus = "tagged"
	TaskReviewed TaskStatus = "reviewed"
	TaskRejected TaskStatus = "rejected"
)

var allTaskStatuses = []TaskStatus{TaskPending, TaskTagged, TaskReviewed, TaskRejected}

// AllTaskStatuses returns every task status in lifecycle order.
func AllTaskStatuses() []TaskStatus {
	out := make([]TaskStatus, len(allTaskStatuses))
	copy(out, allTaskStatuses)
	return out
}

// ParseTaskStatus validates a raw status string.
func ParseTaskStatus(raw string) (TaskStatus, bool) {
	for _, status := range allTaskStatuses {
		if string(status) == raw {
			return status, true
		}
	}
	return "", false
}

// IsTerminal reports whether no transition leaves the status.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskReviewed
}

// User is a persisted account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Question is a catalog entry answered by one record per task.
type Question struct {
	ID               int64
	Title            string
	Description      string
	IsMultipleChoice bool
	Options          []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasOption reports whether label is one of the question's current options.
func (q *Question) HasOption(label string) bool {
	for _, opt := range q.Options {
		if opt == label {
			return true
		}
	}
	return false
}

// MusicItem is an ingested audio file.
type MusicItem struct {
	ID                int64
	Filepath          string
	Filename          string
	DurationSeconds   *float64
	ValidTaggingCount int64
	CreatedAt         time.Time
}

// Task assigns one music item to one tagger. The *Name fields are joined
// display values and are ignored on write.
type Task struct {
	ID            int64
	MusicID       int64
	TaggerID      int64
	Status        TaskStatus
	TaggedAt      *time.Time
	ReviewerID    *int64
	ReviewedAt    *time.Time
	ReviewComment string
	CreatorID     int64
	CreatedAt     time.Time

	MusicFilename string
	MusicFilepath string
	TaggerName    string
	ReviewerName  string
	CreatorName   string
}

// Record holds one question's answer within a task. Question fields are
// joined from the current catalog entry.
type Record struct {
	ID         int64
	TaskID     int64
	QuestionID int64
	Position   int
	Selected   []string
	UpdatedAt  time.Time

	QuestionTitle       string
	QuestionDescription string
	IsMultipleChoice    bool
	Options             []string
}

// TaskFilter narrows ListTasks. Zero values mean "no filter".
type TaskFilter struct {
	Keyword    string
	Status     TaskStatus
	TaggerID   int64
	ReviewerID int64
	MusicID    int64
	Limit      int
	Offset     int
}

// UserFilter narrows ListUsers.
type UserFilter struct {
	Keyword string
	Role    string
}

// QuestionRefs counts records that reference a question.
type QuestionRefs struct {
	Total  int
	Active int
}

// ExportRow is one reviewed record joined with its task, music item, tagger,
// and question.
type ExportRow struct {
	MusicID             int64
	Filepath            string
	Filename            string
	TaskID              int64
	TaggerName          string
	RecordID            int64
	QuestionTitle       string
	QuestionDescription string
	IsMultipleChoice    bool
	Options             []string
	Selected            []string
}

// CountDrift reports a corrected valid_tagging_count.
type CountDrift struct {
	MusicID  int64
	Filepath string
	Stored   int64
	Actual   int64
}
