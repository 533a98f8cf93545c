package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// User is an account without credentials.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Session is returned by login.
type Session struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresAt string `json:"expires_at"`
	User      User   `json:"user"`
}

// Question is a catalog entry.
type Question struct {
	ID               int64    `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	IsMultipleChoice bool     `json:"is_multiple_choice"`
	Options          []string `json:"options"`
	CreatedAt        string   `json:"created_at,omitempty"`
	UpdatedAt        string   `json:"updated_at,omitempty"`
}

// Music is an ingested audio file.
type Music struct {
	ID                int64    `json:"id"`
	Filepath          string   `json:"filepath"`
	Filename          string   `json:"filename"`
	DurationSeconds   *float64 `json:"duration_seconds"`
	ValidTaggingCount int64    `json:"valid_tagging_count"`
	CreatedAt         string   `json:"created_at,omitempty"`
}

// Task is one music item assigned to one tagger.
type Task struct {
	ID            int64   `json:"id"`
	MusicID       int64   `json:"music_id"`
	MusicFilename string  `json:"music_filename"`
	MusicFilepath string  `json:"music_filepath"`
	TaggerID      int64   `json:"tagger_id"`
	TaggerName    string  `json:"tagger_name"`
	Status        string  `json:"status"`
	TaggedAt      *string `json:"tagged_at"`
	ReviewerID    *int64  `json:"reviewer_id"`
	ReviewerName  string  `json:"reviewer_name,omitempty"`
	ReviewedAt    *string `json:"reviewed_at"`
	ReviewComment string  `json:"review_comment"`
	CreatorID     int64   `json:"creator_id"`
	CreatorName   string  `json:"creator_name"`
	CreatedAt     string  `json:"created_at,omitempty"`
}

// Record is one tagger's answer to one question within a task.
type Record struct {
	ID                  int64    `json:"id"`
	TaskID              int64    `json:"task_id"`
	QuestionID          int64    `json:"question_id"`
	QuestionTitle       string   `json:"question_title"`
	QuestionDescription string   `json:"question_description"`
	IsMultipleChoice    bool     `json:"is_multiple_choice"`
	Options             []string `json:"options"`
	SelectedOptions     []string `json:"selected_options"`
	UpdatedAt           string   `json:"updated_at,omitempty"`
}

// TaskDetail is a task with its records.
type TaskDetail struct {
	Task    Task     `json:"task"`
	Records []Record `json:"records"`
}

// TaskPage is a page of the task listing.
type TaskPage struct {
	Items    []Task `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// ImportResult summarizes a music import.
type ImportResult struct {
	SuccessCount int      `json:"success_count"`
	ErrorCount   int      `json:"error_count"`
	SuccessIDs   []int64  `json:"success_ids"`
	ErrorPaths   []string `json:"error_paths"`
}

// Drift reports a corrected valid_tagging_count.
type Drift struct {
	MusicID  int64  `json:"music_id"`
	Filepath string `json:"filepath"`
	Stored   int64  `json:"stored"`
	Actual   int64  `json:"actual"`
}

// AssignResponse lists the tasks created by an assignment.
type AssignResponse struct {
	TaskIDs []int64 `json:"task_ids"`
}

// Status describes the running service.
type Status struct {
	Running      bool   `json:"running"`
	PID          int    `json:"pid"`
	DatabasePath string `json:"database_path"`
	LockFilePath string `json:"lock_file_path,omitempty"`
	SessionID    string `json:"session_id,omitempty"`
	StartedAt    string `json:"started_at,omitempty"`
	Archive      bool   `json:"archive_enabled"`
}

// LogPage is a slice of the daemon log. Next is the byte offset to pass as
// since on the following request.
type LogPage struct {
	Lines []string `json:"lines"`
	Next  int64    `json:"next"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}
