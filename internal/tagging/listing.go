package tagging

import (
	"context"
	"fmt"
	"math"
	"strings"

	"tagflow/internal/auth"
	"tagflow/internal/store"
	"tagflow/internal/textutil"
)

// TaskQuery filters and pages ListTasks. Zero values mean "unset".
type TaskQuery struct {
	Keyword    string
	Status     string
	TaggerID   int64
	ReviewerID int64
	MusicID    int64
	Page       int
	PageSize   int
}

// TaskPage is one page of tasks plus the total match count.
type TaskPage struct {
	Items    []*store.Task
	Total    int
	Page     int
	PageSize int
}

// ListTasks returns tasks newest first. Callers without the review
// capability only ever see their own tasks.
func (e *Engine) ListTasks(ctx context.Context, id auth.Identity, query TaskQuery) (*TaskPage, error) {
	if err := id.RequireUser("list tasks"); err != nil {
		return nil, err
	}

	page := query.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return nil, invalid("task query", 0, "page", "page must be at least 1")
	}
	size := query.PageSize
	if size == 0 {
		size = e.policy.DefaultPageSize
	}
	if size < 1 || size > e.policy.MaxPageSize {
		return nil, invalid("task query", 0, "page_size", fmt.Sprintf("page_size must be between 1 and %d", e.policy.MaxPageSize))
	}
	if page-1 > math.MaxInt/size {
		return nil, invalid("task query", 0, "page", "page out of range")
	}

	filter := store.TaskFilter{
		Keyword:    textutil.CollapseSpace(query.Keyword),
		TaggerID:   query.TaggerID,
		ReviewerID: query.ReviewerID,
		MusicID:    query.MusicID,
		Limit:      size,
		Offset:     (page - 1) * size,
	}
	if raw := strings.ToLower(strings.TrimSpace(query.Status)); raw != "" {
		status, ok := store.ParseTaskStatus(raw)
		if !ok {
			return nil, invalid("task query", 0, "status", fmt.Sprintf("unknown status %q", query.Status))
		}
		filter.Status = status
	}
	if !id.Can(auth.CapReview) {
		filter.TaggerID = id.UserID
	}

	items, total, err := e.store.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if items == nil {
		items = []*store.Task{}
	}
	return &TaskPage{Items: items, Total: total, Page: page, PageSize: size}, nil
}
