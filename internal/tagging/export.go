package tagging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tagflow/internal/auth"
	"tagflow/internal/logging"
	"tagflow/internal/notifications"
)

// ExportRecord is one reviewed answer in the export document.
type ExportRecord struct {
	QuestionTitle       string   `json:"question_title"`
	QuestionDescription string   `json:"question_description"`
	IsMultipleChoice    bool     `json:"is_multiple_choice"`
	Options             []string `json:"options"`
	SelectedOptions     []string `json:"selected_options"`
}

// ExportEntry is one reviewed task in the export document.
type ExportEntry struct {
	Filepath string         `json:"filepath"`
	Filename string         `json:"filename"`
	TaskID   int64          `json:"task_id"`
	Tagger   string         `json:"tagger"`
	Records  []ExportRecord `json:"records"`
}

// ExportFileName returns the suggested download name for an export taken at t.
func ExportFileName(t time.Time) string {
	return "tagging_records_" + t.Format("20060102150405") + ".json"
}

// Export collects the reviewed tasks of musicIDs ordered by music filepath
// and task id. Unreviewed tasks are left out; no reviewed data yields an
// empty slice.
func (e *Engine) Export(ctx context.Context, id auth.Identity, musicIDs []int64) ([]ExportEntry, error) {
	if err := id.Require(auth.CapAdmin, "export records"); err != nil {
		return nil, err
	}
	if len(musicIDs) == 0 {
		return nil, invalid("export", 0, "music_ids", "at least one music id is required")
	}

	rows, err := e.store.ReviewedExportRows(ctx, musicIDs)
	if err != nil {
		return nil, fmt.Errorf("export records: %w", err)
	}

	entries := make([]ExportEntry, 0)
	for _, row := range rows {
		if n := len(entries); n == 0 || entries[n-1].TaskID != row.TaskID {
			entries = append(entries, ExportEntry{
				Filepath: row.Filepath,
				Filename: row.Filename,
				TaskID:   row.TaskID,
				Tagger:   row.TaggerName,
				Records:  []ExportRecord{},
			})
		}
		last := &entries[len(entries)-1]
		last.Records = append(last.Records, ExportRecord{
			QuestionTitle:       row.QuestionTitle,
			QuestionDescription: row.QuestionDescription,
			IsMultipleChoice:    row.IsMultipleChoice,
			Options:             row.Options,
			SelectedOptions:     row.Selected,
		})
	}

	e.log(ctx).Info("records exported",
		logging.Int("music_items", len(musicIDs)),
		logging.Int("tasks", len(entries)),
		logging.Event("records_exported"),
	)
	return entries, nil
}

// ExportRecords renders Export as an indented JSON document. An empty
// result is the document "[]".
func (e *Engine) ExportRecords(ctx context.Context, id auth.Identity, musicIDs []int64) ([]byte, error) {
	entries, err := e.Export(ctx, id, musicIDs)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

// ExportArchived announces an export document stored in the archive bucket.
func (e *Engine) ExportArchived(ctx context.Context, bucket, key string) {
	e.notify(ctx, notifications.EventExportArchived, notifications.Payload{
		"bucket": bucket,
		"key":    key,
	})
}
