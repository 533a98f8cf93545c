package tagging_test

import (
	"context"
	"math"
	"testing"

	"tagflow/internal/config"
	"tagflow/internal/services"
	"tagflow/internal/store"
	"tagflow/internal/tagging"
	"tagflow/internal/testsupport"
)

func TestCreateQuestionValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input tagging.QuestionInput
		kind  string
	}{
		{"blank title", tagging.QuestionInput{Title: "  ", Options: []string{"A"}}, services.KindValidation},
		{"no options", tagging.QuestionInput{Title: "Tempo"}, services.KindValidation},
		{"blank option", tagging.QuestionInput{Title: "Tempo", Options: []string{"Fast", " "}}, services.KindValidation},
		{"case-folded duplicate", tagging.QuestionInput{Title: "Tempo", Options: []string{"Fast", " fast"}}, services.KindValidation},
		{"title taken", tagging.QuestionInput{Title: "genre", Options: []string{"A"}}, services.KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.engine.CreateQuestion(ctx, h.admin, tt.input)
			requireKind(t, err, tt.kind)
		})
	}

	_, err := h.engine.CreateQuestion(ctx, h.reviewer, tagging.QuestionInput{Title: "Tempo", Options: []string{"Fast"}})
	requireKind(t, err, services.KindForbidden)

	q, err := h.engine.CreateQuestion(ctx, h.admin, tagging.QuestionInput{
		Title:            "  Instruments ",
		Description:      "what do you hear",
		IsMultipleChoice: true,
		Options:          []string{" Guitar", "Drums "},
	})
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	if q.ID == 0 || q.Title != "Instruments" || q.Options[0] != "Guitar" || q.Options[1] != "Drums" {
		t.Fatalf("unexpected question: %#v", q)
	}

	questions, err := h.engine.ListQuestions(ctx, h.tagger3)
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	titles := make([]string, len(questions))
	for i, question := range questions {
		titles[i] = question.Title
	}
	if len(titles) != 3 || titles[0] != "Genre" || titles[1] != "Instruments" || titles[2] != "Mood" {
		t.Fatalf("expected title order, got %v", titles)
	}
}

func TestUpdateQuestionKeepsStaleSelections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	taskID := h.assign(t, h.tagger3)[0]
	moodRec := h.detail(t, taskID).Records[1].ID
	h.mustSelect(t, h.tagger3, moodRec, "Sad")

	updated, err := h.engine.UpdateQuestion(ctx, h.admin, h.mood.ID, tagging.QuestionPatch{
		Options: []string{"Happy", "Calm", "Energetic"},
	})
	if err != nil {
		t.Fatalf("UpdateQuestion: %v", err)
	}
	if len(updated.Options) != 3 || updated.Options[2] != "Energetic" || updated.Title != "Mood" {
		t.Fatalf("unexpected update: %#v", updated)
	}

	rec := h.detail(t, taskID).Records[1]
	if len(rec.Selected) != 1 || rec.Selected[0] != "Sad" {
		t.Fatalf("stale selection should be preserved, got %v", rec.Selected)
	}
	_, err = h.engine.SetSelection(ctx, h.tagger3, moodRec, []string{"Sad"})
	requireKind(t, err, services.KindValidation)

	empty := []string{}
	_, err = h.engine.UpdateQuestion(ctx, h.admin, h.mood.ID, tagging.QuestionPatch{Options: empty})
	requireKind(t, err, services.KindValidation)

	title := "Genre"
	_, err = h.engine.UpdateQuestion(ctx, h.admin, h.mood.ID, tagging.QuestionPatch{Title: &title})
	requireKind(t, err, services.KindConflict)

	_, err = h.engine.UpdateQuestion(ctx, h.admin, 9999, tagging.QuestionPatch{Title: &title})
	requireKind(t, err, services.KindNotFound)
	_, err = h.engine.UpdateQuestion(ctx, h.tagger3, h.mood.ID, tagging.QuestionPatch{Title: &title})
	requireKind(t, err, services.KindForbidden)
}

func TestDeleteQuestionPolicies(t *testing.T) {
	tests := []struct {
		name     string
		policy   string
		reviewed bool
		kind     string
	}{
		{"any reference blocks pending work", config.QuestionDeleteAnyReference, false, services.KindConflict},
		{"any reference blocks reviewed work", config.QuestionDeleteAnyReference, true, services.KindConflict},
		{"active reference blocks pending work", config.QuestionDeleteActiveReference, false, services.KindConflict},
		{"active reference allows reviewed work", config.QuestionDeleteActiveReference, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testsupport.WithQuestionDeletePolicy(tt.policy))
			ctx := context.Background()
			taskID := h.assign(t, h.tagger3)[0]
			genreRec := h.detail(t, taskID).Records[0].ID
			if tt.reviewed {
				h.mustSelect(t, h.tagger3, genreRec, "Rock")
				h.mustFinish(t, h.tagger3, taskID)
				h.mustReview(t, taskID, tagging.ReviewAgreed, "")
			}

			err := h.engine.DeleteQuestion(ctx, h.admin, h.genre.ID)
			if tt.kind != "" {
				requireKind(t, err, tt.kind)
				if _, err := h.engine.Question(ctx, h.admin, h.genre.ID); err != nil {
					t.Fatalf("question should survive a refused delete: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DeleteQuestion: %v", err)
			}
			records := h.detail(t, taskID).Records
			if len(records) != 1 || records[0].QuestionID != h.mood.ID {
				t.Fatalf("expected genre record removed with the question, got %d records", len(records))
			}
		})
	}
}

func TestDeleteQuestionUnreferencedAndMissing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	requireKind(t, h.engine.DeleteQuestion(ctx, h.reviewer, h.genre.ID), services.KindForbidden)
	if err := h.engine.DeleteQuestion(ctx, h.admin, h.genre.ID); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}
	requireKind(t, h.engine.DeleteQuestion(ctx, h.admin, h.genre.ID), services.KindNotFound)
	_, err := h.engine.Question(ctx, h.admin, h.genre.ID)
	requireKind(t, err, services.KindNotFound)
}

func TestListTasksVisibilityAndPaging(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	first := h.assign(t, h.tagger3, h.tagger4)
	second := h.assign(t, h.tagger3)

	page, err := h.engine.ListTasks(ctx, h.tagger3, tagging.TaskQuery{TaggerID: h.tagger4.UserID})
	if err != nil {
		t.Fatalf("ListTasks as tagger: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("tagger should only see own 2 tasks, got %d", page.Total)
	}
	for _, task := range page.Items {
		if task.TaggerID != h.tagger3.UserID {
			t.Fatalf("tagger saw foreign task %d", task.ID)
		}
	}

	page, err = h.engine.ListTasks(ctx, h.reviewer, tagging.TaskQuery{PageSize: 2})
	if err != nil {
		t.Fatalf("ListTasks as reviewer: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 2 || page.Page != 1 || page.PageSize != 2 {
		t.Fatalf("unexpected page: total=%d len=%d", page.Total, len(page.Items))
	}
	if page.Items[0].ID != second[0] {
		t.Fatalf("expected newest task first, got %d", page.Items[0].ID)
	}

	page, err = h.engine.ListTasks(ctx, h.reviewer, tagging.TaskQuery{PageSize: 2, Page: 2})
	if err != nil {
		t.Fatalf("ListTasks page 2: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != first[0] {
		t.Fatalf("unexpected second page: %+v", page.Items)
	}

	page, err = h.engine.ListTasks(ctx, h.admin, tagging.TaskQuery{Keyword: "THEO"})
	if err != nil {
		t.Fatalf("ListTasks keyword: %v", err)
	}
	if page.Total != 1 || page.Items[0].ID != first[1] {
		t.Fatalf("keyword should match tagger username, got %d", page.Total)
	}

	page, err = h.engine.ListTasks(ctx, h.admin, tagging.TaskQuery{Keyword: "track07"})
	if err != nil || page.Total != 3 {
		t.Fatalf("keyword should match filename, got %v (%v)", page, err)
	}

	page, err = h.engine.ListTasks(ctx, h.admin, tagging.TaskQuery{Status: "TAGGED"})
	if err != nil || page.Total != 0 || page.Items == nil {
		t.Fatalf("expected empty non-nil page, got %+v (%v)", page, err)
	}

	bad := []tagging.TaskQuery{
		{Page: -1},
		{PageSize: -5},
		{PageSize: 101},
		{Page: math.MaxInt, PageSize: 50},
		{Status: "done"},
	}
	for _, q := range bad {
		_, err := h.engine.ListTasks(ctx, h.admin, q)
		requireKind(t, err, services.KindValidation)
	}
}

func TestTaskReadVisibility(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ids := h.assign(t, h.tagger3, h.tagger4)

	if _, err := h.engine.Task(ctx, h.tagger3, ids[0]); err != nil {
		t.Fatalf("tagger should read own task: %v", err)
	}
	_, err := h.engine.Task(ctx, h.tagger3, ids[1])
	requireKind(t, err, services.KindForbidden)

	detail, err := h.engine.Task(ctx, h.reviewer, ids[1])
	if err != nil {
		t.Fatalf("reviewer read: %v", err)
	}
	if detail.Task.TaggerName != "theo" || detail.Records[0].QuestionTitle != "Genre" {
		t.Fatalf("unexpected detail: %+v", detail.Task)
	}
	if detail.Task.Status != store.TaskPending {
		t.Fatalf("unexpected status %s", detail.Task.Status)
	}
}
