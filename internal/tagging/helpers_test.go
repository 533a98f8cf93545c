package tagging_test

import (
	"context"
	"testing"

	"tagflow/internal/auth"
	"tagflow/internal/logging"
	"tagflow/internal/services"
	"tagflow/internal/store"
	"tagflow/internal/tagging"
	"tagflow/internal/testsupport"
)

type harness struct {
	engine   *tagging.Engine
	st       *store.Store
	admin    auth.Identity
	reviewer auth.Identity
	tagger3  auth.Identity
	tagger4  auth.Identity
	music    *store.MusicItem
	genre    *store.Question
	mood     *store.Question
}

func newHarness(t *testing.T, opts ...testsupport.ConfigOption) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	st := testsupport.MustOpenStore(t, cfg)

	identity := func(u *store.User) auth.Identity {
		return auth.Identity{UserID: u.ID, Role: auth.Role(u.Role)}
	}
	return &harness{
		engine:   tagging.NewEngine(cfg, st, logging.NewNop()),
		st:       st,
		admin:    identity(testsupport.SeedUser(t, st, "ada", "admin")),
		reviewer: identity(testsupport.SeedUser(t, st, "rick", "reviewer")),
		tagger3:  identity(testsupport.SeedUser(t, st, "tess", "tagger")),
		tagger4:  identity(testsupport.SeedUser(t, st, "theo", "tagger")),
		music:    testsupport.SeedMusic(t, st, "/music/track07.mp3"),
		genre:    testsupport.SeedQuestion(t, st, "Genre", false, "Pop", "Rock"),
		mood:     testsupport.SeedQuestion(t, st, "Mood", true, "Happy", "Sad", "Calm"),
	}
}

// assign fans the harness music item out to the given taggers for Genre and Mood.
func (h *harness) assign(t *testing.T, taggers ...auth.Identity) []int64 {
	t.Helper()
	ids := make([]int64, len(taggers))
	for i, tagger := range taggers {
		ids[i] = tagger.UserID
	}
	taskIDs, err := h.engine.Assign(context.Background(), h.admin, tagging.Assignment{
		MusicID:     h.music.ID,
		QuestionIDs: []int64{h.genre.ID, h.mood.ID},
		TaggerIDs:   ids,
	})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	return taskIDs
}

func (h *harness) detail(t *testing.T, taskID int64) *tagging.TaskDetail {
	t.Helper()
	detail, err := h.engine.Task(context.Background(), h.admin, taskID)
	if err != nil {
		t.Fatalf("Task(%d): %v", taskID, err)
	}
	return detail
}

func (h *harness) validCount(t *testing.T) int64 {
	t.Helper()
	music, err := h.st.GetMusic(context.Background(), h.music.ID)
	if err != nil || music == nil {
		t.Fatalf("GetMusic: %v", err)
	}
	return music.ValidTaggingCount
}

func (h *harness) mustSelect(t *testing.T, who auth.Identity, recordID int64, labels ...string) {
	t.Helper()
	if _, err := h.engine.SetSelection(context.Background(), who, recordID, labels); err != nil {
		t.Fatalf("SetSelection(%d, %v): %v", recordID, labels, err)
	}
}

func (h *harness) mustFinish(t *testing.T, who auth.Identity, taskID int64) *store.Task {
	t.Helper()
	task, err := h.engine.Finish(context.Background(), who, taskID)
	if err != nil {
		t.Fatalf("Finish(%d): %v", taskID, err)
	}
	return task
}

func (h *harness) mustReview(t *testing.T, taskID int64, result tagging.ReviewResult, comment string) *store.Task {
	t.Helper()
	task, err := h.engine.Review(context.Background(), h.reviewer, taskID, result, comment)
	if err != nil {
		t.Fatalf("Review(%d, %s): %v", taskID, result, err)
	}
	return task
}

func requireKind(t *testing.T, err error, kind string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := services.Kind(err); got != kind {
		t.Fatalf("expected %s error, got %s: %v", kind, got, err)
	}
}
