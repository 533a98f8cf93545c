package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tagflow/internal/api"
	"tagflow/internal/testsupport"
)

func TestTaggingRoundTripThroughCLI(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteAudio(t, env.musicRoot, "song.mp3")

	mustRun(t, env, "user", "add", "alice", "--password", "alice-pass")
	mustRun(t, env, "user", "add", "rita", "--password", "rita-pass", "--role", "reviewer")

	var users []api.User
	decodeJSON(t, mustRun(t, env, "--json", "user", "list"), &users)
	if len(users) != 3 {
		t.Fatalf("expected admin plus two users, got %+v", users)
	}

	var genre, mood api.Question
	decodeJSON(t, mustRun(t, env, "--json", "question", "add", "Genre", "-o", "Rock", "-o", "Jazz"), &genre)
	decodeJSON(t, mustRun(t, env, "--json", "question", "add", "Mood", "--multiple", "-o", "Happy", "-o", "Sad"), &mood)

	var imported api.ImportResult
	decodeJSON(t, mustRun(t, env, "--json", "music", "import", "song.mp3", "missing.mp3"), &imported)
	if imported.SuccessCount != 1 || imported.ErrorCount != 1 {
		t.Fatalf("unexpected import result: %+v", imported)
	}
	musicID := imported.SuccessIDs[0]
	musicArg := formatID(musicID)

	var assigned api.AssignResponse
	decodeJSON(t, mustRun(t, env, "--json", "task", "assign",
		"--music", musicArg,
		"--question", formatID(genre.ID)+","+formatID(mood.ID),
		"--tagger", "alice",
	), &assigned)
	if len(assigned.TaskIDs) != 1 {
		t.Fatalf("expected one task, got %+v", assigned)
	}
	taskArg := formatID(assigned.TaskIDs[0])

	var detail api.TaskDetail
	decodeJSON(t, mustRun(t, env, "--json", "--as", "alice", "task", "show", taskArg), &detail)
	if len(detail.Records) != 2 || detail.Records[0].QuestionTitle != "Genre" {
		t.Fatalf("unexpected records: %+v", detail.Records)
	}

	mustRun(t, env, "--as", "alice", "task", "answer", formatID(detail.Records[0].ID), "Rock")
	mustRun(t, env, "--as", "alice", "task", "answer", formatID(detail.Records[1].ID), "Happy", "Sad")
	out := mustRun(t, env, "--as", "alice", "task", "finish", taskArg)
	requireContains(t, out, "is now tagged")

	if _, _, err := runCLI(t, env, "--as", "alice", "task", "review", taskArg, "agreed"); err == nil {
		t.Fatal("expected tagger review to be forbidden")
	}
	out = mustRun(t, env, "--as", "rita", "task", "review", taskArg, "AGREED", "--comment", "looks right")
	requireContains(t, out, "is now reviewed")

	var items []api.Music
	decodeJSON(t, mustRun(t, env, "--json", "music", "list"), &items)
	if len(items) != 1 || items[0].ValidTaggingCount != 1 {
		t.Fatalf("expected valid tagging count 1, got %+v", items)
	}

	out = mustRun(t, env, "export", musicArg, "--stdout")
	requireContains(t, out, `"selected_options"`)
	requireContains(t, out, "Rock")

	out = mustRun(t, env, "export", musicArg)
	requireContains(t, out, env.exportDir)
	matches, err := filepath.Glob(filepath.Join(env.exportDir, "tagging_records_*.json"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one export file, got %v (%v)", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	requireContains(t, string(data), `"tagger": "alice"`)

	out = mustRun(t, env, "task", "recount")
	requireContains(t, out, "All totals consistent")

	mustRun(t, env, "task", "remove", taskArg)
	if _, _, err := runCLI(t, env, "task", "show", taskArg); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected removed task to be gone, got %v", err)
	}
}

func TestTaskRemoveRequiresAdmin(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteAudio(t, env.musicRoot, "a.wav")

	mustRun(t, env, "user", "add", "alice", "--password", "alice-pass")
	var genre api.Question
	decodeJSON(t, mustRun(t, env, "--json", "question", "add", "Genre", "-o", "Rock"), &genre)
	var imported api.ImportResult
	decodeJSON(t, mustRun(t, env, "--json", "music", "import", "a.wav"), &imported)
	var assigned api.AssignResponse
	decodeJSON(t, mustRun(t, env, "--json", "task", "assign",
		"--music", formatID(imported.SuccessIDs[0]),
		"--question", formatID(genre.ID),
		"--tagger", "alice",
	), &assigned)
	taskArg := formatID(assigned.TaskIDs[0])

	_, _, err := runCLI(t, env, "--as", "alice", "task", "remove", taskArg)
	if err == nil || !strings.Contains(err.Error(), "forbidden") {
		t.Fatalf("expected tagger removal to be forbidden, got %v", err)
	}
	mustRun(t, env, "--as", "alice", "task", "show", taskArg)
}

func TestTaskListScopesTaggers(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteAudio(t, env.musicRoot, "a.wav")

	mustRun(t, env, "user", "add", "alice", "--password", "alice-pass")
	mustRun(t, env, "user", "add", "bob", "--password", "bob-pass")
	var q api.Question
	decodeJSON(t, mustRun(t, env, "--json", "question", "add", "Genre", "-o", "Rock"), &q)
	var imported api.ImportResult
	decodeJSON(t, mustRun(t, env, "--json", "music", "import", "a.wav"), &imported)
	mustRun(t, env, "task", "assign", "--music", formatID(imported.SuccessIDs[0]),
		"--question", formatID(q.ID), "--tagger", "alice,bob")

	tests := []struct {
		as    string
		total int
	}{
		{as: "admin", total: 2},
		{as: "alice", total: 1},
		{as: "bob", total: 1},
	}
	for _, tc := range tests {
		t.Run(tc.as, func(t *testing.T) {
			var page api.TaskPage
			decodeJSON(t, mustRun(t, env, "--json", "--as", tc.as, "task", "list"), &page)
			if page.Total != tc.total {
				t.Fatalf("expected %d tasks, got %+v", tc.total, page)
			}
		})
	}

	out := mustRun(t, env, "task", "list", "--status", "pending")
	requireContains(t, out, "alice")
	requireContains(t, out, "2 of 2")
}

func TestQuestionUpdateAndRemove(t *testing.T) {
	env := setupCLITestEnv(t)

	var q api.Question
	decodeJSON(t, mustRun(t, env, "--json", "question", "add", "Genre", "-o", "Rock"), &q)
	id := formatID(q.ID)

	var updated api.Question
	decodeJSON(t, mustRun(t, env, "--json", "question", "update", id, "--option", "Rock", "--option", "Pop", "--title", "Style"), &updated)
	if updated.Title != "Style" || strings.Join(updated.Options, ",") != "Rock,Pop" {
		t.Fatalf("unexpected update: %+v", updated)
	}

	out := mustRun(t, env, "question", "list")
	requireContains(t, out, "Style")

	mustRun(t, env, "question", "remove", id)
	out = mustRun(t, env, "question", "list")
	requireContains(t, out, "No questions defined")
}

func TestCommandErrors(t *testing.T) {
	env := setupCLITestEnv(t)
	mustRun(t, env, "user", "add", "alice", "--password", "alice-pass")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown acting user", args: []string{"--as", "ghost", "music", "list"}, want: `acting user "ghost"`},
		{name: "tagger cannot add questions", args: []string{"--as", "alice", "question", "add", "Genre", "-o", "Rock"}, want: "forbidden"},
		{name: "bad id", args: []string{"task", "show", "abc"}, want: "invalid task id"},
		{name: "missing task", args: []string{"task", "show", "99"}, want: "not found"},
		{name: "bad review result", args: []string{"task", "review", "1", "maybe"}, want: "AGREED or DISAGREED"},
		{name: "import without paths", args: []string{"music", "import"}, want: "no paths given"},
		{name: "archive disabled", args: []string{"export", "1", "--archive"}, want: "archive.enabled is false"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := runCLI(t, env, tc.args...)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestStatusReportsStoppedDaemon(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRun(t, env, "status")
	requireContains(t, out, "Not running")
	requireContains(t, out, "Database")
	requireContains(t, out, "pending")
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected plain output for non-terminal writer, got %q", out)
	}
}

func formatID(id int64) string {
	return joinInt64([]int64{id})
}
