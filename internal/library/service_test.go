package library_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tagflow/internal/auth"
	"tagflow/internal/config"
	"tagflow/internal/library"
	"tagflow/internal/logging"
	"tagflow/internal/services"
	"tagflow/internal/store"
	"tagflow/internal/testsupport"
)

type fixture struct {
	cfg    *config.Config
	st     *store.Store
	svc    *library.Service
	admin  auth.Identity
	tagger auth.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	identity := func(u *store.User) auth.Identity {
		return auth.Identity{UserID: u.ID, Role: auth.Role(u.Role)}
	}
	return &fixture{
		cfg:    cfg,
		st:     st,
		svc:    library.NewService(cfg, st, logging.NewNop()),
		admin:  identity(testsupport.SeedUser(t, st, "ada", "admin")),
		tagger: identity(testsupport.SeedUser(t, st, "tess", "tagger")),
	}
}

func TestImportPaths(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.cfg.Paths.MusicRoot

	song := testsupport.WriteAudio(t, root, "song.mp3")
	testsupport.WriteAudio(t, root, "nested/Loud.WAV")
	notes := testsupport.WriteAudio(t, root, "notes.txt")
	if err := os.MkdirAll(filepath.Join(root, "folder.mp3"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	result, err := f.svc.ImportPaths(ctx, f.admin, []string{
		song,
		"nested/Loud.WAV",
		notes,
		filepath.Join(root, "missing.mp3"),
		filepath.Join(root, "folder.mp3"),
		song,
		"  ",
	})
	if err != nil {
		t.Fatalf("ImportPaths: %v", err)
	}
	if result.SuccessCount != 2 || len(result.SuccessIDs) != 2 {
		t.Fatalf("unexpected successes %+v", result)
	}
	if result.ErrorCount != 5 || len(result.ErrorPaths) != 5 {
		t.Fatalf("unexpected errors %+v", result.ErrorPaths)
	}
	wantReasons := []string{"unsupported format", "does not exist", "not a regular file", "duplicate in request", "empty path"}
	for i, reason := range wantReasons {
		if !strings.Contains(result.ErrorPaths[i], reason) {
			t.Fatalf("error path %d = %q, want reason %q", i, result.ErrorPaths[i], reason)
		}
	}

	items, err := f.svc.List(ctx, f.tagger, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[0].Filename != "Loud" || items[1].Filename != "song" {
		t.Fatalf("unexpected catalog %+v", items)
	}
	if items[0].Filepath != filepath.Join(root, "nested", "Loud.WAV") {
		t.Fatalf("relative path not resolved under music root: %s", items[0].Filepath)
	}

	again, err := f.svc.ImportPaths(ctx, f.admin, []string{song})
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if again.SuccessCount != 0 || again.ErrorCount != 1 || !strings.Contains(again.ErrorPaths[0], "already imported") {
		t.Fatalf("expected already imported rejection, got %+v", again)
	}
}

func TestImportPathsGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.ImportPaths(ctx, f.tagger, []string{"a.mp3"}); !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.svc.ImportPaths(ctx, f.admin, nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation, got %v", err)
	}
}

func TestListFiltersByFilename(t *testing.T) {
	f := newFixture(t)
	testsupport.SeedMusic(t, f.st, "/music/alpha.mp3")
	testsupport.SeedMusic(t, f.st, "/music/beta.mp3")

	items, err := f.svc.List(context.Background(), f.tagger, "alp")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Filename != "alpha" {
		t.Fatalf("unexpected items %+v", items)
	}
	if _, err := f.svc.List(context.Background(), auth.Identity{}, ""); !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("expected forbidden for anonymous caller, got %v", err)
	}
}

func TestDeleteMusic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := testsupport.SeedMusic(t, f.st, "/music/alpha.mp3")

	if err := f.svc.Delete(ctx, f.tagger, item.ID); !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := f.svc.Delete(ctx, f.admin, item.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := f.svc.Delete(ctx, f.admin, item.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestOpenAudio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	path := testsupport.WriteAudio(t, f.cfg.Paths.MusicRoot, "clip.wav")
	result, err := f.svc.ImportPaths(ctx, f.admin, []string{path})
	if err != nil || result.SuccessCount != 1 {
		t.Fatalf("ImportPaths = %+v, %v", result, err)
	}
	id := result.SuccessIDs[0]

	audio, err := f.svc.OpenAudio(ctx, f.tagger, id)
	if err != nil {
		t.Fatalf("OpenAudio: %v", err)
	}
	data, err := io.ReadAll(audio)
	audio.Close()
	if err != nil {
		t.Fatalf("read audio: %v", err)
	}
	if audio.ContentType != "audio/wav" || audio.Name != "clip.wav" || int64(len(data)) != audio.Size {
		t.Fatalf("unexpected audio %+v (%d bytes)", audio, len(data))
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := f.svc.OpenAudio(ctx, f.tagger, id); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for vanished file, got %v", err)
	}
	if _, err := f.svc.OpenAudio(ctx, f.tagger, id+100); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for unknown id, got %v", err)
	}
}

func TestDecodePathList(t *testing.T) {
	paths, err := library.DecodePathList(strings.NewReader(`["/a.mp3", "b.wav"]`))
	if err != nil || len(paths) != 2 || paths[1] != "b.wav" {
		t.Fatalf("DecodePathList = %v, %v", paths, err)
	}
	if _, err := library.DecodePathList(strings.NewReader(`{"paths": []}`)); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type stubProber map[string]float64

func (p stubProber) Duration(_ context.Context, path string) (float64, error) {
	if d, ok := p[filepath.Base(path)]; ok {
		return d, nil
	}
	return 0, errors.New("no duration")
}

func TestImportRecordsProbedDuration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.cfg.Paths.MusicRoot
	f.svc.SetProber(stubProber{"timed.mp3": 201.5})

	result, err := f.svc.ImportPaths(ctx, f.admin, []string{
		testsupport.WriteAudio(t, root, "timed.mp3"),
		testsupport.WriteAudio(t, root, "untimed.wav"),
	})
	if err != nil {
		t.Fatalf("ImportPaths: %v", err)
	}
	if result.SuccessCount != 2 {
		t.Fatalf("probe failure must not block import: %+v", result)
	}

	timed, err := f.svc.Get(ctx, f.tagger, result.SuccessIDs[0])
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if timed.DurationSeconds == nil || *timed.DurationSeconds != 201.5 {
		t.Fatalf("expected duration 201.5, got %v", timed.DurationSeconds)
	}
	untimed, err := f.svc.Get(ctx, f.tagger, result.SuccessIDs[1])
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if untimed.DurationSeconds != nil {
		t.Fatalf("expected no duration, got %v", *untimed.DurationSeconds)
	}
}
