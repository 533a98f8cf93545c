package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tagflow/internal/auth"
	"tagflow/internal/config"
	"tagflow/internal/logging"
	"tagflow/internal/services"
	"tagflow/internal/store"
)

var contentTypes = map[string]string{
	".mp3": "audio/mpeg",
	".wav": "audio/wav",
}

// Service manages the music catalog.
type Service struct {
	store     *store.Store
	musicRoot string
	prober    DurationProber
	logger    *slog.Logger
}

// NewService constructs the library service.
func NewService(cfg *config.Config, st *store.Store, logger *slog.Logger) *Service {
	svc := &Service{
		store:     st,
		musicRoot: cfg.Paths.MusicRoot,
		logger:    logging.NewComponentLogger(logger, "library"),
	}
	if cfg.Library.FFprobeBinary != "" {
		svc.prober = FFprobe{
			Binary:  cfg.Library.FFprobeBinary,
			Timeout: time.Duration(cfg.Library.ProbeTimeoutSeconds) * time.Second,
		}
	}
	return svc
}

// SetProber replaces the duration prober; nil disables probing.
func (s *Service) SetProber(p DurationProber) {
	s.prober = p
}

// ImportResult summarizes a path import.
type ImportResult struct {
	SuccessCount int
	ErrorCount   int
	SuccessIDs   []int64
	ErrorPaths   []string
}

func (r *ImportResult) fail(path, reason string) {
	r.ErrorCount++
	r.ErrorPaths = append(r.ErrorPaths, fmt.Sprintf("%s (%s)", path, reason))
}

// ImportPaths registers each audio file in paths. Admin only.
func (s *Service) ImportPaths(ctx context.Context, caller auth.Identity, paths []string) (*ImportResult, error) {
	if err := caller.Require(auth.CapAdmin, "import music"); err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, &services.ValidationError{Entity: "music", Field: "paths", Msg: "at least one path is required"}
	}

	result := &ImportResult{SuccessIDs: []int64{}, ErrorPaths: []string{}}
	seen := make(map[string]struct{}, len(paths))
	for _, raw := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path, reason := s.checkPath(raw)
		if reason != "" {
			result.fail(strings.TrimSpace(raw), reason)
			continue
		}
		if _, dup := seen[path]; dup {
			result.fail(path, "duplicate in request")
			continue
		}
		seen[path] = struct{}{}

		base := filepath.Base(path)
		item := &store.MusicItem{
			Filepath:        path,
			Filename:        strings.TrimSuffix(base, filepath.Ext(base)),
			DurationSeconds: s.probeDuration(ctx, path),
		}
		err := s.store.CreateMusic(ctx, item)
		switch {
		case errors.Is(err, store.ErrDuplicate):
			result.fail(path, "already imported")
			continue
		case err != nil:
			return nil, fmt.Errorf("import %s: %w", path, err)
		}
		result.SuccessCount++
		result.SuccessIDs = append(result.SuccessIDs, item.ID)
	}

	s.logger.Info("music import finished",
		logging.Int64(logging.FieldUserID, caller.UserID),
		logging.Int("success_count", result.SuccessCount),
		logging.Int("error_count", result.ErrorCount),
		logging.Event("music_imported"),
	)
	return result, nil
}

// probeDuration returns nil when probing is off or fails; a missing
// duration never blocks an import.
func (s *Service) probeDuration(ctx context.Context, path string) *float64 {
	if s.prober == nil {
		return nil
	}
	seconds, err := s.prober.Duration(ctx, path)
	if err != nil {
		logging.WarnWithContext(s.logger, "duration probe failed", "duration_probe_failed",
			logging.String("path", path),
			logging.Error(err),
		)
		return nil
	}
	return &seconds
}

// checkPath resolves raw and returns the absolute path or a rejection reason.
func (s *Service) checkPath(raw string) (string, string) {
	path := strings.TrimSpace(raw)
	if path == "" {
		return "", "empty path"
	}
	if _, ok := contentTypes[strings.ToLower(filepath.Ext(path))]; !ok {
		return "", "unsupported format, expected .mp3 or .wav"
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.musicRoot, path)
	}
	path = filepath.Clean(path)
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", "file does not exist"
	case err != nil:
		return "", "cannot stat file"
	case !info.Mode().IsRegular():
		return "", "not a regular file"
	}
	return path, ""
}

// List returns music items whose filename contains keyword.
func (s *Service) List(ctx context.Context, caller auth.Identity, keyword string) ([]*store.MusicItem, error) {
	if err := caller.RequireUser("list music"); err != nil {
		return nil, err
	}
	items, err := s.store.ListMusic(ctx, strings.TrimSpace(keyword))
	if err != nil {
		return nil, fmt.Errorf("list music: %w", err)
	}
	return items, nil
}

// Get returns a single music item.
func (s *Service) Get(ctx context.Context, caller auth.Identity, id int64) (*store.MusicItem, error) {
	if err := caller.RequireUser("read music"); err != nil {
		return nil, err
	}
	item, err := s.store.GetMusic(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get music: %w", err)
	}
	if item == nil {
		return nil, &services.NotFoundError{Entity: "music", ID: id}
	}
	return item, nil
}

// Delete removes a music item together with its tasks and records. Admin only.
func (s *Service) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	if err := caller.Require(auth.CapAdmin, "delete music"); err != nil {
		return err
	}
	deleted, err := s.store.DeleteMusic(ctx, id)
	if err != nil {
		return fmt.Errorf("delete music: %w", err)
	}
	if !deleted {
		return &services.NotFoundError{Entity: "music", ID: id}
	}
	s.logger.Info("music deleted",
		logging.Int64(logging.FieldMusicID, id),
		logging.Int64(logging.FieldUserID, caller.UserID),
		logging.Event("music_deleted"),
	)
	return nil
}
