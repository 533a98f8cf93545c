package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tagflow/internal/auth"
	"tagflow/internal/services"
)

// Audio is an open, registered audio file ready to stream. Callers must
// Close it.
type Audio struct {
	*os.File
	Name        string
	ContentType string
	Size        int64
	ModTime     time.Time
}

// OpenAudio opens the file behind music item id for playback.
func (s *Service) OpenAudio(ctx context.Context, caller auth.Identity, id int64) (*Audio, error) {
	item, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	contentType, ok := contentTypes[strings.ToLower(filepath.Ext(item.Filepath))]
	if !ok {
		return nil, &services.ValidationError{Entity: "music", ID: id, Msg: "unsupported audio format"}
	}
	file, err := os.Open(item.Filepath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &services.NotFoundError{Entity: "audio file", Key: item.Filepath}
	}
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat audio: %w", err)
	}
	if !info.Mode().IsRegular() {
		file.Close()
		return nil, &services.NotFoundError{Entity: "audio file", Key: item.Filepath}
	}
	return &Audio{
		File:        file,
		Name:        filepath.Base(item.Filepath),
		ContentType: contentType,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
	}, nil
}
