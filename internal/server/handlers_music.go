package server

import (
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"tagflow/internal/api"
	"tagflow/internal/library"
	"tagflow/internal/services"
)

type recountRequest struct {
	MusicIDs []int64 `json:"music_ids"`
}

func (s *Server) handleListMusic(w http.ResponseWriter, r *http.Request) {
	items, err := s.library.List(r.Context(), identityFrom(r.Context()), r.URL.Query().Get("keyword"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.FromMusicList(items))
}

// handleImportMusic accepts a JSON array of paths either as the raw body or
// as an uploaded file in the "file" field of a multipart form.
func (s *Server) handleImportMusic(w http.ResponseWriter, r *http.Request) {
	body, closeBody, err := importBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeBody()

	paths, err := library.DecodePathList(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.library.ImportPaths(r.Context(), identityFrom(r.Context()), paths)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.FromImportResult(result))
}

func importBody(w http.ResponseWriter, r *http.Request) (io.Reader, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, &services.ValidationError{Entity: "music", Field: "file", Msg: "multipart field \"file\" is required"}
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".json") {
		file.Close()
		return nil, nil, &services.ValidationError{Entity: "music", Field: "file", Msg: "upload must be a .json file"}
	}
	return file, func() { file.Close() }, nil
}

func (s *Server) handleDeleteMusic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.library.Delete(r.Context(), identityFrom(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMusicFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	audio, err := s.library.OpenAudio(r.Context(), identityFrom(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer audio.Close()

	w.Header().Set("Content-Type", audio.ContentType)
	w.Header().Set("Content-Disposition", "inline; filename*=UTF-8''"+url.PathEscape(audio.Name))
	http.ServeContent(w, r, audio.Name, audio.ModTime, audio.File)
}

func (s *Server) handleRecount(w http.ResponseWriter, r *http.Request) {
	var req recountRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	drift, err := s.engine.Recount(r.Context(), identityFrom(r.Context()), req.MusicIDs...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.FromDrift(drift))
}
