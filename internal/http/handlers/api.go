package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shotcraft/internal/domain"
	"shotcraft/internal/history"
	"shotcraft/internal/i18n"
	"shotcraft/internal/middleware"
	"shotcraft/internal/studio"
	"shotcraft/internal/upload"
)

const multipartMemory = 8 << 20

type optionsResponse struct {
	Angles   []domain.CameraAngle `json:"angles"`
	Shots    []domain.CameraShot  `json:"shots"`
	Levels   []domain.CameraLevel `json:"levels"`
	Defaults domain.Selection     `json:"defaults"`
	Accept   string               `json:"accept"`
	Messages map[i18n.Key]string  `json:"messages"`
}

func (a *App) Options(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, optionsResponse{
		Angles:   domain.CameraAngles,
		Shots:    domain.CameraShots,
		Levels:   domain.CameraLevels,
		Defaults: domain.DefaultSelection(),
		Accept:   acceptedImageTypes,
		Messages: i18n.Catalog(middleware.LocaleFromContext(r.Context())),
	})
}

func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.view(r, a.session(r)))
}

func (a *App) UploadImages(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	sources, err := a.readUploads(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "payload_too_large",
				fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	if err := sess.Upload(r.Context(), sources); err != nil {
		a.fail(w, r, sess, err)
		return
	}
	a.json(w, http.StatusOK, a.view(r, sess))
}

// readUploads parses the "images" parts of a multipart request.
func (a *App) readUploads(w http.ResponseWriter, r *http.Request) ([]upload.Source, error) {
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, err
	}
	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["images"]
	}
	sources := make([]upload.Source, 0, len(files))
	for _, fh := range files {
		sources = append(sources, upload.FromFileHeader(fh))
	}
	return sources, nil
}

func (a *App) DeleteImage(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "image index must be an integer")
		return
	}
	if err := sess.RemoveImage(index); err != nil {
		a.fail(w, r, sess, err)
		return
	}
	a.json(w, http.StatusOK, a.view(r, sess))
}

type selectionRequest struct {
	Angle string `json:"angle"`
	Shot  string `json:"shot"`
	Level string `json:"level"`
}

// PutSelection changes any axis present in the body. Values are validated
// before anything is applied.
func (a *App) PutSelection(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	type step struct {
		raw   string
		parse func(string) error
		apply func(string) error
	}
	steps := []step{
		{req.Angle, func(s string) error { _, err := domain.ParseCameraAngle(s); return err }, sess.SelectAngle},
		{req.Shot, func(s string) error { _, err := domain.ParseCameraShot(s); return err }, sess.SelectShot},
		{req.Level, func(s string) error { _, err := domain.ParseCameraLevel(s); return err }, sess.SelectLevel},
	}
	for _, s := range steps {
		if s.raw == "" {
			continue
		}
		if err := s.parse(s.raw); err != nil {
			a.fail(w, r, sess, err)
			return
		}
	}
	for _, s := range steps {
		if s.raw == "" {
			continue
		}
		if err := s.apply(s.raw); err != nil {
			a.fail(w, r, sess, err)
			return
		}
	}
	a.json(w, http.StatusOK, a.view(r, sess))
}

type promptRequest struct {
	AdditionalPrompt string `json:"additionalPrompt"`
}

func (a *App) PutPrompt(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	sess.SetAdditionalPrompt(req.AdditionalPrompt)
	a.json(w, http.StatusOK, a.view(r, sess))
}

// Generate runs the attempt on a context detached from the request so a
// closed tab does not abort it.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	if _, err := sess.Generate(context.WithoutCancel(r.Context())); err != nil {
		a.fail(w, r, sess, err)
		return
	}
	a.json(w, http.StatusOK, a.view(r, sess))
}

func (a *App) DownloadResult(w http.ResponseWriter, r *http.Request) {
	a.writeResult(w, r, "attachment")
}

// RawResult serves the current image for the browser's clipboard write.
func (a *App) RawResult(w http.ResponseWriter, r *http.Request) {
	a.writeResult(w, r, "inline")
}

func (a *App) writeResult(w http.ResponseWriter, r *http.Request, disposition string) {
	sess := a.session(r)
	res, err := sess.Result()
	if err != nil {
		a.fail(w, r, sess, err)
		return
	}
	w.Header().Set("Content-Type", res.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, res.FileName()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

// DownloadBundle serves the result, its prompt and the current sources as
// one zip archive.
func (a *App) DownloadBundle(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	data, err := sess.Bundle()
	if err != nil {
		a.fail(w, r, sess, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", studio.BundleName))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type attemptResponse struct {
	ID         string `json:"id"`
	Prompt     string `json:"prompt"`
	ImageCount int    `json:"imageCount"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
	ResultMIME string `json:"resultMime,omitempty"`
	DurationMS int64  `json:"durationMs"`
	CreatedAt  string `json:"createdAt"`
}

func (a *App) History(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	limit, _ := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("limit")))
	attempts, err := a.Recorder.Recent(r.Context(), sess.ID(), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list attempts failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load history")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"attempts": toAttemptResponses(attempts)})
}

// HistoryEntry returns one attempt of the caller's session.
func (a *App) HistoryEntry(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "attempt id must be a uuid")
		return
	}
	attempt, err := a.Recorder.Get(r.Context(), sess.ID(), id)
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusNotFound, "attempt_not_found", "attempt not found")
		return
	}
	if err != nil {
		a.Logger.Error().Err(err).Str("attempt_id", id.String()).Msg("load attempt failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load attempt")
		return
	}
	a.json(w, http.StatusOK, toAttemptResponses([]history.Attempt{attempt})[0])
}

func toAttemptResponses(in []history.Attempt) []attemptResponse {
	out := make([]attemptResponse, len(in))
	for i, at := range in {
		out[i] = attemptResponse{
			ID:         at.ID.String(),
			Prompt:     at.Prompt,
			ImageCount: at.ImageCount,
			Outcome:    string(at.Outcome),
			Error:      at.Error,
			ResultMIME: at.ResultMIME,
			DurationMS: at.Duration.Milliseconds(),
			CreatedAt:  at.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return out
}
