package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"shotcraft/internal/domain"
	"shotcraft/internal/i18n"
	"shotcraft/internal/middleware"
	"shotcraft/internal/studio"
)

type selectorOption struct {
	Value    string
	Selected bool
}

type selectorGroup struct {
	Title   string
	Axis    string
	Options []selectorOption
}

type pageData struct {
	View            studio.View
	Locale          string
	Accept          string
	AngleGroup      selectorGroup
	ShotGroup       selectorGroup
	LevelGroup      selectorGroup
	CopyUnavailable string
	CopyFailed      string
}

func group[T ~string](title, axis string, opts []studio.Option[T]) selectorGroup {
	g := selectorGroup{Title: title, Axis: axis, Options: make([]selectorOption, len(opts))}
	for i, o := range opts {
		g.Options[i] = selectorOption{Value: string(o.Value), Selected: o.Selected}
	}
	return g
}

// Page renders the studio for the current session.
func (a *App) Page(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	view := a.view(r, a.session(r))
	data := pageData{
		View:            view,
		Locale:          locale,
		Accept:          acceptedImageTypes,
		AngleGroup:      group("Camera Angle", "angle", view.Angles),
		ShotGroup:       group("Camera Shot", "shot", view.Shots),
		LevelGroup:      group("Camera Level", "level", view.Levels),
		CopyUnavailable: i18n.Text(locale, i18n.MsgCopyUnavailable),
		CopyFailed:      i18n.Text(locale, i18n.MsgCopyFailed),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := a.Pages.Render(w, "index.html", data); err != nil {
		a.Logger.Error().Err(err).Msg("render page failed")
		http.Error(w, i18n.Text(locale, i18n.MsgUnexpected), http.StatusInternalServerError)
	}
}

// back redirects form posts to the page (post/redirect/get).
func back(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// FormUpload adds the posted files. Read failures surface through the session
// notice on the next render.
func (a *App) FormUpload(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	sources, err := a.readUploads(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}
	_ = sess.Upload(r.Context(), sources)
	back(w, r)
}

func (a *App) FormDeleteImage(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err == nil {
		err = a.session(r).RemoveImage(index)
	}
	if err != nil {
		a.Logger.Debug().Err(err).Msg("ignored image removal")
	}
	back(w, r)
}

func (a *App) FormSelect(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	value := r.PostFormValue("value")

	var err error
	switch chi.URLParam(r, "axis") {
	case "angle":
		err = sess.SelectAngle(value)
	case "shot":
		err = sess.SelectShot(value)
	case "level":
		err = sess.SelectLevel(value)
	default:
		http.NotFound(w, r)
		return
	}
	if errors.Is(err, domain.ErrInvalidOption) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	back(w, r)
}

func (a *App) FormPrompt(w http.ResponseWriter, r *http.Request) {
	a.session(r).SetAdditionalPrompt(r.PostFormValue("additionalPrompt"))
	back(w, r)
}

// FormGenerate saves the textarea, runs one attempt, and redirects. The
// outcome is shown by the page through the session state.
func (a *App) FormGenerate(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	if err := r.ParseForm(); err == nil {
		if _, ok := r.PostForm["additionalPrompt"]; ok {
			sess.SetAdditionalPrompt(r.PostForm.Get("additionalPrompt"))
		}
	}
	if _, err := sess.Generate(context.WithoutCancel(r.Context())); err != nil {
		a.Logger.Debug().Err(err).Msg("generation did not produce an image")
	}
	back(w, r)
}
