package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shotcraft/internal/domain"
	"shotcraft/internal/history"
	"shotcraft/internal/i18n"
	"shotcraft/internal/infra"
	"shotcraft/internal/middleware"
	"shotcraft/internal/studio"
	"shotcraft/internal/web"
)

// acceptedImageTypes mirrors the file picker filter of the page.
const acceptedImageTypes = "image/png, image/jpeg, image/webp"

type App struct {
	Sessions       *studio.Store
	Recorder       history.Recorder
	Pages          *web.Renderer
	Logger         zerolog.Logger
	MaxUploadBytes int64
	Model          string
	AllowedOrigins []string
	DocsTitle      string
	SpecURL        string
}

// Options configures NewApp.
type Options struct {
	Sessions       *studio.Store
	History        history.Recorder
	Pages          *web.Renderer
	Logger         *infra.Logger
	MaxUploadBytes int64
	Model          string
	AllowedOrigins []string
	// DocsTitle and SpecURL feed the API docs page; empty values use defaults.
	DocsTitle string
	SpecURL   string
}

func NewApp(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	rec := opts.History
	if rec == nil {
		rec = history.NopRecorder{}
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}
	docsTitle := opts.DocsTitle
	if docsTitle == "" {
		docsTitle = defaultDocsTitle
	}
	specURL := opts.SpecURL
	if specURL == "" {
		specURL = defaultSpecURL
	}
	return &App{
		Sessions:       opts.Sessions,
		Recorder:       rec,
		Pages:          opts.Pages,
		Logger:         logger.With().Str("component", "http").Logger(),
		MaxUploadBytes: maxUpload,
		Model:          opts.Model,
		AllowedOrigins: opts.AllowedOrigins,
		DocsTitle:      docsTitle,
		SpecURL:        specURL,
	}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, codeStr, msg string) {
	a.json(w, code, errorBody{Error: errorDetail{Code: codeStr, Message: msg}})
}

// session returns the studio session bound to the request cookie.
func (a *App) session(r *http.Request) *studio.Session {
	id, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		id = uuid.New()
	}
	sess, _ := a.Sessions.GetOrCreate(id)
	return sess
}

// view renders the session snapshot in the request locale.
func (a *App) view(r *http.Request, sess *studio.Session) studio.View {
	return sess.Snapshot().Localize(middleware.LocaleFromContext(r.Context()))
}

// fail maps studio errors onto HTTP responses. Messages the session already
// stored as its notice are preferred so the API and the page agree.
func (a *App) fail(w http.ResponseWriter, r *http.Request, sess *studio.Session, err error) {
	locale := middleware.LocaleFromContext(r.Context())
	notice := ""
	if sess != nil {
		notice = sess.Snapshot().Localize(locale).Error
	}
	pick := func(key i18n.Key) string {
		if notice != "" {
			return notice
		}
		return i18n.Text(locale, key)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidOption):
		a.error(w, http.StatusBadRequest, "invalid_option", err.Error())
	case errors.Is(err, domain.ErrIndexOutOfRange):
		a.error(w, http.StatusNotFound, "image_not_found", err.Error())
	case errors.Is(err, domain.ErrNoImages):
		a.error(w, http.StatusUnprocessableEntity, "no_images", i18n.Text(locale, i18n.MsgNoImages))
	case errors.Is(err, domain.ErrDecode):
		a.error(w, http.StatusUnprocessableEntity, "read_failed", i18n.Text(locale, i18n.MsgReadFailed))
	case errors.Is(err, domain.ErrEmptyResult):
		a.error(w, http.StatusUnprocessableEntity, "empty_result", i18n.Text(locale, i18n.MsgEmptyResult))
	case errors.Is(err, domain.ErrGenerationInFlight):
		a.error(w, http.StatusConflict, "generation_in_flight", err.Error())
	case errors.Is(err, domain.ErrProviderFailure):
		a.error(w, http.StatusBadGateway, "generation_failed", pick(i18n.MsgUnknownGeneration))
	case errors.Is(err, domain.ErrNoResult):
		a.error(w, http.StatusNotFound, "no_result", i18n.Text(locale, i18n.MsgCopyUnavailable))
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", pick(i18n.MsgUnexpected))
	}
}
