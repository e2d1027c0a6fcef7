package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog"

	"shotcraft/internal/http/handlers"
	"shotcraft/internal/middleware"
	"shotcraft/internal/web"
)

// Options carries the cross-cutting settings of the router.
type Options struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	DefaultLocale  string
	CountryLookup  middleware.CountryLookup
	SecureCookies  bool
}

func gzip(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	// Health
	r.Get("/v1/healthz", app.Health)

	// The websocket needs the raw connection, so it stays out of the gzip group.
	r.With(middleware.SessionCookie(opts.SecureCookies)).Get("/ws", app.Socket)

	r.Group(func(r chi.Router) {
		r.Use(gzip)

		r.Get("/v1/openapi.json", app.OpenAPIJSON)
		r.Get("/v1/docs", app.OpenAPIDocs)
		r.Handle("/static/*", web.Static())

		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionCookie(opts.SecureCookies))

			r.Get("/", app.Page)
			r.Post("/upload", app.FormUpload)
			r.Post("/images/{index}/delete", app.FormDeleteImage)
			r.Post("/select/{axis}", app.FormSelect)
			r.Post("/prompt", app.FormPrompt)
			r.Post("/generate", app.FormGenerate)

			r.Route("/api", func(r chi.Router) {
				r.Get("/options", app.Options)
				r.Route("/session", func(r chi.Router) {
					r.Get("/", app.GetSession)
					r.Post("/images", app.UploadImages)
					r.Delete("/images/{index}", app.DeleteImage)
					r.Put("/selection", app.PutSelection)
					r.Put("/prompt", app.PutPrompt)
					r.Post("/generate", app.Generate)
					r.Get("/result/download", app.DownloadResult)
					r.Get("/result/raw", app.RawResult)
					r.Get("/result/bundle", app.DownloadBundle)
					r.Get("/history", app.History)
					r.Get("/history/{id}", app.HistoryEntry)
				})
			})
		})
	})

	return r
}
