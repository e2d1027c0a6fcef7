package handlers

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.json
var openAPIDocument []byte

const (
	defaultDocsTitle = "Shotcraft API"
	defaultSpecURL   = "/v1/openapi.json"
)

type docsPage struct {
	Title   string
	SpecURL string
	Model   string
}

func (a *App) OpenAPIJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPIDocument)
}

// OpenAPIDocs renders the ReDoc page for the document served at SpecURL.
func (a *App) OpenAPIDocs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := a.Pages.Render(w, "docs.html", docsPage{
		Title:   a.DocsTitle,
		SpecURL: a.SpecURL,
		Model:   a.Model,
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("render docs failed")
		http.Error(w, "failed to render docs", http.StatusInternalServerError)
	}
}
