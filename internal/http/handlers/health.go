package handlers

import (
	"net/http"
)

type healthResponse struct {
	Status   string `json:"status"`
	Model    string `json:"model,omitempty"`
	Sessions int    `json:"sessions"`
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Model:    a.Model,
		Sessions: a.Sessions.Len(),
	})
}
