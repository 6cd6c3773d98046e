package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"authapi/internal/logger"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

var homeTemplate = template.Must(template.ParseFS(templatesFS, "templates/home.html"))

type HomeHandler struct{}

func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// Home godoc
// @Summary Домашняя страница
// @Tags home
// @Produce html
// @Success 200 {string} string "HTML-страница"
// @Router / [get]
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := homeTemplate.Execute(w, map[string]string{"Title": "Home"}); err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка рендера домашней страницы", zap.Error(err))
	}
}
