// Package health отвечает на проверку живости сервиса.
package health

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/harmonyeco/gec-subscriptions/internal/http/response"
)

// Handler обрабатывает GET /health.
type Handler struct{}

// New создаёт обработчик проверки живости.
func New() *Handler {
	return &Handler{}
}

// ServeHTTP godoc
// @Summary Проверка живости
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(map[string]string{"status": "ok"}))
}
