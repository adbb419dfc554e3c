// Package list реализует HTTP-обработчик списка пользователей с поиском по телефону.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/harmonyeco/gec-subscriptions/internal/http/response"
	"github.com/harmonyeco/gec-subscriptions/internal/lib/sl"
	"github.com/harmonyeco/gec-subscriptions/internal/models"
	"github.com/harmonyeco/gec-subscriptions/internal/services/users"
)

// Service возвращает список пользователей, отфильтрованный по телефону.
type Service interface {
	Roster(ctx context.Context, query string) ([]models.UserView, error)
}

// Handler обрабатывает GET /users.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик списка пользователей.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список пользователей
// @Description Возвращает пользователей с телефоном и вычисленным статусом подписки. Параметр phone фильтрует по цифрам номера.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param phone query string false "Часть номера телефона, учитываются только цифры"
// @Success 200 {object} response.Response{data=[]models.UserView}
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	query := r.URL.Query().Get("phone")
	views, err := h.service.Roster(r.Context(), query)
	if err != nil {
		log.Error("failed to load users", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(users.ErrLoad.Error()))
		return
	}

	log.Debug("users listed", slog.Int("count", len(views)))
	render.JSON(w, r, response.OKWithData(views))
}
