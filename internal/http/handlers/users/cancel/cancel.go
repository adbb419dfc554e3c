// Package cancel реализует HTTP-обработчик отмены подписки.
package cancel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/harmonyeco/gec-subscriptions/internal/http/middlewarectx"
	"github.com/harmonyeco/gec-subscriptions/internal/http/response"
	"github.com/harmonyeco/gec-subscriptions/internal/lib/sl"
	"github.com/harmonyeco/gec-subscriptions/internal/models"
	"github.com/harmonyeco/gec-subscriptions/internal/services/users"
)

// Service отменяет подписку пользователя.
type Service interface {
	Cancel(ctx context.Context, id string) (models.UserView, error)
}

// Handler обрабатывает POST /users/{id}/cancel.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик отмены.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отменить подписку
// @Description Снимает срок истечения подписки. Дата последнего продления сохраняется.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Success 200 {object} response.Response{data=models.UserView}
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /users/{id}/cancel [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.cancel"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("operator", middlewarectx.Operator(r.Context())),
	)

	id := chi.URLParam(r, "id")

	view, err := h.service.Cancel(r.Context(), id)
	switch {
	case errors.Is(err, users.ErrNotFound):
		log.Warn("user not found", slog.String("user_id", id))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(users.ErrNotFound.Error()))
		return
	case err != nil:
		log.Error("failed to cancel subscription", slog.String("user_id", id), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(users.ErrCancel.Error()))
		return
	}

	log.Info("subscription canceled", slog.String("user_id", id))
	render.JSON(w, r, response.OKWithData(view))
}
