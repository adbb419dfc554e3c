// Package activate реализует HTTP-обработчик активации и продления подписки.
package activate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/harmonyeco/gec-subscriptions/internal/http/middlewarectx"
	"github.com/harmonyeco/gec-subscriptions/internal/http/response"
	"github.com/harmonyeco/gec-subscriptions/internal/lib/sl"
	"github.com/harmonyeco/gec-subscriptions/internal/models"
	"github.com/harmonyeco/gec-subscriptions/internal/services/users"
)

// Service продлевает подписку пользователя.
type Service interface {
	Activate(ctx context.Context, id string, months int) (models.UserView, error)
}

// Handler обрабатывает POST /users/{id}/activate.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт обработчик активации.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Активировать или продлить подписку
// @Description Действующая подписка продлевается от текущего срока истечения, истёкшая или новая от текущего момента.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Param request body models.ActivateRequest true "Срок продления"
// @Success 200 {object} response.Response{data=models.UserView}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /users/{id}/activate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.activate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("operator", middlewarectx.Operator(r.Context())),
	)

	id := chi.URLParam(r, "id")

	var req models.ActivateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			log.Error("validation failed", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request body"))
			return
		}
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	view, err := h.service.Activate(r.Context(), id, req.DurationMonths)
	switch {
	case errors.Is(err, users.ErrNotFound):
		log.Warn("user not found", slog.String("user_id", id))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(users.ErrNotFound.Error()))
		return
	case err != nil:
		log.Error("failed to activate subscription", slog.String("user_id", id), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(users.ErrActivate.Error()))
		return
	}

	log.Info("subscription activated", slog.String("user_id", id), slog.Int("months", req.DurationMonths))
	render.JSON(w, r, response.OKWithData(view))
}
