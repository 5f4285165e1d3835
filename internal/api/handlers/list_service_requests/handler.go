package list_service_requests

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TechService/internal/api/handlers"
	"github.com/m04kA/SMC-TechService/internal/api/middleware"
	"github.com/m04kA/SMC-TechService/internal/service/servicerequests"
	"github.com/m04kA/SMC-TechService/internal/service/servicerequests/models"
)

const (
	msgUnauthorized  = "требуется авторизация"
	msgForbidden     = "доступно только администратору"
	msgInvalidUserID = "некорректный ID пользователя"
	msgInvalidFilter = "некорректный фильтр заявок"
)

type Handler struct {
	service ServiceRequestService
	logger  Logger
}

func NewHandler(service ServiceRequestService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/admin/service-requests
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Warn("GET /admin/service-requests - Missing actor")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	req := &models.ListRequest{Status: handlers.OptionalQuery(r, "status")}
	if raw := handlers.OptionalQuery(r, "userId"); raw != nil {
		userID, err := handlers.ParseID(*raw)
		if err != nil {
			h.logger.Warn("GET /admin/service-requests - Invalid user ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidUserID)
			return
		}
		req.UserID = &userID
	}

	result, err := h.service.ListAll(r.Context(), actor, req)
	if err != nil {
		switch {
		case errors.Is(err, servicerequests.ErrForbidden):
			h.logger.Warn("GET /admin/service-requests - Access denied: user_id=%d", actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, servicerequests.ErrInvalidInput):
			h.logger.Warn("GET /admin/service-requests - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidFilter)

		default:
			h.logger.Error("GET /admin/service-requests - Failed to list requests: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /admin/service-requests - Requests listed: admin_id=%d, total=%d", actor.UserID, result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
