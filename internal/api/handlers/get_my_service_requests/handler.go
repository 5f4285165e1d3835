package get_my_service_requests

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TechService/internal/api/handlers"
	"github.com/m04kA/SMC-TechService/internal/api/middleware"
	"github.com/m04kA/SMC-TechService/internal/service/servicerequests"
)

const (
	msgUnauthorized  = "требуется авторизация"
	msgInvalidStatus = "некорректный статус заявки"
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

// Handle GET /api/v1/service-requests/my
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Warn("GET /service-requests/my - Missing actor")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	status := handlers.OptionalQuery(r, "status")

	result, err := h.service.ListMine(r.Context(), actor, status)
	if err != nil {
		if errors.Is(err, servicerequests.ErrInvalidInput) {
			h.logger.Warn("GET /service-requests/my - Invalid status filter: user_id=%d, error=%v", actor.UserID, err)
			handlers.RespondBadRequest(w, msgInvalidStatus)
			return
		}
		h.logger.Error("GET /service-requests/my - Failed to list requests: user_id=%d, error=%v", actor.UserID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /service-requests/my - Requests listed: user_id=%d, total=%d", actor.UserID, result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
