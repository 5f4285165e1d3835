package get_service_request

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TechService/internal/api/handlers"
	"github.com/m04kA/SMC-TechService/internal/api/middleware"
	"github.com/m04kA/SMC-TechService/internal/service/servicerequests"
)

const (
	msgInvalidRequestID = "некорректный ID заявки"
	msgUnauthorized     = "требуется авторизация"
	msgNotFound         = "заявка не найдена"
	msgForbidden        = "доступ запрещен"
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

// Handle GET /api/v1/service-requests/{requestId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID, err := handlers.ParseID(mux.Vars(r)["requestId"])
	if err != nil {
		h.logger.Warn("GET /service-requests/{id} - Invalid request ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Warn("GET /service-requests/{id} - Missing actor")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	// Сервис сам проверит, что вызывающий владелец или администратор
	result, err := h.service.GetByID(r.Context(), requestID, actor)
	if err != nil {
		switch {
		case errors.Is(err, servicerequests.ErrRequestNotFound):
			h.logger.Warn("GET /service-requests/{id} - Request not found: id=%d", requestID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, servicerequests.ErrForbidden):
			h.logger.Warn("GET /service-requests/{id} - Access denied: id=%d, user_id=%d", requestID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /service-requests/{id} - Failed to get request: id=%d, error=%v", requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /service-requests/{id} - Request retrieved: id=%d, user_id=%d", requestID, actor.UserID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
