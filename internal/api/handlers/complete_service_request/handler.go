package complete_service_request

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TechService/internal/api/handlers"
	"github.com/m04kA/SMC-TechService/internal/api/middleware"
	"github.com/m04kA/SMC-TechService/internal/service/servicerequests"
	"github.com/m04kA/SMC-TechService/internal/service/servicerequests/models"
)

const (
	msgInvalidRequestID   = "некорректный ID заявки"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgUnauthorized       = "требуется авторизация"
	msgInvalidInput       = "некорректные данные для завершения заявки"
	msgNotFound           = "заявка не найдена"
	msgForbidden          = "завершить заявку может только администратор"
	msgCannotComplete     = "заявку нельзя завершить в текущем статусе"
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

// Handle POST /api/v1/service-requests/{requestId}/complete
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID, err := handlers.ParseID(mux.Vars(r)["requestId"])
	if err != nil {
		h.logger.Warn("POST /service-requests/{id}/complete - Invalid request ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Warn("POST /service-requests/{id}/complete - Missing actor")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	// Тело необязательно
	var req models.CompleteRequest
	if r.ContentLength != 0 {
		if err := handlers.DecodeAndValidate(r, &req); err != nil {
			h.logger.Warn("POST /service-requests/{id}/complete - Invalid request body: id=%d, error=%v", requestID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
			return
		}
	}

	result, err := h.service.Complete(r.Context(), requestID, &req, actor)
	if err != nil {
		switch {
		case errors.Is(err, servicerequests.ErrForbidden):
			h.logger.Warn("POST /service-requests/{id}/complete - Access denied: id=%d, user_id=%d", requestID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, servicerequests.ErrRequestNotFound):
			h.logger.Warn("POST /service-requests/{id}/complete - Request not found: id=%d", requestID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, servicerequests.ErrCannotComplete):
			h.logger.Warn("POST /service-requests/{id}/complete - Cannot complete: id=%d", requestID)
			handlers.RespondBadRequest(w, msgCannotComplete)

		case errors.Is(err, servicerequests.ErrInvalidInput):
			h.logger.Warn("POST /service-requests/{id}/complete - Invalid input: id=%d, error=%v", requestID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /service-requests/{id}/complete - Failed to complete request: id=%d, error=%v", requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /service-requests/{id}/complete - Request completed: id=%d, admin_id=%d", requestID, actor.UserID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
