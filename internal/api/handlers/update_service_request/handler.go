package update_service_request

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
	msgInvalidInput       = "некорректные данные для обновления заявки"
	msgNotFound           = "заявка не найдена"
	msgForbidden          = "доступ запрещен"
	msgFinalized          = "заявка уже завершена или отменена"
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

// Handle PUT /api/v1/service-requests/{requestId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID, err := handlers.ParseID(mux.Vars(r)["requestId"])
	if err != nil {
		h.logger.Warn("PUT /service-requests/{id} - Invalid request ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Warn("PUT /service-requests/{id} - Missing actor")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req models.UpdateRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("PUT /service-requests/{id} - Invalid request body: id=%d, error=%v", requestID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Update(r.Context(), requestID, &req, actor)
	if err != nil {
		switch {
		case errors.Is(err, servicerequests.ErrRequestNotFound):
			h.logger.Warn("PUT /service-requests/{id} - Request not found: id=%d", requestID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, servicerequests.ErrForbidden):
			h.logger.Warn("PUT /service-requests/{id} - Access denied: id=%d, user_id=%d", requestID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, servicerequests.ErrRequestFinalized):
			h.logger.Warn("PUT /service-requests/{id} - Request finalized: id=%d", requestID)
			handlers.RespondBadRequest(w, msgFinalized)

		case errors.Is(err, servicerequests.ErrInvalidInput):
			h.logger.Warn("PUT /service-requests/{id} - Invalid input: id=%d, error=%v", requestID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PUT /service-requests/{id} - Failed to update request: id=%d, error=%v", requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /service-requests/{id} - Request updated: id=%d, user_id=%d, status=%s",
		requestID, actor.UserID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}
