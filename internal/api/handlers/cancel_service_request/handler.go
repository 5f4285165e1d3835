package cancel_service_request

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TechService/internal/api/handlers"
	"github.com/m04kA/SMC-TechService/internal/api/middleware"
	cancelRequest "github.com/m04kA/SMC-TechService/internal/usecase/cancel_service_request"
)

const (
	msgInvalidRequestID = "некорректный ID заявки"
	msgUnauthorized     = "требуется авторизация"
	msgNotFound         = "заявка не найдена"
	msgForbidden        = "отменить заявку может только владелец или администратор"
	msgCannotCancel     = "заявку нельзя отменить в текущем статусе"
)

type Handler struct {
	useCase CancelServiceRequestUseCase
	logger  Logger
}

func NewHandler(useCase CancelServiceRequestUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/service-requests/{requestId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID, err := handlers.ParseID(mux.Vars(r)["requestId"])
	if err != nil {
		h.logger.Warn("POST /service-requests/{id}/cancel - Invalid request ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Warn("POST /service-requests/{id}/cancel - Missing actor")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &cancelRequest.Request{RequestID: requestID, Actor: actor})
	if err != nil {
		switch {
		case errors.Is(err, cancelRequest.ErrRequestNotFound):
			h.logger.Warn("POST /service-requests/{id}/cancel - Request not found: id=%d", requestID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, cancelRequest.ErrForbidden):
			h.logger.Warn("POST /service-requests/{id}/cancel - Access denied: id=%d, user_id=%d", requestID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, cancelRequest.ErrCannotCancel):
			h.logger.Warn("POST /service-requests/{id}/cancel - Cannot cancel: id=%d", requestID)
			handlers.RespondBadRequest(w, msgCannotCancel)

		default:
			h.logger.Error("POST /service-requests/{id}/cancel - Failed to cancel request: id=%d, error=%v", requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /service-requests/{id}/cancel - Request cancelled: id=%d, user_id=%d", requestID, actor.UserID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
